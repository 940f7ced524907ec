package vm

import "strconv"

// FrameTemplate is the static, shareable compilation of one function: its
// mangled id, declared-parameter count, and linear instruction list
// (spec.md §3, §4.4). pkg/codegen produces one per user function; the
// built-in catalog is implemented natively by the VM instead (see
// builtins.go) and has no FrameTemplate.
type FrameTemplate struct {
	ID        string
	ParamCount int
	Instrs    []*Instruction
}

// String dumps every instruction with its index, the format used by
// "mypl build --dump" (SPEC_FULL.md §D, ported from mypl_vm.py's
// __repr__).
func (t *FrameTemplate) String() string {
	out := t.ID + ":\n"
	for i, instr := range t.Instrs {
		out += "  " + strconv.Itoa(i) + ": " + instr.String() + "\n"
	}
	return out
}

// Frame is a runtime activation of a FrameTemplate: its own program
// counter, operand stack, and densely-indexed variable slots.
type Frame struct {
	Template *FrameTemplate
	PC       int
	Operands []Value
	Slots    []Value
}

func newFrame(t *FrameTemplate) *Frame {
	return &Frame{Template: t}
}

func (f *Frame) push(v Value) { f.Operands = append(f.Operands, v) }

func (f *Frame) pop() Value {
	n := len(f.Operands)
	v := f.Operands[n-1]
	f.Operands = f.Operands[:n-1]
	return v
}

func (f *Frame) top() Value { return f.Operands[len(f.Operands)-1] }

// store implements "STORE k": append if k == len(slots), else overwrite
// (spec.md §4.5).
func (f *Frame) store(k int, v Value) {
	if k == len(f.Slots) {
		f.Slots = append(f.Slots, v)
		return
	}
	f.Slots[k] = v
}
