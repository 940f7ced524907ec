package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebLefcort/mypl/pkg/vm"
)

func instr(op vm.Opcode) *vm.Instruction { return &vm.Instruction{Op: op} }

func push(v vm.Value) *vm.Instruction { return &vm.Instruction{Op: vm.PUSH, Value: v} }

func named(op vm.Opcode, name string) *vm.Instruction { return &vm.Instruction{Op: op, Name: name} }

func operand(op vm.Opcode, n int) *vm.Instruction { return &vm.Instruction{Op: op, Operand: n} }

func run(t *testing.T, templates map[string]*vm.FrameTemplate) (string, error) {
	t.Helper()
	var out bytes.Buffer
	m := vm.New(templates)
	m.Stdout = &out
	err := m.Run()
	return out.String(), err
}

func TestPrintHelloWorld(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Str("hi")),
		named(vm.CALL, "print_string"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestAddFunctionCall(t *testing.T) {
	add := &vm.FrameTemplate{ID: "add_int_int", ParamCount: 2, Instrs: []*vm.Instruction{
		operand(vm.STORE, 0),
		operand(vm.STORE, 1),
		operand(vm.LOAD, 1),
		operand(vm.LOAD, 0),
		instr(vm.ADD),
		instr(vm.RET),
	}}
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Int(2)),
		push(vm.Int(3)),
		{Op: vm.CALL, Name: "add_int_int", Operand: 2},
		named(vm.CALL, "print_int"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main, "add_int_int": add})
	require.NoError(t, err)
	assert.Equal(t, "5", out)
}

// TestCallArgumentOrderIsPreserved exercises a non-commutative function
// (subtraction) so that a caller-to-callee arg reversal bug would show up
// as a wrong answer rather than passing by coincidence, the way an add()
// call would.
func TestCallArgumentOrderIsPreserved(t *testing.T) {
	sub := &vm.FrameTemplate{ID: "sub_int_int", ParamCount: 2, Instrs: []*vm.Instruction{
		operand(vm.STORE, 0),
		operand(vm.STORE, 1),
		operand(vm.LOAD, 0),
		operand(vm.LOAD, 1),
		instr(vm.SUB),
		instr(vm.RET),
	}}
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Int(10)),
		push(vm.Int(3)),
		{Op: vm.CALL, Name: "sub_int_int", Operand: 2},
		named(vm.CALL, "print_int"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main, "sub_int_int": sub})
	require.NoError(t, err)
	assert.Equal(t, "7", out)
}

func TestArrayAllocAndIndex(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Int(3)),
		instr(vm.ALLOCA),
		operand(vm.STORE, 0), // slot 0 = array ref
		operand(vm.LOAD, 0),
		push(vm.Int(1)),
		push(vm.Int(2)),
		instr(vm.SETI),
		operand(vm.LOAD, 0),
		push(vm.Int(1)),
		instr(vm.GETI),
		named(vm.CALL, "print_int"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestStructAllocSetGetField(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		instr(vm.ALLOCS),
		operand(vm.STORE, 0),
		operand(vm.LOAD, 0),
		push(vm.Int(9)),
		named(vm.SETF, "y"),
		operand(vm.LOAD, 0),
		named(vm.GETF, "y"),
		named(vm.CALL, "print_int"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.NoError(t, err)
	assert.Equal(t, "9", out)
}

func TestWhileLoop(t *testing.T) {
	// int i = 0; while (i < 3) { print_int(i); i = i+1; }
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Int(0)),
		operand(vm.STORE, 0), // 1
		// loop head @2
		operand(vm.LOAD, 0),
		push(vm.Int(3)),
		instr(vm.CMPLT),
		operand(vm.JMPF, 9), // @5, exit target patched below
		operand(vm.LOAD, 0),
		named(vm.CALL, "print_int"),
		operand(vm.LOAD, 0),
		push(vm.Int(1)),
		instr(vm.ADD),
		operand(vm.STORE, 0),
		operand(vm.JMP, 2),
		instr(vm.NOP), // @13, the loop exit
		push(vm.Null),
		instr(vm.RET),
	}}
	// fix the JMPF target (index 5) to point at the NOP's real index (13)
	main.Instrs[5].Operand = 13
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.NoError(t, err)
	assert.Equal(t, "012", out)
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Int(1)),
		push(vm.Int(0)),
		instr(vm.DIV),
		instr(vm.RET),
	}}
	_, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.Error(t, err)
}

func TestFloorDivisionTowardNegativeInfinity(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Int(-7)),
		push(vm.Int(2)),
		instr(vm.DIV),
		named(vm.CALL, "print_int"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.NoError(t, err)
	assert.Equal(t, "-4", out)
}

func TestEqualityOfTwoNullsIsTrue(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Null),
		push(vm.Null),
		instr(vm.CMPEQ),
		named(vm.CALL, "print_bool"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.NoError(t, err)
	assert.Equal(t, "true", out)
}

func TestEqualityOfNullAndBaseValueIsFalse(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Null),
		push(vm.Int(0)),
		instr(vm.CMPEQ),
		named(vm.CALL, "print_bool"),
		push(vm.Null),
		instr(vm.RET),
	}}
	out, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.NoError(t, err)
	assert.Equal(t, "false", out)
}

func TestOutOfBoundsArrayIndexFails(t *testing.T) {
	main := &vm.FrameTemplate{ID: "main", Instrs: []*vm.Instruction{
		push(vm.Int(0)),
		instr(vm.ALLOCA),
		push(vm.Int(0)),
		instr(vm.GETI),
		instr(vm.RET),
	}}
	_, err := run(t, map[string]*vm.FrameTemplate{"main": main})
	require.Error(t, err)
}

func TestMissingMainFails(t *testing.T) {
	_, err := run(t, map[string]*vm.FrameTemplate{})
	require.Error(t, err)
}
