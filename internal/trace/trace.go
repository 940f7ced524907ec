// Package trace provides an opt-in execution tracer for pkg/vm, the typed
// replacement for the Python original's "if debug: print(...)" block in
// mypl_vm.py's run loop (SPEC_FULL.md §D). Every traced run is tagged
// with a google/uuid correlation id so interleaved or repeated traces
// (e.g. from cmd/mypl watch) can be told apart.
package trace

import "github.com/google/uuid"

// Step describes the VM's state immediately before dispatching one
// instruction.
type Step struct {
	RunID string
	Frame string // current frame's function id
	PC    int
	Instr string // the instruction about to execute, pre-rendered text
	TOS   string // top-of-operand-stack, pre-rendered text ("<empty>" if none)
}

// Tracer receives a Step before each instruction dispatch. Run is called
// once per vm.VM.Run invocation to obtain this run's correlation id.
type Tracer interface {
	Run() string
	Step(s Step)
}

// NewUUIDTracer returns a Tracer that stamps every run with a fresh
// random correlation id and forwards each Step to emit.
func NewUUIDTracer(emit func(Step)) Tracer {
	return &uuidTracer{emit: emit}
}

type uuidTracer struct {
	emit  func(Step)
	runID string
}

func (t *uuidTracer) Run() string {
	t.runID = uuid.NewString()
	return t.runID
}

func (t *uuidTracer) Step(s Step) {
	s.RunID = t.runID
	t.emit(s)
}
