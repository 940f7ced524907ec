package main

import (
	"fmt"
	"os"

	"github.com/CalebLefcort/mypl/internal/trace"
	"github.com/CalebLefcort/mypl/pkg/ast"
	"github.com/CalebLefcort/mypl/pkg/printer"
	"github.com/CalebLefcort/mypl/pkg/visitors"
	"github.com/CalebLefcort/mypl/pkg/vm"
)

// newVM constructs a VM wired to the process's stdout, the configuration
// every driver entry point (run/repl/watch) shares.
func newVM(templates map[string]*vm.FrameTemplate) *vm.VM {
	m := vm.New(templates)
	m.Stdout = os.Stdout
	return m
}

func analyzeProgram(prog *ast.Program) error {
	return visitors.Analyze(prog)
}

func printSource(prog *ast.Program) string {
	return printer.Print(prog)
}

// newStderrTracer prints each VM step to stderr as it happens, for
// `mypl run --trace`.
func newStderrTracer() trace.Tracer {
	return trace.NewUUIDTracer(func(s trace.Step) {
		fmt.Fprintf(os.Stderr, "[%s] %s:%d %s (tos=%s)\n", s.RunID, s.Frame, s.PC, s.Instr, s.TOS)
	})
}
