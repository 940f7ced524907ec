// Package diagnostics defines the four terminal error kinds the core
// pipeline can surface (spec.md §7): LexError, ParseError, StaticError, and
// VMError. Each carries a message and enough origin information for a
// caller to render a human-readable message; none wraps another error,
// and none of them are recoverable within the core (spec.md §1, §5).
package diagnostics

import (
	"fmt"

	"github.com/CalebLefcort/mypl/pkg/token"
)

// LexError reports malformed input discovered while tokenizing.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error at %s: %s", e.Pos, e.Message)
}

// ParseError reports an unexpected token during parsing, naming both the
// offending lexeme and the construct the parser expected.
type ParseError struct {
	Pos      token.Position
	Lexeme   string
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: expected %s, got %q", e.Pos, e.Expected, e.Lexeme)
}

// StaticError reports a semantic-analysis violation: name collisions, type
// mismatches, undefined references, arity mismatches, built-in
// redefinition, a missing main, an invalid assignment path, and so on.
// Origin is the offending token.
type StaticError struct {
	Pos     token.Position
	Message string
}

func (e *StaticError) Error() string {
	return fmt.Sprintf("static error at %s: %s", e.Pos, e.Message)
}

// VMError reports a runtime fault: division by zero, a dynamic type
// mismatch, a null dereference, an out-of-bounds index, a missing field, a
// call to an undefined function, or an invalid conversion. Origin is the
// function id, program counter, and the offending instruction's text.
type VMError struct {
	FunctionID string
	PC         int
	Instr      string
	Message    string
}

func (e *VMError) Error() string {
	if e.FunctionID == "" {
		return fmt.Sprintf("runtime error: %s", e.Message)
	}
	return fmt.Sprintf("runtime error: %s (in %s at %d: %s)", e.Message, e.FunctionID, e.PC, e.Instr)
}
