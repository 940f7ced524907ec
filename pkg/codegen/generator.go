// Package codegen walks a semantically-checked Program and emits one
// vm.FrameTemplate per user function, keyed by its mangled id, plus a
// struct field table used for positional struct construction.
//
// Grounded on original_source/bin/mpl/mypl_code_gen.py for emission
// rules (the >/>= operand-swap into CMPLT/CMPLE, the JMPF/JMP/trailing-
// NOP back-patch dance, ALLOCS;DUP;SETF struct construction, implicit
// "PUSH null; RET" on void fall-through); package boundary grounded on
// guix's pkg/codegen and skx-math-compiler/compiler's three-step
// tokens->internal-form->output shape.
package codegen

import (
	"strings"

	"github.com/CalebLefcort/mypl/pkg/ast"
	"github.com/CalebLefcort/mypl/pkg/token"
	"github.com/CalebLefcort/mypl/pkg/vm"
)

// varTable is a per-function stack of environments mapping a source name
// to a dense slot index. Slots are never reused after a scope pops
// (spec.md §4.4), which keeps back-patched jump targets simple: no
// instruction ever needs to move.
type varTable struct {
	scopes []map[string]int
	next   int
}

func newVarTable() *varTable {
	return &varTable{scopes: []map[string]int{{}}}
}

func (v *varTable) push() { v.scopes = append(v.scopes, map[string]int{}) }
func (v *varTable) pop()  { v.scopes = v.scopes[:len(v.scopes)-1] }

func (v *varTable) add(name string) int {
	slot := v.next
	v.next++
	v.scopes[len(v.scopes)-1][name] = slot
	return slot
}

func (v *varTable) lookup(name string) int {
	for i := len(v.scopes) - 1; i >= 0; i-- {
		if slot, ok := v.scopes[i][name]; ok {
			return slot
		}
	}
	return -1
}

// Generator produces frame templates for every function in a Program.
// structFields maps a struct name to its ordered field-name list, used
// to resolve positional new-expression arguments to SETF names.
type Generator struct {
	structFields map[string][]string
}

// New constructs a Generator. prog is assumed to have already passed
// visitors.Analyze (FunDef.MangledID and CallExpr.ResolvedID are set).
func New(prog *ast.Program) *Generator {
	g := &Generator{structFields: map[string][]string{}}
	for _, sd := range prog.Structs {
		names := make([]string, len(sd.Fields))
		for i, f := range sd.Fields {
			names[i] = f.Name.Lexeme
		}
		g.structFields[sd.Name.Lexeme] = names
	}
	return g
}

// Generate emits one FrameTemplate per function, keyed by mangled id.
func (g *Generator) Generate(prog *ast.Program) map[string]*vm.FrameTemplate {
	out := make(map[string]*vm.FrameTemplate, len(prog.Funcs))
	for _, fd := range prog.Funcs {
		out[fd.MangledID] = g.genFunc(fd)
	}
	return out
}

func (g *Generator) genFunc(fd *ast.FunDef) *vm.FrameTemplate {
	fg := &funcGen{structFields: g.structFields, vars: newVarTable()}
	for _, p := range fd.Params {
		fg.vars.add(p.Name.Lexeme)
	}
	// The call protocol leaves the first argument on top of the callee's
	// operand stack (spec.md §4.5), so STOREs into slots 0..n-1 pop the
	// parameters in declared order.
	for i := range fd.Params {
		fg.emit(&vm.Instruction{Op: vm.STORE, Operand: i})
	}
	for _, s := range fd.Body {
		fg.genStmt(s)
	}
	if fd.ReturnType.Name() == "void" && !fd.ReturnType.IsArray {
		fg.emit(&vm.Instruction{Op: vm.PUSH, Value: vm.Null})
		fg.emit(&vm.Instruction{Op: vm.RET})
	}
	return &vm.FrameTemplate{ID: fd.MangledID, ParamCount: len(fd.Params), Instrs: fg.instrs}
}

// funcGen holds per-function emission state.
type funcGen struct {
	structFields map[string][]string
	vars         *varTable
	instrs       []*vm.Instruction
}

func (fg *funcGen) emit(i *vm.Instruction) int {
	fg.instrs = append(fg.instrs, i)
	return len(fg.instrs) - 1
}

// patchTo emits a landing NOP and sets every jump in targets to it.
// Instructions are pointers, so a placeholder jump kept from emission
// time (such as each branch's exit JMP in an if/elseif cascade, all of
// which share one end label) is patched in place without re-walking the
// instruction list by index.
func (fg *funcGen) patchTo(targets []*vm.Instruction) {
	landing := fg.emit(&vm.Instruction{Op: vm.NOP})
	for _, t := range targets {
		t.Operand = landing
	}
}

func (fg *funcGen) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDeclStmt:
		slot := fg.vars.add(n.Def.Name.Lexeme)
		if n.Expr.First != nil {
			fg.genExpr(&n.Expr)
		} else {
			fg.emit(&vm.Instruction{Op: vm.PUSH, Value: vm.Null})
		}
		fg.emit(&vm.Instruction{Op: vm.STORE, Operand: slot})

	case *ast.AssignStmt:
		fg.genAssign(n)

	case *ast.WhileStmt:
		head := fg.emit(&vm.Instruction{Op: vm.NOP})
		fg.genExpr(&n.Condition)
		exit := fg.emit(&vm.Instruction{Op: vm.JMPF})
		fg.vars.push()
		for _, s := range n.Body {
			fg.genStmt(s)
		}
		fg.vars.pop()
		fg.emit(&vm.Instruction{Op: vm.JMP, Operand: head})
		fg.patchTo([]*vm.Instruction{fg.instrs[exit]})

	case *ast.ForStmt:
		fg.vars.push()
		slot := fg.vars.add(n.Init.Def.Name.Lexeme)
		if n.Init.Expr.First != nil {
			fg.genExpr(&n.Init.Expr)
		} else {
			fg.emit(&vm.Instruction{Op: vm.PUSH, Value: vm.Null})
		}
		fg.emit(&vm.Instruction{Op: vm.STORE, Operand: slot})

		head := fg.emit(&vm.Instruction{Op: vm.NOP})
		fg.genExpr(&n.Condition)
		exit := fg.emit(&vm.Instruction{Op: vm.JMPF})
		fg.vars.push()
		for _, s := range n.Body {
			fg.genStmt(s)
		}
		fg.vars.pop()
		fg.genAssign(n.Step)
		fg.emit(&vm.Instruction{Op: vm.JMP, Operand: head})
		fg.patchTo([]*vm.Instruction{fg.instrs[exit]})
		fg.vars.pop()

	case *ast.IfStmt:
		fg.genIf(n)

	case *ast.ReturnStmt:
		if n.Expr.First != nil {
			fg.genExpr(&n.Expr)
		} else {
			fg.emit(&vm.Instruction{Op: vm.PUSH, Value: vm.Null})
		}
		fg.emit(&vm.Instruction{Op: vm.RET})

	case *ast.CallStmt:
		fg.genCall(n.Call)
		// User functions always RET a value (null for void), but void
		// built-ins push nothing, so there is no result to discard.
		if rt, ok := vm.BuiltinReturnType(n.Call.ResolvedID); !ok || rt.Name != "void" || rt.IsArray {
			fg.emit(&vm.Instruction{Op: vm.POP})
		}
	}
}

// genIf emits an if/elseif/else cascade. Every branch's exit JMP shares
// one patch target: the trailing NOP landing past the whole cascade
// (spec.md §4.4).
func (fg *funcGen) genIf(n *ast.IfStmt) {
	var exits []*vm.Instruction

	genBranch := func(bi *ast.BasicIf) {
		fg.genExpr(&bi.Condition)
		skipIdx := fg.emit(&vm.Instruction{Op: vm.JMPF})
		fg.vars.push()
		for _, s := range bi.Body {
			fg.genStmt(s)
		}
		fg.vars.pop()
		exitIdx := fg.emit(&vm.Instruction{Op: vm.JMP})
		exits = append(exits, fg.instrs[exitIdx])
		landing := fg.emit(&vm.Instruction{Op: vm.NOP})
		fg.instrs[skipIdx].Operand = landing
	}

	genBranch(n.If)
	for _, ei := range n.ElseIfs {
		genBranch(ei)
	}
	if n.ElseBody != nil {
		fg.vars.push()
		for _, s := range n.ElseBody {
			fg.genStmt(s)
		}
		fg.vars.pop()
	}
	fg.patchTo(exits)
}

func (fg *funcGen) genAssign(n *ast.AssignStmt) {
	path := n.LValue
	head := path[0]
	headSlot := fg.vars.lookup(head.Name.Lexeme)

	if len(path) == 1 && head.ArrayExpr.First == nil {
		fg.genExpr(&n.Expr)
		fg.emit(&vm.Instruction{Op: vm.STORE, Operand: headSlot})
		return
	}

	fg.emit(&vm.Instruction{Op: vm.LOAD, Operand: headSlot})
	if head.ArrayExpr.First != nil {
		fg.genExpr(&head.ArrayExpr)
		if len(path) == 1 {
			fg.genExpr(&n.Expr)
			fg.emit(&vm.Instruction{Op: vm.SETI})
			return
		}
		fg.emit(&vm.Instruction{Op: vm.GETI})
	}
	for i := 1; i < len(path); i++ {
		seg := path[i]
		last := i == len(path)-1
		if last && seg.ArrayExpr.First == nil {
			fg.genExpr(&n.Expr)
			fg.emit(&vm.Instruction{Op: vm.SETF, Name: seg.Name.Lexeme})
			return
		}
		fg.emit(&vm.Instruction{Op: vm.GETF, Name: seg.Name.Lexeme})
		if seg.ArrayExpr.First != nil {
			fg.genExpr(&seg.ArrayExpr)
			if last {
				fg.genExpr(&n.Expr)
				fg.emit(&vm.Instruction{Op: vm.SETI})
				return
			}
			fg.emit(&vm.Instruction{Op: vm.GETI})
		}
	}
}

// genExpr emits this expression's value. > and >= are emitted by
// generating the right operand (Rest) then the left operand (First),
// then CMPLT/CMPLE — the reversed-operand trick of spec.md §4.4 that
// lets the VM's comparison set stay LT/LE/EQ/NE only.
func (fg *funcGen) genExpr(e *ast.Expr) {
	if e.Op == nil {
		fg.genTerm(e.First)
		fg.applyNot(e)
		return
	}
	switch e.Op.Kind {
	case token.GT:
		fg.genExpr(e.Rest)
		fg.genTerm(e.First)
		fg.emit(&vm.Instruction{Op: vm.CMPLT})
	case token.GE:
		fg.genExpr(e.Rest)
		fg.genTerm(e.First)
		fg.emit(&vm.Instruction{Op: vm.CMPLE})
	default:
		fg.genTerm(e.First)
		fg.genExpr(e.Rest)
		fg.emit(&vm.Instruction{Op: binOpcode(e.Op.Kind)})
	}
	fg.applyNot(e)
}

func (fg *funcGen) applyNot(e *ast.Expr) {
	if e.Not {
		fg.emit(&vm.Instruction{Op: vm.NOT})
	}
}

func binOpcode(k token.Kind) vm.Opcode {
	switch k {
	case token.PLUS:
		return vm.ADD
	case token.MINUS:
		return vm.SUB
	case token.STAR:
		return vm.MUL
	case token.SLASH:
		return vm.DIV
	case token.LT:
		return vm.CMPLT
	case token.LE:
		return vm.CMPLE
	case token.EQ:
		return vm.CMPEQ
	case token.NE:
		return vm.CMPNE
	case token.AND:
		return vm.AND
	case token.OR:
		return vm.OR
	}
	return vm.NOP
}

func (fg *funcGen) genTerm(t ast.Term) {
	switch n := t.(type) {
	case *ast.SimpleTerm:
		fg.genRValue(n.RValue)
	case *ast.ComplexTerm:
		fg.genExpr(n.Expr)
	}
}

func (fg *funcGen) genRValue(rv ast.RValue) {
	switch n := rv.(type) {
	case *ast.SimpleRValue:
		fg.emit(&vm.Instruction{Op: vm.PUSH, Value: literalValue(n.Value)})
	case *ast.NewRValue:
		fg.genNew(n)
	case *ast.CallExpr:
		fg.genCall(n)
	case *ast.VarRValue:
		fg.genVarRValue(n)
	}
}

// literalValue converts a literal token's lexeme into a vm.Value,
// resolving string escapes at emit time (spec.md §4.4): \n and \t, plus
// \" and \\, which the lexer also keeps inside a string literal.
func literalValue(t token.Token) vm.Value {
	switch t.Kind {
	case token.INT_VAL:
		n := 0
		neg := false
		s := t.Lexeme
		for i, c := range s {
			if i == 0 && c == '-' {
				neg = true
				continue
			}
			n = n*10 + int(c-'0')
		}
		if neg {
			n = -n
		}
		return vm.Int(n)
	case token.DOUBLE_VAL:
		return vm.Double(parseDouble(t.Lexeme))
	case token.BOOL_VAL:
		return vm.Bool(t.Lexeme == "true")
	case token.STRING_VAL:
		return vm.Str(resolveEscapes(t.Lexeme))
	case token.NULL_VAL:
		return vm.Null
	}
	return vm.Null
}

func resolveEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case 't':
				sb.WriteByte('\t')
				i++
				continue
			case '"':
				sb.WriteByte('"')
				i++
				continue
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func parseDouble(s string) float64 {
	intPart := 0.0
	fracPart := 0.0
	fracDiv := 1.0
	seenDot := false
	for _, c := range s {
		if c == '.' {
			seenDot = true
			continue
		}
		d := float64(c - '0')
		if !seenDot {
			intPart = intPart*10 + d
		} else {
			fracPart = fracPart*10 + d
			fracDiv *= 10
		}
	}
	return intPart + fracPart/fracDiv
}

func (fg *funcGen) genNew(n *ast.NewRValue) {
	if n.IsArrayForm() {
		fg.genExpr(&n.ArrayExpr)
		fg.emit(&vm.Instruction{Op: vm.ALLOCA})
		return
	}
	fg.emit(&vm.Instruction{Op: vm.ALLOCS})
	fields := fg.structFields[n.TypeName.Lexeme]
	for i, arg := range n.StructParams {
		if i >= len(fields) {
			break
		}
		fg.emit(&vm.Instruction{Op: vm.DUP})
		fg.genExpr(&arg)
		fg.emit(&vm.Instruction{Op: vm.SETF, Name: fields[i]})
	}
}

func (fg *funcGen) genCall(n *ast.CallExpr) {
	for i := range n.Args {
		fg.genExpr(&n.Args[i])
	}
	fg.emit(&vm.Instruction{Op: vm.CALL, Name: n.ResolvedID, Operand: len(n.Args)})
}

func (fg *funcGen) genVarRValue(n *ast.VarRValue) {
	head := n.Path[0]
	slot := fg.vars.lookup(head.Name.Lexeme)
	fg.emit(&vm.Instruction{Op: vm.LOAD, Operand: slot})
	if head.ArrayExpr.First != nil {
		fg.genExpr(&head.ArrayExpr)
		fg.emit(&vm.Instruction{Op: vm.GETI})
	}
	for i := 1; i < len(n.Path); i++ {
		seg := n.Path[i]
		fg.emit(&vm.Instruction{Op: vm.GETF, Name: seg.Name.Lexeme})
		if seg.ArrayExpr.First != nil {
			fg.genExpr(&seg.ArrayExpr)
			fg.emit(&vm.Instruction{Op: vm.GETI})
		}
	}
}
