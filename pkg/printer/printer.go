// Package printer renders a Program back into mypl source text that, fed
// through pkg/parser again, reproduces an equivalent AST (spec.md §8's
// parse/print/reparse idempotence property). Grounded on
// pkg/visitors.DebugPrinter's indentation bookkeeping, but emitting valid
// source instead of a debug tree.
package printer

import (
	"fmt"
	"strings"

	"github.com/CalebLefcort/mypl/pkg/ast"
	"github.com/CalebLefcort/mypl/pkg/token"
)

// Print renders prog as mypl source text.
func Print(prog *ast.Program) string {
	p := &printer{}
	p.program(prog)
	return p.out.String()
}

type printer struct {
	out    strings.Builder
	indent int
}

func (p *printer) line(format string, args ...interface{}) {
	p.out.WriteString(strings.Repeat("    ", p.indent))
	p.out.WriteString(fmt.Sprintf(format, args...))
	p.out.WriteByte('\n')
}

func (p *printer) program(n *ast.Program) {
	for _, s := range n.Structs {
		p.structDef(s)
		p.out.WriteByte('\n')
	}
	for _, f := range n.Funcs {
		p.funDef(f)
		p.out.WriteByte('\n')
	}
}

func (p *printer) structDef(n *ast.StructDef) {
	p.line("struct %s {", n.Name.Lexeme)
	p.indent++
	for _, f := range n.Fields {
		p.line("%s;", varDefText(f))
	}
	p.indent--
	p.line("}")
}

func (p *printer) funDef(n *ast.FunDef) {
	params := make([]string, len(n.Params))
	for i, prm := range n.Params {
		params[i] = varDefText(prm)
	}
	p.line("%s %s(%s) {", typeText(n.ReturnType), n.Name.Lexeme, strings.Join(params, ", "))
	p.indent++
	p.block(n.Body)
	p.indent--
	p.line("}")
}

func (p *printer) block(stmts []ast.Stmt) {
	for _, s := range stmts {
		p.stmt(s)
	}
}

func (p *printer) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDeclStmt:
		if n.Expr.First != nil {
			p.line("%s = %s;", varDefText(n.Def), p.expr(&n.Expr))
		} else {
			p.line("%s;", varDefText(n.Def))
		}
	case *ast.AssignStmt:
		p.line("%s = %s;", lvalueText(n.LValue), p.expr(&n.Expr))
	case *ast.WhileStmt:
		p.line("while (%s) {", p.expr(&n.Condition))
		p.indent++
		p.block(n.Body)
		p.indent--
		p.line("}")
	case *ast.ForStmt:
		init := varDefText(n.Init.Def)
		if n.Init.Expr.First != nil {
			init += " = " + p.expr(&n.Init.Expr)
		}
		p.line("for (%s; %s; %s = %s) {",
			init,
			p.expr(&n.Condition),
			lvalueText(n.Step.LValue), p.expr(&n.Step.Expr))
		p.indent++
		p.block(n.Body)
		p.indent--
		p.line("}")
	case *ast.IfStmt:
		p.line("if (%s) {", p.expr(&n.If.Condition))
		p.indent++
		p.block(n.If.Body)
		p.indent--
		for _, ei := range n.ElseIfs {
			p.line("} elseif (%s) {", p.expr(&ei.Condition))
			p.indent++
			p.block(ei.Body)
			p.indent--
		}
		if n.ElseBody != nil {
			p.line("} else {")
			p.indent++
			p.block(n.ElseBody)
			p.indent--
		}
		p.line("}")
	case *ast.ReturnStmt:
		if n.Expr.First != nil {
			p.line("return %s;", p.expr(&n.Expr))
		} else {
			p.line("return;")
		}
	case *ast.CallStmt:
		p.line("%s;", p.call(n.Call))
	}
}

func (p *printer) expr(e *ast.Expr) string {
	var sb strings.Builder
	if e.Not {
		sb.WriteString("not ")
	}
	sb.WriteString(p.term(e.First))
	if e.Op != nil {
		sb.WriteByte(' ')
		sb.WriteString(e.Op.Lexeme)
		sb.WriteByte(' ')
		sb.WriteString(p.expr(e.Rest))
	}
	return sb.String()
}

func (p *printer) term(t ast.Term) string {
	switch n := t.(type) {
	case *ast.SimpleTerm:
		return p.rvalue(n.RValue)
	case *ast.ComplexTerm:
		return "(" + p.expr(n.Expr) + ")"
	}
	return ""
}

func (p *printer) rvalue(rv ast.RValue) string {
	switch n := rv.(type) {
	case *ast.SimpleRValue:
		if n.Value.Kind == token.STRING_VAL {
			return "\"" + n.Value.Lexeme + "\""
		}
		return n.Value.Lexeme
	case *ast.NewRValue:
		if n.IsArrayForm() {
			return "new " + n.TypeName.Lexeme + "[" + p.expr(&n.ArrayExpr) + "]"
		}
		args := make([]string, len(n.StructParams))
		for i := range n.StructParams {
			args[i] = p.expr(&n.StructParams[i])
		}
		return "new " + n.TypeName.Lexeme + "(" + strings.Join(args, ", ") + ")"
	case *ast.CallExpr:
		return p.call(n)
	case *ast.VarRValue:
		return lvalueText(n.Path)
	}
	return ""
}

func (p *printer) call(n *ast.CallExpr) string {
	args := make([]string, len(n.Args))
	for i := range n.Args {
		args[i] = p.expr(&n.Args[i])
	}
	return n.Name.Lexeme + "(" + strings.Join(args, ", ") + ")"
}

func typeText(dt *ast.DataType) string {
	if dt.IsArray {
		return "array " + dt.Name()
	}
	return dt.Name()
}

func varDefText(v *ast.VarDef) string {
	return typeText(v.Type) + " " + v.Name.Lexeme
}

func lvalueText(path []*ast.VarRef) string {
	var sb strings.Builder
	for i, seg := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.Name.Lexeme)
		if seg.ArrayExpr.First != nil {
			sb.WriteByte('[')
			sb.WriteString(exprInline(&seg.ArrayExpr))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// exprInline renders an index expression without access to the enclosing
// printer's indent state, which index expressions never need.
func exprInline(e *ast.Expr) string {
	p := &printer{}
	return p.expr(e)
}
