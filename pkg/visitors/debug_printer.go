package visitors

import (
	"fmt"
	"strings"

	"github.com/CalebLefcort/mypl/pkg/ast"
)

// DebugPrinter renders an indented tree dump of a Program, one line per
// node, for inspecting a parse tree during development. Unlike
// pkg/printer it is not meant to be re-parseable.
type DebugPrinter struct {
	ast.BaseVisitor

	output strings.Builder
	indent int
}

// NewDebugPrinter constructs a DebugPrinter.
func NewDebugPrinter() *DebugPrinter {
	return &DebugPrinter{}
}

// String returns the accumulated dump.
func (d *DebugPrinter) String() string {
	return d.output.String()
}

func (d *DebugPrinter) print(format string, args ...interface{}) {
	d.output.WriteString(strings.Repeat("  ", d.indent))
	d.output.WriteString(fmt.Sprintf(format, args...))
	d.output.WriteByte('\n')
}

func (d *DebugPrinter) block(label string, n int, f func()) {
	if n == 0 {
		return
	}
	d.print("%s:", label)
	d.indent++
	f()
	d.indent--
}

func (d *DebugPrinter) VisitProgram(n *ast.Program) interface{} {
	d.print("Program")
	d.indent++
	d.block("Structs", len(n.Structs), func() {
		for _, s := range n.Structs {
			s.Accept(d)
		}
	})
	d.block("Funcs", len(n.Funcs), func() {
		for _, f := range n.Funcs {
			f.Accept(d)
		}
	})
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitStructDef(n *ast.StructDef) interface{} {
	d.print("StructDef %s", n.Name.Lexeme)
	d.indent++
	for _, f := range n.Fields {
		f.Accept(d)
	}
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitFunDef(n *ast.FunDef) interface{} {
	id := n.MangledID
	if id == "" {
		id = n.Name.Lexeme
	}
	d.print("FunDef %s (mangled %s) -> %s", n.Name.Lexeme, id, typeText(n.ReturnType))
	d.indent++
	d.block("Params", len(n.Params), func() {
		for _, p := range n.Params {
			p.Accept(d)
		}
	})
	d.block("Body", len(n.Body), func() {
		for _, s := range n.Body {
			s.Accept(d)
		}
	})
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitVarDef(n *ast.VarDef) interface{} {
	d.print("VarDef %s: %s", n.Name.Lexeme, typeText(n.Type))
	return nil
}

func (d *DebugPrinter) VisitVarDeclStmt(n *ast.VarDeclStmt) interface{} {
	d.print("VarDeclStmt %s: %s", n.Def.Name.Lexeme, typeText(n.Def.Type))
	if n.Expr.First != nil {
		d.indent++
		n.Expr.Accept(d)
		d.indent--
	}
	return nil
}

func (d *DebugPrinter) VisitAssignStmt(n *ast.AssignStmt) interface{} {
	d.print("AssignStmt %s", lvalueText(n.LValue))
	d.indent++
	n.Expr.Accept(d)
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitWhileStmt(n *ast.WhileStmt) interface{} {
	d.print("WhileStmt")
	d.indent++
	n.Condition.Accept(d)
	for _, s := range n.Body {
		s.Accept(d)
	}
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitForStmt(n *ast.ForStmt) interface{} {
	d.print("ForStmt")
	d.indent++
	n.Init.Accept(d)
	n.Condition.Accept(d)
	n.Step.Accept(d)
	for _, s := range n.Body {
		s.Accept(d)
	}
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitIfStmt(n *ast.IfStmt) interface{} {
	d.print("IfStmt")
	d.indent++
	d.print("If:")
	d.indent++
	n.If.Condition.Accept(d)
	for _, s := range n.If.Body {
		s.Accept(d)
	}
	d.indent--
	for _, ei := range n.ElseIfs {
		d.print("ElseIf:")
		d.indent++
		ei.Condition.Accept(d)
		for _, s := range ei.Body {
			s.Accept(d)
		}
		d.indent--
	}
	if n.ElseBody != nil {
		d.print("Else:")
		d.indent++
		for _, s := range n.ElseBody {
			s.Accept(d)
		}
		d.indent--
	}
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitReturnStmt(n *ast.ReturnStmt) interface{} {
	d.print("ReturnStmt")
	if n.Expr.First != nil {
		d.indent++
		n.Expr.Accept(d)
		d.indent--
	}
	return nil
}

func (d *DebugPrinter) VisitCallStmt(n *ast.CallStmt) interface{} {
	d.print("CallStmt")
	d.indent++
	n.Call.Accept(d)
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitExpr(n *ast.Expr) interface{} {
	not := ""
	if n.Not {
		not = "not "
	}
	if n.Op != nil {
		d.print("Expr %s%s", not, n.Op.Lexeme)
	} else {
		d.print("Expr %s", not)
	}
	d.indent++
	n.First.Accept(d)
	if n.Rest != nil {
		n.Rest.Accept(d)
	}
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitSimpleTerm(n *ast.SimpleTerm) interface{} {
	n.RValue.Accept(d)
	return nil
}

func (d *DebugPrinter) VisitComplexTerm(n *ast.ComplexTerm) interface{} {
	d.print("(")
	d.indent++
	n.Expr.Accept(d)
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitSimpleRValue(n *ast.SimpleRValue) interface{} {
	d.print("Literal %s", n.Value.Lexeme)
	return nil
}

func (d *DebugPrinter) VisitNewRValue(n *ast.NewRValue) interface{} {
	if n.IsArrayForm() {
		d.print("New %s[]", n.TypeName.Lexeme)
		d.indent++
		n.ArrayExpr.Accept(d)
		d.indent--
		return nil
	}
	d.print("New %s(...)", n.TypeName.Lexeme)
	d.indent++
	for _, a := range n.StructParams {
		a.Accept(d)
	}
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitCallExpr(n *ast.CallExpr) interface{} {
	id := n.ResolvedID
	if id == "" {
		id = n.Name.Lexeme
	}
	d.print("Call %s", id)
	d.indent++
	for _, a := range n.Args {
		a.Accept(d)
	}
	d.indent--
	return nil
}

func (d *DebugPrinter) VisitVarRValue(n *ast.VarRValue) interface{} {
	d.print("VarRef %s", lvalueText(n.Path))
	return nil
}

func typeText(dt *ast.DataType) string {
	if dt.IsArray {
		return "array " + dt.Name()
	}
	return dt.Name()
}

func lvalueText(path []*ast.VarRef) string {
	var sb strings.Builder
	for i, seg := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.Name.Lexeme)
		if seg.ArrayExpr.First != nil {
			sb.WriteString("[..]")
		}
	}
	return sb.String()
}
