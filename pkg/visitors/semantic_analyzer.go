// Package visitors provides AST visitor implementations for the compiler
// passes that walk a parsed Program: the semantic analyzer (this file)
// and the debug printer (debug_printer.go).
package visitors

import (
	"strings"

	"github.com/CalebLefcort/mypl/internal/diagnostics"
	"github.com/CalebLefcort/mypl/pkg/ast"
	"github.com/CalebLefcort/mypl/pkg/mangle"
	"github.com/CalebLefcort/mypl/pkg/token"
	"github.com/CalebLefcort/mypl/pkg/vm"
)

// typ is the analyzer's internal representation of a value's static
// type: a type name (a base type, a struct name, or "void" standing in
// for both the void return type and null's universal-bottom type per
// spec.md §4.3) plus an array flag.
type typ struct {
	name    string
	isArray bool
}

var voidType = typ{name: "void"}

func isNullType(t typ) bool { return t == voidType }

func (t typ) String() string {
	if t.isArray {
		return "array " + t.name
	}
	return t.name
}

// Errors accumulates every StaticError found during one Analyze call, in
// the style of guix's SemanticAnalyzer accumulator — the analyzer does
// not fail fast on the first violation.
type Errors []error

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n")
}

// scope is one stack frame of the symbol table: a map from name to typ.
type scope struct {
	vars   map[string]typ
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]typ{}, parent: parent}
}

func (s *scope) define(name string, t typ) bool {
	if _, exists := s.vars[name]; exists {
		return false
	}
	s.vars[name] = t
	return true
}

func (s *scope) lookup(name string) (typ, bool) {
	for e := s; e != nil; e = e.parent {
		if t, ok := e.vars[name]; ok {
			return t, true
		}
	}
	return typ{}, false
}

// Analyzer performs the two-pass semantic check of spec.md §4.3: a
// global pass registering struct and function tables, and a body pass
// that resolves variables, infers and checks types, and mangles call
// sites. Grounded on guix's SemanticAnalyzer (scope-stack-of-maps,
// accumulated-errors shape); the type rules themselves follow
// original_source/mpl/mypl_semantic_checker.py.
type Analyzer struct {
	structs map[string]*ast.StructDef
	funcs   map[string]*ast.FunDef
	errs    Errors
}

// Analyze runs both passes over prog, mutating FunDef.MangledID and
// CallExpr.ResolvedID in place, and returns nil or an Errors aggregate.
func Analyze(prog *ast.Program) error {
	a := &Analyzer{structs: map[string]*ast.StructDef{}, funcs: map[string]*ast.FunDef{}}
	a.globalPass(prog)
	if len(a.errs) == 0 {
		a.bodyPass(prog)
	}
	if len(a.errs) == 0 {
		return nil
	}
	return a.errs
}

func (a *Analyzer) fail(pos token.Position, msg string) {
	a.errs = append(a.errs, &diagnostics.StaticError{Pos: pos, Message: msg})
}

// --- Global pass -----------------------------------------------------

func (a *Analyzer) globalPass(prog *ast.Program) {
	for _, sd := range prog.Structs {
		if _, dup := a.structs[sd.Name.Lexeme]; dup {
			a.fail(sd.Name.Pos, "duplicate struct name "+sd.Name.Lexeme)
			continue
		}
		a.structs[sd.Name.Lexeme] = sd
	}

	for _, sd := range prog.Structs {
		for _, field := range sd.Fields {
			if !a.typeExists(field.Type) {
				a.fail(field.Type.TypeName.Pos, "unknown type "+field.Type.Name()+" in field "+field.Name.Lexeme)
			}
		}
	}

	sawMain := false
	for _, fd := range prog.Funcs {
		id := mangle.ID(fd.Name.Lexeme, paramTypesOf(fd.Params))
		if fd.Name.Lexeme == "main" {
			sawMain = true
			if fd.ReturnType.Name() != "void" || fd.ReturnType.IsArray || len(fd.Params) != 0 {
				a.fail(fd.Name.Pos, "function 'main' must return void and take no parameters")
			}
		}
		if vm.IsBuiltin(id) {
			a.fail(fd.Name.Pos, "function "+id+" collides with a built-in")
			continue
		}
		if _, dup := a.funcs[id]; dup {
			a.fail(fd.Name.Pos, "duplicate function signature "+id)
			continue
		}
		fd.MangledID = id
		a.funcs[id] = fd
	}
	if !sawMain {
		a.fail(token.Position{}, "program has no function named 'main'")
	}
	if _, ok := a.funcs["main"]; !ok {
		a.fail(token.Position{}, "no function with mangled id 'main' exists")
	}
}

func paramTypesOf(params []*ast.VarDef) []mangle.ParamType {
	out := make([]mangle.ParamType, len(params))
	for i, p := range params {
		out[i] = mangle.ParamType{Name: p.Type.Name(), IsArray: p.Type.IsArray}
	}
	return out
}

func (a *Analyzer) typeExists(dt *ast.DataType) bool {
	switch dt.Name() {
	case "int", "double", "bool", "string", "void":
		return true
	}
	_, ok := a.structs[dt.Name()]
	return ok
}

// --- Body pass ---------------------------------------------------------

func (a *Analyzer) bodyPass(prog *ast.Program) {
	for _, fd := range prog.Funcs {
		env := newScope(nil)
		env.define("return", typ{name: fd.ReturnType.Name(), isArray: fd.ReturnType.IsArray})
		for _, p := range fd.Params {
			env.define(p.Name.Lexeme, typ{name: p.Type.Name(), isArray: p.Type.IsArray})
		}
		a.visitBlock(fd.Body, env)
	}
}

func (a *Analyzer) visitBlock(stmts []ast.Stmt, parent *scope) {
	env := newScope(parent)
	for _, s := range stmts {
		a.visitStmt(s, env)
	}
}

func (a *Analyzer) visitStmt(s ast.Stmt, env *scope) {
	switch n := s.(type) {
	case *ast.VarDeclStmt:
		a.visitVarDecl(n, env)
	case *ast.AssignStmt:
		a.visitAssign(n, env)
	case *ast.WhileStmt:
		ct, err := a.inferExpr(&n.Condition, env)
		if err == nil && ct != (typ{name: "bool"}) {
			a.fail(exprPos(&n.Condition), "while condition must be bool")
		}
		a.visitBlock(n.Body, env)
	case *ast.ForStmt:
		forEnv := newScope(env)
		a.visitVarDecl(n.Init, forEnv)
		ct, err := a.inferExpr(&n.Condition, forEnv)
		if err == nil && ct != (typ{name: "bool"}) {
			a.fail(exprPos(&n.Condition), "for condition must be bool")
		}
		a.visitAssign(n.Step, forEnv)
		a.visitBlock(n.Body, forEnv)
	case *ast.IfStmt:
		a.visitBasicIf(n.If, env)
		for _, ei := range n.ElseIfs {
			a.visitBasicIf(ei, env)
		}
		if n.ElseBody != nil {
			a.visitBlock(n.ElseBody, env)
		}
	case *ast.ReturnStmt:
		want, _ := env.lookup("return")
		if n.Expr.First != nil {
			got, err := a.inferExpr(&n.Expr, env)
			if err == nil && got != want && !isNullType(got) {
				a.fail(exprPos(&n.Expr), "return type mismatch: expected "+want.String()+", got "+got.String())
			}
		} else if want != voidType {
			a.fail(token.Position{}, "missing return value for non-void function")
		}
	case *ast.CallStmt:
		a.inferCall(n.Call, env)
	}
}

func (a *Analyzer) visitBasicIf(bi *ast.BasicIf, env *scope) {
	ct, err := a.inferExpr(&bi.Condition, env)
	if err == nil && ct != (typ{name: "bool"}) {
		a.fail(exprPos(&bi.Condition), "if condition must be bool")
	}
	a.visitBlock(bi.Body, env)
}

func (a *Analyzer) visitVarDecl(n *ast.VarDeclStmt, env *scope) {
	if !a.typeExists(n.Def.Type) {
		a.fail(n.Def.Type.TypeName.Pos, "unknown type "+n.Def.Type.Name())
	}
	declared := typ{name: n.Def.Type.Name(), isArray: n.Def.Type.IsArray}
	if n.Expr.First != nil {
		actual, err := a.inferExpr(&n.Expr, env)
		if err == nil && actual != declared && !isNullType(actual) {
			a.fail(n.Def.Name.Pos, "cannot initialize "+n.Def.Name.Lexeme+" of type "+declared.String()+" with "+actual.String())
		}
	}
	if !env.define(n.Def.Name.Lexeme, declared) {
		a.fail(n.Def.Name.Pos, "redeclaration of "+n.Def.Name.Lexeme)
	}
}

func (a *Analyzer) visitAssign(n *ast.AssignStmt, env *scope) {
	lt, err := a.resolveLValue(n.LValue, env)
	if err != nil {
		return
	}
	rt, err := a.inferExpr(&n.Expr, env)
	if err != nil {
		return
	}
	if rt != lt && !isNullType(rt) {
		a.fail(n.LValue[0].Name.Pos, "cannot assign "+rt.String()+" to "+lt.String())
	}
}

// resolveLValue walks a VarRef path per spec.md §4.3: the head name must
// exist; each subsequent segment is a field of the struct type of the
// preceding segment; an intermediate segment that is an array must be
// indexed; an index expression must be int.
func (a *Analyzer) resolveLValue(path []*ast.VarRef, env *scope) (typ, error) {
	head := path[0]
	cur, ok := env.lookup(head.Name.Lexeme)
	if !ok {
		a.fail(head.Name.Pos, "undefined variable "+head.Name.Lexeme)
		return typ{}, errUndefined
	}
	for i, seg := range path {
		if i > 0 {
			sd, ok := a.structs[cur.name]
			if !ok {
				a.fail(seg.Name.Pos, cur.name+" is not a struct type")
				return typ{}, errUndefined
			}
			field, ok := findField(sd, seg.Name.Lexeme)
			if !ok {
				a.fail(seg.Name.Pos, "struct "+sd.Name.Lexeme+" has no field "+seg.Name.Lexeme)
				return typ{}, errUndefined
			}
			cur = field
		}
		if seg.ArrayExpr.First != nil {
			if !cur.isArray {
				a.fail(seg.Name.Pos, seg.Name.Lexeme+" is not an array")
				return typ{}, errUndefined
			}
			it, err := a.inferExpr(&seg.ArrayExpr, env)
			if err == nil && it != (typ{name: "int"}) {
				a.fail(seg.Name.Pos, "array index must be int")
			}
			cur = typ{name: cur.name}
		} else if cur.isArray && i != len(path)-1 {
			a.fail(seg.Name.Pos, seg.Name.Lexeme+" is an array and must be indexed here")
			return typ{}, errUndefined
		}
	}
	return cur, nil
}

func findField(sd *ast.StructDef, name string) (typ, bool) {
	for _, f := range sd.Fields {
		if f.Name.Lexeme == name {
			return typ{name: f.Type.Name(), isArray: f.Type.IsArray}, true
		}
	}
	return typ{}, false
}

var errUndefined = &diagnostics.StaticError{Message: "undefined"}

// --- Expression type inference ----------------------------------------

func (a *Analyzer) inferExpr(e *ast.Expr, env *scope) (typ, error) {
	t, err := a.inferTerm(e.First, env)
	if err != nil {
		return typ{}, err
	}
	var result typ
	if e.Op == nil {
		result = t
	} else {
		rt, err := a.inferExpr(e.Rest, env)
		if err != nil {
			return typ{}, err
		}
		result, err = a.combine(*e.Op, t, rt, e)
		if err != nil {
			return typ{}, err
		}
	}
	if e.Not {
		if result != (typ{name: "bool"}) {
			a.fail(exprPos(e), "'not' requires a bool operand")
			return typ{}, errUndefined
		}
	}
	return result, nil
}

func (a *Analyzer) combine(op token.Token, l, r typ, e *ast.Expr) (typ, error) {
	switch op.Kind {
	case token.PLUS:
		if l == r && !l.isArray && (l.name == "int" || l.name == "double" || l.name == "string") {
			return l, nil
		}
	case token.MINUS, token.STAR, token.SLASH:
		if l == r && !l.isArray && (l.name == "int" || l.name == "double") {
			return l, nil
		}
	case token.LT, token.LE, token.GT, token.GE:
		if l == r && !l.isArray && (l.name == "int" || l.name == "double" || l.name == "string") {
			return typ{name: "bool"}, nil
		}
	case token.AND, token.OR:
		if l == (typ{name: "bool"}) && r == (typ{name: "bool"}) {
			return typ{name: "bool"}, nil
		}
	case token.EQ, token.NE:
		if isNullType(l) || isNullType(r) || l == r {
			return typ{name: "bool"}, nil
		}
	}
	a.fail(exprPos(e), "operator "+op.Lexeme+" not defined for "+l.String()+" and "+r.String())
	return typ{}, errUndefined
}

func (a *Analyzer) inferTerm(t ast.Term, env *scope) (typ, error) {
	switch n := t.(type) {
	case *ast.SimpleTerm:
		return a.inferRValue(n.RValue, env)
	case *ast.ComplexTerm:
		return a.inferExpr(n.Expr, env)
	}
	return typ{}, errUndefined
}

func (a *Analyzer) inferRValue(rv ast.RValue, env *scope) (typ, error) {
	switch n := rv.(type) {
	case *ast.SimpleRValue:
		return literalType(n.Value), nil
	case *ast.NewRValue:
		return a.inferNew(n, env)
	case *ast.CallExpr:
		return a.inferCall(n, env)
	case *ast.VarRValue:
		return a.resolveLValue(n.Path, env)
	}
	return typ{}, errUndefined
}

func literalType(t token.Token) typ {
	switch t.Kind {
	case token.INT_VAL:
		return typ{name: "int"}
	case token.DOUBLE_VAL:
		return typ{name: "double"}
	case token.BOOL_VAL:
		return typ{name: "bool"}
	case token.STRING_VAL:
		return typ{name: "string"}
	case token.NULL_VAL:
		return voidType
	}
	return typ{}
}

func (a *Analyzer) inferNew(n *ast.NewRValue, env *scope) (typ, error) {
	if n.IsArrayForm() {
		it, err := a.inferExpr(&n.ArrayExpr, env)
		if err == nil && it != (typ{name: "int"}) {
			a.fail(n.TypeName.Pos, "array size must be int")
		}
		return typ{name: n.TypeName.Lexeme, isArray: true}, nil
	}
	sd, ok := a.structs[n.TypeName.Lexeme]
	if !ok {
		a.fail(n.TypeName.Pos, "unknown struct type "+n.TypeName.Lexeme)
		return typ{}, errUndefined
	}
	if len(n.StructParams) != len(sd.Fields) {
		a.fail(n.TypeName.Pos, "struct construction arity mismatch")
	}
	for i, arg := range n.StructParams {
		if i >= len(sd.Fields) {
			break
		}
		at, err := a.inferExpr(&arg, env)
		want := typ{name: sd.Fields[i].Type.Name(), isArray: sd.Fields[i].Type.IsArray}
		if err == nil && at != want && !isNullType(at) {
			a.fail(n.TypeName.Pos, "struct field "+sd.Fields[i].Name.Lexeme+" type mismatch")
		}
	}
	return typ{name: n.TypeName.Lexeme}, nil
}

func (a *Analyzer) inferCall(n *ast.CallExpr, env *scope) (typ, error) {
	argTypes := make([]mangle.ParamType, len(n.Args))
	ok := true
	for i := range n.Args {
		at, err := a.inferExpr(&n.Args[i], env)
		if err != nil {
			ok = false
			continue
		}
		argTypes[i] = mangle.ParamType{Name: at.name, IsArray: at.isArray}
	}
	id := mangle.ID(n.Name.Lexeme, argTypes)
	n.ResolvedID = id
	if !ok {
		return typ{}, errUndefined
	}
	if fd, found := a.funcs[id]; found {
		return typ{name: fd.ReturnType.Name(), isArray: fd.ReturnType.IsArray}, nil
	}
	if rt, found := vm.BuiltinReturnType(id); found {
		return typ{name: rt.Name, isArray: rt.IsArray}, nil
	}
	a.fail(n.Name.Pos, "call to undefined function "+id)
	return typ{}, errUndefined
}

// exprPos reports the origin of an expression for diagnostics, taken
// from its first literal/identifier/operator token where available.
func exprPos(e *ast.Expr) token.Position {
	if e.Op != nil {
		return e.Op.Pos
	}
	switch t := e.First.(type) {
	case *ast.SimpleTerm:
		switch rv := t.RValue.(type) {
		case *ast.SimpleRValue:
			return rv.Value.Pos
		case *ast.CallExpr:
			return rv.Name.Pos
		case *ast.NewRValue:
			return rv.TypeName.Pos
		case *ast.VarRValue:
			if len(rv.Path) > 0 {
				return rv.Path[0].Name.Pos
			}
		}
	case *ast.ComplexTerm:
		return exprPos(t.Expr)
	}
	return token.Position{}
}
