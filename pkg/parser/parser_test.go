package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebLefcort/mypl/pkg/ast"
	"github.com/CalebLefcort/mypl/pkg/parser"
)

func TestParseEmptyProgram(t *testing.T) {
	prog, err := parser.ParseString("")
	require.NoError(t, err)
	assert.Empty(t, prog.Structs)
	assert.Empty(t, prog.Funcs)
}

func TestParseStructDef(t *testing.T) {
	prog, err := parser.ParseString(`struct Point { int x; int y; }`)
	require.NoError(t, err)
	require.Len(t, prog.Structs, 1)
	assert.Equal(t, "Point", prog.Structs[0].Name.Lexeme)
	require.Len(t, prog.Structs[0].Fields, 2)
	assert.Equal(t, "x", prog.Structs[0].Fields[0].Name.Lexeme)
}

func TestParseFunDefWithParamsAndCall(t *testing.T) {
	src := `int add(int a, int b){return a+b;} void main(){ print_int(add(2,3)); }`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 2)
	assert.Equal(t, "add", prog.Funcs[0].Name.Lexeme)
	require.Len(t, prog.Funcs[0].Params, 2)
	main := prog.Funcs[1]
	assert.Equal(t, "main", main.Name.Lexeme)
	require.Len(t, main.Body, 1)
	_, ok := main.Body[0].(*ast.CallStmt)
	assert.True(t, ok)
}

func TestParseArrayAllocationAndIndexAssign(t *testing.T) {
	src := `void main(){ array int a = new int[3]; a[0]=1; print_int(a[1]); }`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	body := prog.Funcs[0].Body
	decl, ok := body[0].(*ast.VarDeclStmt)
	require.True(t, ok)
	assert.True(t, decl.Def.Type.IsArray)
	nv, ok := decl.Expr.First.(*ast.SimpleTerm).RValue.(*ast.NewRValue)
	require.True(t, ok)
	assert.True(t, nv.IsArrayForm())

	assign, ok := body[1].(*ast.AssignStmt)
	require.True(t, ok)
	require.Len(t, assign.LValue, 1)
	assert.Equal(t, "a", assign.LValue[0].Name.Lexeme)
	assert.NotNil(t, assign.LValue[0].ArrayExpr.First)
}

func TestParseStructConstructionAndFieldAccess(t *testing.T) {
	src := `struct P{int x; int y;} void main(){ P p = new P(7,9); print_int(p.y); }`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	body := prog.Funcs[0].Body
	decl := body[0].(*ast.VarDeclStmt)
	nv := decl.Expr.First.(*ast.SimpleTerm).RValue.(*ast.NewRValue)
	assert.False(t, nv.IsArrayForm())
	assert.Len(t, nv.StructParams, 2)
}

func TestParseWhileLoop(t *testing.T) {
	src := `void main(){ int i = 0; while (i < 3){ print_int(i); i = i+1; } }`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	_, ok := prog.Funcs[0].Body[1].(*ast.WhileStmt)
	assert.True(t, ok)
}

func TestParseForLoop(t *testing.T) {
	src := `void main(){ for (int i = 0; i < 3; i = i+1) { print_int(i); } }`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	fs, ok := prog.Funcs[0].Body[0].(*ast.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "i", fs.Init.Def.Name.Lexeme)
}

func TestParseIfElseIfElse(t *testing.T) {
	src := `void main(){ if (true) { } elseif (false) { } else { } }`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	is, ok := prog.Funcs[0].Body[0].(*ast.IfStmt)
	require.True(t, ok)
	assert.Len(t, is.ElseIfs, 1)
	assert.NotNil(t, is.ElseBody)
}

func TestBinaryOperatorsAreRightAssociative(t *testing.T) {
	prog, err := parser.ParseString(`void main(){ int x = 1+2+3; }`)
	require.NoError(t, err)
	decl := prog.Funcs[0].Body[0].(*ast.VarDeclStmt)
	// 1 + (2 + 3): the outer expr's Op is '+' and Rest is itself an Expr
	// whose First is the SimpleTerm "2" and whose own Rest covers "3".
	require.NotNil(t, decl.Expr.Op)
	require.NotNil(t, decl.Expr.Rest)
	inner := decl.Expr.Rest
	require.NotNil(t, inner.Op)
	require.NotNil(t, inner.Rest)
	assert.Nil(t, inner.Rest.Op)
}

func TestParenthesizedExprForcesGrouping(t *testing.T) {
	prog, err := parser.ParseString(`void main(){ int x = (1+2)*3; }`)
	require.NoError(t, err)
	decl := prog.Funcs[0].Body[0].(*ast.VarDeclStmt)
	_, ok := decl.Expr.First.(*ast.ComplexTerm)
	assert.True(t, ok)
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	_, err := parser.ParseString(`void main() { int x = ; }`)
	require.Error(t, err)
}

func TestParseErrorPropagatesLexError(t *testing.T) {
	_, err := parser.ParseString(`void main() { int x = 007; }`)
	require.Error(t, err)
}

func TestOverloadedFunctionDefinitions(t *testing.T) {
	src := `int f(int x){return x;} int f(string s){return length_string(s);}`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 2)
}
