// Package ast defines the tagged-variant abstract syntax tree produced by
// pkg/parser (spec.md §3) and the Visitor interface used to walk it.
package ast

import "github.com/CalebLefcort/mypl/pkg/token"

// Node is implemented by every AST node; Accept dispatches to the matching
// Visit method, in the style of guix's pkg/ast ASTNode/Visitor pair.
type Node interface {
	Accept(v Visitor) interface{}
}

// Program is the root node: an ordered sequence of struct definitions
// followed by an ordered sequence of function definitions.
type Program struct {
	Structs []*StructDef
	Funcs   []*FunDef
}

func (n *Program) Accept(v Visitor) interface{} { return v.VisitProgram(n) }

// StructDef names a struct type and its ordered fields. Field order
// matters: it drives positional construction in NewRValue.
type StructDef struct {
	Name   token.Token
	Fields []*VarDef
}

func (n *StructDef) Accept(v Visitor) interface{} { return v.VisitStructDef(n) }

// FunDef is a function or procedure definition.
type FunDef struct {
	ReturnType *DataType
	Name       token.Token
	Params     []*VarDef
	Body       []Stmt

	// MangledID is filled in by the semantic analyzer (spec.md §3's
	// mangling rule) and consumed by the code generator.
	MangledID string
}

func (n *FunDef) Accept(v Visitor) interface{} { return v.VisitFunDef(n) }

// DataType names a base type or struct type, with an array flag.
type DataType struct {
	TypeName token.Token
	IsArray  bool
}

func (n *DataType) Accept(v Visitor) interface{} { return v.VisitDataType(n) }

// Name returns the bare type name text ("int", "Point", ...).
func (d *DataType) Name() string { return d.TypeName.Lexeme }

// VarDef pairs a DataType with a variable name; used for struct fields,
// function parameters, and var declarations.
type VarDef struct {
	Type *DataType
	Name token.Token
}

func (n *VarDef) Accept(v Visitor) interface{} { return v.VisitVarDef(n) }

// Stmt is implemented by every statement variant.
type Stmt interface {
	Node
	stmtNode()
}

// VarDeclStmt declares a variable, with an optional initializer.
type VarDeclStmt struct {
	Def  *VarDef
	Expr Expr // zero Expr (First == nil) if uninitialized
}

func (n *VarDeclStmt) Accept(v Visitor) interface{} { return v.VisitVarDeclStmt(n) }
func (*VarDeclStmt) stmtNode()                      {}

// AssignStmt assigns an expression to a non-empty lvalue path.
type AssignStmt struct {
	LValue []*VarRef
	Expr   Expr
}

func (n *AssignStmt) Accept(v Visitor) interface{} { return v.VisitAssignStmt(n) }
func (*AssignStmt) stmtNode()                      {}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Condition Expr
	Body      []Stmt
}

func (n *WhileStmt) Accept(v Visitor) interface{} { return v.VisitWhileStmt(n) }
func (*WhileStmt) stmtNode()                      {}

// ForStmt is a C-style counted loop: init is always a VarDeclStmt.
type ForStmt struct {
	Init      *VarDeclStmt
	Condition Expr
	Step      *AssignStmt
	Body      []Stmt
}

func (n *ForStmt) Accept(v Visitor) interface{} { return v.VisitForStmt(n) }
func (*ForStmt) stmtNode()                      {}

// BasicIf is a condition/body pair shared by the primary if and every
// elseif clause of an IfStmt.
type BasicIf struct {
	Condition Expr
	Body      []Stmt
}

func (n *BasicIf) Accept(v Visitor) interface{} { return v.VisitBasicIf(n) }

// IfStmt has exactly one primary BasicIf, an ordered list of elseif
// BasicIfs, and a (possibly empty) terminal else body.
type IfStmt struct {
	If       *BasicIf
	ElseIfs  []*BasicIf
	ElseBody []Stmt // nil if there is no else
}

func (n *IfStmt) Accept(v Visitor) interface{} { return v.VisitIfStmt(n) }
func (*IfStmt) stmtNode()                      {}

// ReturnStmt returns a value (possibly null) from the enclosing function.
type ReturnStmt struct {
	Expr Expr
}

func (n *ReturnStmt) Accept(v Visitor) interface{} { return v.VisitReturnStmt(n) }
func (*ReturnStmt) stmtNode()                      {}

// CallStmt wraps a CallExpr used as a statement (its result is discarded).
type CallStmt struct {
	Call *CallExpr
}

func (n *CallStmt) Accept(v Visitor) interface{} { return v.VisitCallStmt(n) }
func (*CallStmt) stmtNode()                      {}

// Expr is (not-flag, first operand, optional binary operator, optional
// rest). Binary operators are right-associative: Rest nests under Op
// exactly as parsed, and no later pass ever re-balances the tree
// (spec.md §4.2, §9).
type Expr struct {
	Not   bool
	First Term
	Op    *token.Token // nil if this is not a binary expression
	Rest  *Expr        // nil unless Op is set
}

func (n *Expr) Accept(v Visitor) interface{} { return v.VisitExpr(n) }

// Term is either a SimpleTerm (an rvalue) or a ComplexTerm (a parenthesized
// sub-expression, which forces left-grouping).
type Term interface {
	Node
	termNode()
}

type SimpleTerm struct {
	RValue RValue
}

func (n *SimpleTerm) Accept(v Visitor) interface{} { return v.VisitSimpleTerm(n) }
func (*SimpleTerm) termNode()                      {}

type ComplexTerm struct {
	Expr *Expr
}

func (n *ComplexTerm) Accept(v Visitor) interface{} { return v.VisitComplexTerm(n) }
func (*ComplexTerm) termNode()                      {}

// RValue is implemented by every right-hand-side value variant.
type RValue interface {
	Node
	rvalueNode()
}

// SimpleRValue wraps a literal token (int/double/bool/string/null).
type SimpleRValue struct {
	Value token.Token
}

func (n *SimpleRValue) Accept(v Visitor) interface{} { return v.VisitSimpleRValue(n) }
func (*SimpleRValue) rvalueNode()                    {}

// NewRValue allocates an array or a struct. Exactly one of ArrayExpr or
// StructParams is present.
type NewRValue struct {
	TypeName     token.Token
	ArrayExpr    Expr   // First is non-nil only for "new T[n]"
	StructParams []Expr // non-nil (possibly empty) for "new T(...)"
}

func (n *NewRValue) Accept(v Visitor) interface{} { return v.VisitNewRValue(n) }
func (*NewRValue) rvalueNode()                     {}

// IsArrayForm reports whether this is an array allocation: "new T[n]" always
// carries a size expression, while "new T(...)" never sets ArrayExpr.
func (n *NewRValue) IsArrayForm() bool { return n.ArrayExpr.First != nil }

// CallExpr names a function call. ResolvedID is filled in by the semantic
// analyzer (spec.md §4.3's call resolution) and read by the code
// generator and, for diagnostics, by the VM.
type CallExpr struct {
	Name       token.Token
	Args       []Expr
	ResolvedID string
}

func (n *CallExpr) Accept(v Visitor) interface{} { return v.VisitCallExpr(n) }
func (*CallExpr) rvalueNode()                     {}

// VarRValue reads through a non-empty ordered path of VarRefs.
type VarRValue struct {
	Path []*VarRef
}

func (n *VarRValue) Accept(v Visitor) interface{} { return v.VisitVarRValue(n) }
func (*VarRValue) rvalueNode()                     {}

// VarRef is one segment of an lvalue/rvalue path: a name, with an
// optional array index expression.
type VarRef struct {
	Name      token.Token
	ArrayExpr Expr // zero Expr (First == nil) if this segment is not indexed
}

func (n *VarRef) Accept(v Visitor) interface{} { return v.VisitVarRef(n) }
