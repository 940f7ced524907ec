// Package parser builds a Program AST from a token stream via a
// recursive-descent parser with one token of lookahead (two when
// disambiguating a leading identifier statement), per spec.md §4.2.
//
// The package boundary (New/Parse) is grounded on guix's pkg/parser; the
// grammar itself is hand-rolled against skx-math-compiler and
// other_examples' libklein-jackcompiler-style consume/advance helpers,
// because the grammar's deliberately non-standard (textual,
// right-associative) operator precedence has no natural participle
// encoding (see DESIGN.md).
package parser

import (
	"github.com/CalebLefcort/mypl/internal/diagnostics"
	"github.com/CalebLefcort/mypl/pkg/ast"
	"github.com/CalebLefcort/mypl/pkg/lexer"
	"github.com/CalebLefcort/mypl/pkg/token"
)

// Parser consumes a token stream and produces a *ast.Program.
type Parser struct {
	lex  *lexer.Lexer
	cur  token.Token
	peek token.Token
}

// New constructs a Parser over the given source text.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.cur = p.nextSignificant()
	p.peek = p.nextSignificant()
	return p
}

// ParseString is a convenience entry point equivalent to New(src).Parse().
func ParseString(src string) (*ast.Program, error) {
	return New(src).Parse()
}

// nextSignificant pulls the next token from the lexer, transparently
// skipping COMMENT tokens (spec.md §4.2).
func (p *Parser) nextSignificant() token.Token {
	for {
		t := p.lex.NextToken()
		if t.Kind != token.COMMENT {
			return t
		}
	}
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.nextSignificant()
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) expect(k token.Kind, construct string) (token.Token, error) {
	if p.cur.Kind == token.ERROR {
		return token.Token{}, &diagnostics.LexError{Pos: p.cur.Pos, Message: p.cur.Lexeme}
	}
	if p.cur.Kind != k {
		return token.Token{}, &diagnostics.ParseError{
			Pos: p.cur.Pos, Lexeme: p.cur.Lexeme, Expected: construct,
		}
	}
	t := p.cur
	p.advance()
	return t, nil
}

func (p *Parser) errAt(construct string) error {
	if p.cur.Kind == token.ERROR {
		return &diagnostics.LexError{Pos: p.cur.Pos, Message: p.cur.Lexeme}
	}
	return &diagnostics.ParseError{Pos: p.cur.Pos, Lexeme: p.cur.Lexeme, Expected: construct}
}

// Parse parses a complete program: struct definitions and function
// definitions, in any interleaving, to end-of-stream.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(token.EOS) {
		switch {
		case p.at(token.STRUCT):
			sd, err := p.parseStructDef()
			if err != nil {
				return nil, err
			}
			prog.Structs = append(prog.Structs, sd)
		case p.isDataTypeStart() || p.at(token.VOID_TYPE):
			fd, err := p.parseFunDef()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fd)
		default:
			return nil, p.errAt("struct or function definition")
		}
	}
	return prog, nil
}

func (p *Parser) isDataTypeStart() bool {
	switch p.cur.Kind {
	case token.INT_TYPE, token.DOUBLE_TYPE, token.STRING_TYPE, token.BOOL_TYPE, token.ARRAY, token.IDENT:
		return true
	}
	return false
}

// parseStructDef: STRUCT ID LBRACE (data_type ID SEMI)* RBRACE
func (p *Parser) parseStructDef() (*ast.StructDef, error) {
	if _, err := p.expect(token.STRUCT, "'struct'"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT, "struct name"); if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	sd := &ast.StructDef{Name: name}
	for !p.at(token.RBRACE) {
		dt, err := p.parseDataType(false)
		if err != nil {
			return nil, err
		}
		fieldName, err := p.expect(token.IDENT, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		sd.Fields = append(sd.Fields, &ast.VarDef{Type: dt, Name: fieldName})
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return sd, nil
}

// parseFunDef: (data_type | VOID) ID LPAREN params? RPAREN block
func (p *Parser) parseFunDef() (*ast.FunDef, error) {
	var retType *ast.DataType
	if p.at(token.VOID_TYPE) {
		t := p.cur
		p.advance()
		retType = &ast.DataType{TypeName: t}
	} else {
		dt, err := p.parseDataType(false)
		if err != nil {
			return nil, err
		}
		retType = dt
	}
	name, err := p.expect(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []*ast.VarDef
	if !p.at(token.RPAREN) {
		params, err = p.parseParams()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunDef{ReturnType: retType, Name: name, Params: params, Body: body}, nil
}

// parseParams: data_type ID (COMMA data_type ID)*
func (p *Parser) parseParams() ([]*ast.VarDef, error) {
	var params []*ast.VarDef
	for {
		dt, err := p.parseDataType(false)
		if err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.VarDef{Type: dt, Name: name})
		if !p.at(token.COMMA) {
			break
		}
		p.advance()
	}
	return params, nil
}

// parseDataType: (base_type | ID) | ARRAY (base_type | ID)
func (p *Parser) parseDataType(allowVoid bool) (*ast.DataType, error) {
	if p.at(token.ARRAY) {
		p.advance()
		t, err := p.baseOrStructName()
		if err != nil {
			return nil, err
		}
		return &ast.DataType{TypeName: t, IsArray: true}, nil
	}
	if allowVoid && p.at(token.VOID_TYPE) {
		t := p.cur
		p.advance()
		return &ast.DataType{TypeName: t}, nil
	}
	t, err := p.baseOrStructName()
	if err != nil {
		return nil, err
	}
	return &ast.DataType{TypeName: t}, nil
}

func (p *Parser) baseOrStructName() (token.Token, error) {
	switch p.cur.Kind {
	case token.INT_TYPE, token.DOUBLE_TYPE, token.STRING_TYPE, token.BOOL_TYPE, token.IDENT:
		t := p.cur
		p.advance()
		return t, nil
	}
	return token.Token{}, p.errAt("type name")
}

// parseBlock: LBRACE stmt* RBRACE
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(token.RBRACE) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseStmt dispatches on the current token's first set.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.at(token.WHILE):
		return p.parseWhile()
	case p.at(token.IF):
		return p.parseIf()
	case p.at(token.FOR):
		return p.parseFor()
	case p.at(token.RETURN):
		return p.parseReturn()
	case p.at(token.INT_TYPE), p.at(token.DOUBLE_TYPE), p.at(token.STRING_TYPE), p.at(token.BOOL_TYPE), p.at(token.ARRAY):
		dt, err := p.parseDataType(false)
		if err != nil {
			return nil, err
		}
		return p.parseVarDeclTail(dt)
	case p.at(token.IDENT):
		return p.parseIdentStmt()
	}
	return nil, p.errAt("statement")
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Condition: *cond, Body: body}, nil
}

func (p *Parser) parseBasicIf() (*ast.BasicIf, error) {
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.BasicIf{Condition: *cond, Body: body}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.advance()
	primary, err := p.parseBasicIf()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{If: primary}
	for p.at(token.ELSEIF) {
		p.advance()
		bi, err := p.parseBasicIf()
		if err != nil {
			return nil, err
		}
		stmt.ElseIfs = append(stmt.ElseIfs, bi)
	}
	if p.at(token.ELSE) {
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = []ast.Stmt{}
		}
		stmt.ElseBody = body
	}
	return stmt, nil
}

// parseFor: FOR LPAREN data_type ID = expr SEMI expr SEMI ID assign_tail RPAREN block
func (p *Parser) parseFor() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	dt, err := p.parseDataType(false)
	if err != nil {
		return nil, err
	}
	initStmt, err := p.parseVarDeclTail(dt)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	head, err := p.expect(token.IDENT, "loop variable")
	if err != nil {
		return nil, err
	}
	step, err := p.parseAssignTail(head)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: initStmt.(*ast.VarDeclStmt), Condition: *cond, Step: step, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	p.advance()
	var expr ast.Expr
	if !p.at(token.SEMICOLON) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr = *e
	}
	if _, err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Expr: expr}, nil
}

// parseVarDeclTail: ID (ASSIGN expr)? SEMI, given the DataType already parsed.
func (p *Parser) parseVarDeclTail(dt *ast.DataType) (ast.Stmt, error) {
	name, err := p.expect(token.IDENT, "variable name")
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDeclStmt{Def: &ast.VarDef{Type: dt, Name: name}}
	if p.at(token.ASSIGN) {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		decl.Expr = *e
	}
	if _, err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseIdentStmt disambiguates "ID ID" (struct-typed var decl), "ID ("
// (call statement), and "ID (DOT|LBRACKET|ASSIGN)" (assignment), per
// spec.md §4.2's stmt production.
func (p *Parser) parseIdentStmt() (ast.Stmt, error) {
	head := p.cur
	switch p.peek.Kind {
	case token.IDENT:
		p.advance() // consume the type name; p.cur is now the variable name
		dt := &ast.DataType{TypeName: head}
		return p.parseVarDeclTail(dt)
	case token.LPAREN:
		p.advance()
		call, err := p.parseCallTail(head)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return &ast.CallStmt{Call: call}, nil
	default:
		p.advance() // consume head; p.cur is the first tail token (., [, =)
		assign, err := p.parseAssignTail(head)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return assign, nil
	}
}

// parseAssignTail parses the rest of an lvalue path starting after head
// has already been consumed, then "= expr". The terminating ';' (or, for a
// for-loop step, ')') is left to the caller.
func (p *Parser) parseAssignTail(head token.Token) (*ast.AssignStmt, error) {
	path := []*ast.VarRef{{Name: head}}
	if p.at(token.LBRACKET) {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
			return nil, err
		}
		path[0].ArrayExpr = *idx
	}
	for p.at(token.DOT) {
		p.advance()
		name, err := p.expect(token.IDENT, "field name")
		if err != nil {
			return nil, err
		}
		ref := &ast.VarRef{Name: name}
		if p.at(token.LBRACKET) {
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			ref.ArrayExpr = *idx
		}
		path = append(path, ref)
	}
	if _, err := p.expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{LValue: path, Expr: *rhs}, nil
}

// parseCallTail parses "( args? )" given the call's name token, for use
// both as a statement and as an rvalue.
func (p *Parser) parseCallTail(name token.Token) (*ast.CallExpr, error) {
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	call := &ast.CallExpr{Name: name}
	if !p.at(token.RPAREN) {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, *e)
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return call, nil
}

// parseExpr: (rvalue | NOT expr | LPAREN expr RPAREN) (bin_op expr)?
// Binary operators are right-associative: Rest nests directly under Op,
// with no re-association by this or any later pass (spec.md §4.2, §9).
func (p *Parser) parseExpr() (*ast.Expr, error) {
	expr := &ast.Expr{}
	if p.at(token.NOT) {
		p.advance()
		expr.Not = true
	}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	expr.First = term
	if token.BinaryOps[p.cur.Kind] {
		op := p.cur
		p.advance()
		rest, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Op = &op
		expr.Rest = rest
	}
	return expr, nil
}

func (p *Parser) parseTerm() (ast.Term, error) {
	if p.at(token.LPAREN) {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &ast.ComplexTerm{Expr: e}, nil
	}
	rv, err := p.parseRValue()
	if err != nil {
		return nil, err
	}
	return &ast.SimpleTerm{RValue: rv}, nil
}

func (p *Parser) parseRValue() (ast.RValue, error) {
	switch p.cur.Kind {
	case token.INT_VAL, token.DOUBLE_VAL, token.STRING_VAL, token.BOOL_VAL, token.NULL_VAL:
		t := p.cur
		p.advance()
		return &ast.SimpleRValue{Value: t}, nil
	case token.NEW:
		return p.parseNewRValue()
	case token.IDENT:
		name := p.cur
		if p.peek.Kind == token.LPAREN {
			p.advance()
			return p.parseCallTail(name)
		}
		return p.parseVarRValue()
	}
	return nil, p.errAt("value")
}

// parseNewRValue: NEW (base_type | ID) (LBRACKET expr RBRACKET | LPAREN args? RPAREN)
func (p *Parser) parseNewRValue() (ast.RValue, error) {
	p.advance() // consume NEW
	name, err := p.baseOrStructName()
	if err != nil {
		return nil, err
	}
	n := &ast.NewRValue{TypeName: name}
	switch {
	case p.at(token.LBRACKET):
		p.advance()
		size, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
			return nil, err
		}
		n.ArrayExpr = *size
	case p.at(token.LPAREN):
		p.advance()
		n.StructParams = []ast.Expr{}
		if !p.at(token.RPAREN) {
			for {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				n.StructParams = append(n.StructParams, *e)
				if !p.at(token.COMMA) {
					break
				}
				p.advance()
			}
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
	default:
		return nil, p.errAt("'[' or '(' after new type name")
	}
	return n, nil
}

// parseVarRValue: ID (DOT ID)*, each segment optionally indexed.
func (p *Parser) parseVarRValue() (ast.RValue, error) {
	var path []*ast.VarRef
	for {
		name, err := p.expect(token.IDENT, "identifier")
		if err != nil {
			return nil, err
		}
		ref := &ast.VarRef{Name: name}
		if p.at(token.LBRACKET) {
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			ref.ArrayExpr = *idx
		}
		path = append(path, ref)
		if !p.at(token.DOT) {
			break
		}
		p.advance()
	}
	return &ast.VarRValue{Path: path}, nil
}
