// Package parser implements Cylium's recursive-descent, line-oriented
// parser. Most statements occupy a single line; block constructs
// (proc/if/while/for) span lines and are closed by a matching keyword on
// its own line.
package parser

import (
	"strconv"

	"github.com/Ztry8/Cylium/internal/ast"
	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/internal/token"
	"github.com/Ztry8/Cylium/internal/types"
)

// Parser consumes a 2-D token grid (one slice per preprocessed source
// line) and produces an ast.Program.
type Parser struct {
	lines [][]token.Token
	line  int // index into lines
	pos   int // index into lines[line]
	file  string
}

// New creates a Parser over a token grid produced by the lexer.
func New(lines [][]token.Token, file string) *Parser {
	return &Parser{lines: lines, file: file}
}

func (p *Parser) atEOF() bool { return p.line >= len(p.lines) }

func (p *Parser) atLineEnd() bool {
	return p.atEOF() || p.pos >= len(p.lines[p.line])
}

// cur returns the current token, or a synthetic EOF token at line/program end.
func (p *Parser) cur() token.Token {
	if p.atEOF() {
		return token.Token{Type: token.EOF}
	}
	if p.pos >= len(p.lines[p.line]) {
		last := p.lastLinePos()
		return token.Token{Type: token.EOF, Pos: token.Position{Line: last}}
	}
	return p.lines[p.line][p.pos]
}

// lastLinePos returns the raw line number of the current (or last seen) line.
func (p *Parser) lastLinePos() int {
	if !p.atEOF() && len(p.lines[p.line]) > 0 {
		return p.lines[p.line][0].Pos.Line
	}
	if p.line > 0 && p.line-1 < len(p.lines) && len(p.lines[p.line-1]) > 0 {
		return p.lines[p.line-1][0].Pos.Line
	}
	return 0
}

func (p *Parser) advance() { p.pos++ }

func (p *Parser) nextLine() {
	p.line++
	p.pos = 0
}

// firstTokenType returns the type of the first token on the current line,
// or EOF if the line is empty or we are past the grid's end.
func (p *Parser) firstTokenType() token.Type {
	if p.atEOF() || len(p.lines[p.line]) == 0 {
		return token.EOF
	}
	return p.lines[p.line][0].Type
}

func (p *Parser) errAt(code errors.Code, line int, format string, args ...any) *errors.CompilerError {
	e := errors.New(code, line, 0, format, args...)
	e.File = p.file
	return e
}

// ParseProgram parses the entire token grid into a Program. Parsing stops
// at the first error (spec.md §7's fatal-on-first-error policy).
func (p *Parser) ParseProgram() (*ast.Program, *errors.CompilerError) {
	prog := &ast.Program{}

	for !p.atEOF() {
		if len(p.lines[p.line]) == 0 {
			p.nextLine()
			continue
		}

		switch p.firstTokenType() {
		case token.CONST:
			decl, err := p.parseTopConstDecl()
			if err != nil {
				return nil, err
			}
			prog.Consts = append(prog.Consts, decl)
		case token.PROC:
			proc, err := p.parseProc()
			if err != nil {
				return nil, err
			}
			prog.Procs = append(prog.Procs, proc)
		default:
			return nil, p.errAt(errors.TopLevelOnlyInProc, p.cur().Pos.Line, "only const declarations and proc definitions are allowed at top level")
		}
	}

	return prog, nil
}

func (p *Parser) parseTopConstDecl() (*ast.ConstDecl, *errors.CompilerError) {
	line := p.cur().Pos.Line
	p.advance() // consume 'const'

	typ, err := p.parseTypeKeyword()
	if err != nil {
		return nil, err
	}

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	if p.cur().Type != token.ASSIGN {
		return nil, p.errAt(errors.ExpectedAssignOperator, line, "expected '=' in const declaration")
	}
	p.advance()

	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	p.nextLine()
	return &ast.ConstDecl{Line: line, Name: name, Type: typ, Value: value}, nil
}

func (p *Parser) parseTypeKeyword() (types.Kind, *errors.CompilerError) {
	switch p.cur().Type {
	case token.NUMBER_TYPE:
		p.advance()
		return types.Number, nil
	case token.FLOAT_TYPE:
		p.advance()
		return types.Float, nil
	case token.STRING_TYPE:
		p.advance()
		return types.String, nil
	case token.BOOL_TYPE:
		p.advance()
		return types.Boolean, nil
	default:
		return 0, p.errAt(errors.InvalidExpression, p.cur().Pos.Line, "expected a type keyword, got %q", p.cur().Literal)
	}
}

// parseName consumes an identifier token and validates it per spec.md
// §4.2: ASCII, non-empty, at most 256 characters.
func (p *Parser) parseName() (string, *errors.CompilerError) {
	tok := p.cur()
	if tok.Type != token.IDENT {
		return "", p.errAt(errors.InvalidName, tok.Pos.Line, "expected an identifier, got %q", tok.Literal)
	}
	name := tok.Literal
	if name == "" || len(name) > 256 || !isASCII(name) {
		return "", p.errAt(errors.InvalidName, tok.Pos.Line, "invalid identifier %q", name)
	}
	p.advance()
	return name, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

func (p *Parser) parseProc() (*ast.Proc, *errors.CompilerError) {
	line := p.cur().Pos.Line
	p.advance() // consume 'proc'

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	var params []ast.Param
	for !p.atLineEnd() {
		pname, err := p.parseName()
		if err != nil {
			return nil, err
		}
		if p.cur().Type != token.COLON {
			return nil, p.errAt(errors.InvalidExpression, line, "expected ':' after parameter name %q", pname)
		}
		p.advance()
		ptyp, err := p.parseTypeKeyword()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pname, Type: ptyp})
	}
	p.nextLine()

	body, stop, err := p.parseStmtList(token.END)
	if err != nil {
		return nil, err
	}
	if stop != token.END {
		return nil, p.errAt(errors.InvalidExpression, line, "proc %q is missing its closing 'end'", name)
	}
	p.nextLine() // consume the 'end' line

	return &ast.Proc{Line: line, Name: name, Params: params, Body: body}, nil
}

// parseStmtList parses statements until a line whose first token is one of
// stopTypes, or until EOF. It returns which stop type was hit (EOF if
// none); the terminator line itself is not consumed.
func (p *Parser) parseStmtList(stopTypes ...token.Type) ([]ast.Stmt, token.Type, *errors.CompilerError) {
	stop := map[token.Type]bool{}
	for _, t := range stopTypes {
		stop[t] = true
	}

	var stmts []ast.Stmt
	for {
		if p.atEOF() {
			return stmts, token.EOF, nil
		}
		if len(p.lines[p.line]) == 0 {
			p.nextLine()
			continue
		}
		if stop[p.firstTokenType()] {
			return stmts, p.firstTokenType(), nil
		}

		stmt, err := p.parseStmt()
		if err != nil {
			return nil, token.ILLEGAL, err
		}
		stmts = append(stmts, stmt)
		// Block statements consume their own closing line; single-line
		// statements leave the cursor on the line they were parsed from.
		switch stmt.(type) {
		case *ast.If, *ast.While, *ast.For:
		default:
			p.nextLine()
		}
	}
}

func (p *Parser) parseStmt() (ast.Stmt, *errors.CompilerError) {
	line := p.cur().Pos.Line

	switch p.firstTokenType() {
	case token.NUMBER_TYPE, token.FLOAT_TYPE, token.STRING_TYPE, token.BOOL_TYPE:
		return p.parseVarDecl(false)
	case token.CONST:
		p.advance()
		return p.parseVarDecl(true)
	case token.ECHO:
		p.advance()
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return &ast.Echo{Line: line, Value: val}, nil
	case token.EXIT:
		p.advance()
		tok := p.cur()
		if tok.Type != token.NUMBER {
			return nil, p.errAt(errors.MissingExitCode, line, "exit requires an integer literal")
		}
		code, convErr := strconv.ParseInt(tok.Literal, 10, 64)
		if convErr != nil {
			return nil, p.errAt(errors.MissingExitCode, line, "invalid exit code %q", tok.Literal)
		}
		p.advance()
		return &ast.Exit{Line: line, Code: code}, nil
	case token.DELETE:
		p.advance()
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		return &ast.Delete{Line: line, Name: name}, nil
	case token.CALL:
		p.advance()
		return p.parseCall(line)
	case token.IF:
		p.advance()
		return p.parseIf(line)
	case token.WHILE:
		p.advance()
		return p.parseWhile(line)
	case token.FOR:
		p.advance()
		return p.parseFor(line)
	case token.IDENT:
		return p.parseAssign(line)
	default:
		return nil, p.errAt(errors.InvalidExpression, line, "unexpected token %q", p.cur().Literal)
	}
}

func (p *Parser) parseVarDecl(isConst bool) (ast.Stmt, *errors.CompilerError) {
	line := p.cur().Pos.Line
	typ, err := p.parseTypeKeyword()
	if err != nil {
		return nil, err
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.ASSIGN {
		return nil, p.errAt(errors.ExpectedAssignOperator, line, "expected '=' in variable declaration")
	}
	p.advance()
	val, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{Line: line, Name: name, Type: typ, Value: val, IsConst: isConst}, nil
}

var assignOps = map[token.Type]ast.AssignOp{
	token.ASSIGN:          ast.PlainAssign,
	token.PLUS_ASSIGN:     ast.PlusAssign,
	token.MINUS_ASSIGN:    ast.MinusAssign,
	token.ASTERISK_ASSIGN: ast.MultiplyAssign,
	token.SLASH_ASSIGN:    ast.DivideAssign,
	token.PERCENT_ASSIGN:  ast.ModAssign,
}

func (p *Parser) parseAssign(line int) (ast.Stmt, *errors.CompilerError) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.cur().Type]
	if !ok {
		return nil, p.errAt(errors.InvalidExpression, line, "expected an assignment operator after %q", name)
	}
	p.advance()
	val, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Line: line, Name: name, Op: op, Value: val}, nil
}

func (p *Parser) parseCall(line int) (ast.Stmt, *errors.CompilerError) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	var args []ast.CallArg
	for !p.atLineEnd() {
		tok := p.cur()
		switch tok.Type {
		case token.IDENT:
			args = append(args, ast.CallArg{IsIdent: true, Ident: tok.Literal})
			p.advance()
		case token.NUMBER:
			n, _ := strconv.ParseInt(tok.Literal, 10, 64)
			args = append(args, ast.CallArg{Literal: types.NewNumber(n)})
			p.advance()
		case token.FLOAT:
			f, _ := strconv.ParseFloat(tok.Literal, 64)
			args = append(args, ast.CallArg{Literal: types.NewFloat(f)})
			p.advance()
		case token.STRING:
			args = append(args, ast.CallArg{Literal: types.NewString(tok.Literal)})
			p.advance()
		case token.TRUE:
			args = append(args, ast.CallArg{Literal: types.NewBoolean(true)})
			p.advance()
		case token.FALSE:
			args = append(args, ast.CallArg{Literal: types.NewBoolean(false)})
			p.advance()
		default:
			return nil, p.errAt(errors.InvalidExpression, line, "call arguments must be identifiers or literals")
		}
	}
	return &ast.Call{Line: line, Name: name, Args: args}, nil
}

func (p *Parser) parseIf(line int) (ast.Stmt, *errors.CompilerError) {
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	p.nextLine()

	then, stop, err := p.parseStmtList(token.ENDIF, token.ELSE)
	if err != nil {
		return nil, err
	}

	ifStmt := &ast.If{Line: line, Cond: cond, Then: then}

	switch stop {
	case token.ENDIF:
		p.nextLine()
		return ifStmt, nil
	case token.ELSE:
		elseLine := p.cur().Pos.Line
		p.advance() // consume 'else'
		if p.cur().Type == token.IF {
			p.advance() // consume 'if'
			nested, err := p.parseIf(elseLine)
			if err != nil {
				return nil, err
			}
			ifStmt.Else = &ast.ElseBranch{ElseIf: nested.(*ast.If)}
			return ifStmt, nil
		}
		p.nextLine()
		body, stop2, err := p.parseStmtList(token.ENDIF)
		if err != nil {
			return nil, err
		}
		if stop2 != token.ENDIF {
			return nil, p.errAt(errors.InvalidExpression, line, "if is missing its closing 'endif'")
		}
		p.nextLine()
		ifStmt.Else = &ast.ElseBranch{Body: body}
		return ifStmt, nil
	default:
		return nil, p.errAt(errors.InvalidExpression, line, "if is missing its closing 'endif'")
	}
}

func (p *Parser) parseWhile(line int) (ast.Stmt, *errors.CompilerError) {
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	p.nextLine()

	body, stop, err := p.parseStmtList(token.ENDWHILE)
	if err != nil {
		return nil, err
	}
	if stop != token.ENDWHILE {
		return nil, p.errAt(errors.InvalidExpression, line, "while is missing its closing 'endwhile'")
	}
	p.nextLine()

	return &ast.While{Line: line, Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor(line int) (ast.Stmt, *errors.CompilerError) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.FROM {
		return nil, p.errAt(errors.InvalidExpression, line, "expected 'from' in for statement")
	}
	p.advance()
	start, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.TO {
		return nil, p.errAt(errors.InvalidExpression, line, "expected 'to' in for statement")
	}
	p.advance()
	end, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	var step ast.Expr
	if p.cur().Type == token.STEP {
		p.advance()
		step, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	p.nextLine()

	body, stop, err := p.parseStmtList(token.ENDFOR)
	if err != nil {
		return nil, err
	}
	if stop != token.ENDFOR {
		return nil, p.errAt(errors.InvalidExpression, line, "for is missing its closing 'endfor'")
	}
	p.nextLine()

	return &ast.For{Line: line, Var: name, Start: start, End: end, Step: step, Body: body}, nil
}

// --- expressions ---

var binaryPrec = map[token.Type]int{
	token.OR: 1,
	token.AND: 2,
	token.EQ: 3, token.NOT_EQ: 3, token.GT: 3, token.LT: 3, token.GT_EQ: 3, token.LT_EQ: 3,
	token.PLUS: 4, token.MINUS: 4,
	token.ASTERISK: 5, token.SLASH: 5, token.PERCENT: 5,
	token.AS: 7,
}

var binaryOps = map[token.Type]ast.BinaryOp{
	token.OR: ast.Or, token.AND: ast.And,
	token.EQ: ast.Equal, token.NOT_EQ: ast.NotEqual,
	token.GT: ast.Greater, token.LT: ast.Less,
	token.GT_EQ: ast.GreaterEqual, token.LT_EQ: ast.LessEqual,
	token.PLUS: ast.Plus, token.MINUS: ast.Minus,
	token.ASTERISK: ast.Multiply, token.SLASH: ast.Divide, token.PERCENT: ast.Mod,
}

var castTargets = map[string]ast.CastTarget{
	"string": ast.CastString, "number": ast.CastNumber, "float": ast.CastFloat, "bool": ast.CastBoolean,
	"sin": ast.CastSin, "cos": ast.CastCos, "sqrt": ast.CastSqrt,
}

// parseExpr is a Pratt parser: it consumes a term, then repeatedly
// consumes infix operators whose precedence is >= minPrec, recursing on
// the right-hand side at prec+1 to produce left-associative chaining.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, *errors.CompilerError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.cur()

		if tok.Type == token.AS {
			if binaryPrec[token.AS] < minPrec {
				break
			}
			line := tok.Pos.Line
			p.advance()
			targetTok := p.cur()
			target, ok := castTargets[targetTok.Literal]
			if !ok || (targetTok.Type != token.IDENT &&
				targetTok.Type != token.NUMBER_TYPE && targetTok.Type != token.FLOAT_TYPE &&
				targetTok.Type != token.STRING_TYPE && targetTok.Type != token.BOOL_TYPE) {
				return nil, p.errAt(errors.InvalidExpression, line, "expected a conversion target after 'as'")
			}
			p.advance()
			left = &ast.As{Line: line, X: left, Target: target}
			continue
		}

		prec, ok := binaryPrec[tok.Type]
		if !ok || prec < minPrec {
			break
		}
		op := binaryOps[tok.Type]
		line := tok.Pos.Line
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Line: line, Left: left, Op: op, Right: right}
	}

	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, *errors.CompilerError) {
	tok := p.cur()
	switch tok.Type {
	case token.MINUS:
		p.advance()
		x, err := p.parseExpr(6)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Line: tok.Pos.Line, Op: ast.Neg, X: x}, nil
	case token.NOT:
		p.advance()
		x, err := p.parseExpr(6)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Line: tok.Pos.Line, Op: ast.Not, X: x}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expr, *errors.CompilerError) {
	tok := p.cur()
	switch tok.Type {
	case token.LPAREN:
		p.advance()
		x, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur().Type != token.RPAREN {
			return nil, p.errAt(errors.UnbalancedParen, tok.Pos.Line, "expected a closing ')'")
		}
		p.advance()
		return x, nil
	case token.IDENT:
		p.advance()
		return &ast.Ident{Line: tok.Pos.Line, Name: tok.Literal}, nil
	case token.NUMBER:
		n, _ := strconv.ParseInt(tok.Literal, 10, 64)
		p.advance()
		return &ast.Literal{Line: tok.Pos.Line, Value: types.NewNumber(n)}, nil
	case token.FLOAT:
		f, _ := strconv.ParseFloat(tok.Literal, 64)
		p.advance()
		return &ast.Literal{Line: tok.Pos.Line, Value: types.NewFloat(f)}, nil
	case token.STRING:
		p.advance()
		return &ast.Literal{Line: tok.Pos.Line, Value: types.NewString(tok.Literal)}, nil
	case token.TRUE:
		p.advance()
		return &ast.Literal{Line: tok.Pos.Line, Value: types.NewBoolean(true)}, nil
	case token.FALSE:
		p.advance()
		return &ast.Literal{Line: tok.Pos.Line, Value: types.NewBoolean(false)}, nil
	default:
		return nil, p.errAt(errors.InvalidExpression, tok.Pos.Line, "unexpected token %q in expression", tok.Literal)
	}
}
