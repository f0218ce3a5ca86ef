// Package ast defines Cylium's abstract syntax tree node types.
package ast

import "github.com/Ztry8/Cylium/internal/types"

// Node is the common interface satisfied by every AST node; Pos returns
// the 1-based raw source line the node originated from, used for
// diagnostics throughout validation, compilation, and execution.
type Node interface {
	Pos() int
}

// Program is the root of a parsed Cylium file: a top-level sequence of
// constant declarations and procedure definitions, in source order.
type Program struct {
	Consts []*ConstDecl
	Procs  []*Proc
}

// ConstDecl is a top-level `const <type> NAME = expr` declaration.
type ConstDecl struct {
	Line  int
	Name  string
	Type  types.Kind
	Value Expr
}

func (d *ConstDecl) Pos() int { return d.Line }

// Param is one formal parameter of a Proc: a name and its declared type.
type Param struct {
	Name string
	Type types.Kind
}

// Proc is a procedure definition: `proc NAME (param)* ... end`.
type Proc struct {
	Line   int
	Name   string
	Params []Param
	Body   []Stmt
}

func (p *Proc) Pos() int { return p.Line }

// Stmt is any statement node appearing inside a Proc body.
type Stmt interface {
	Node
	stmtNode()
}

// VarDecl declares a local (or procedure-local const) variable:
// `<type> NAME = expr` or `const <type> NAME = expr`.
type VarDecl struct {
	Line    int
	Name    string
	Type    types.Kind
	Value   Expr
	IsConst bool
}

func (s *VarDecl) Pos() int   { return s.Line }
func (s *VarDecl) stmtNode() {}

// AssignOp is a compound or plain assignment operator.
type AssignOp int

const (
	PlainAssign AssignOp = iota
	PlusAssign
	MinusAssign
	MultiplyAssign
	DivideAssign
	ModAssign
)

// Assign is `NAME <assign-op> expr`.
type Assign struct {
	Line  int
	Name  string
	Op    AssignOp
	Value Expr
}

func (s *Assign) Pos() int   { return s.Line }
func (s *Assign) stmtNode() {}

// Echo is `echo expr`.
type Echo struct {
	Line  int
	Value Expr
}

func (s *Echo) Pos() int   { return s.Line }
func (s *Echo) stmtNode() {}

// Exit is `exit INT_LITERAL`.
type Exit struct {
	Line int
	Code int64
}

func (s *Exit) Pos() int   { return s.Line }
func (s *Exit) stmtNode() {}

// Delete is `delete NAME`.
type Delete struct {
	Line int
	Name string
}

func (s *Delete) Pos() int   { return s.Line }
func (s *Delete) stmtNode() {}

// CallArg is one argument of a `call` statement: either a bare identifier
// or a literal value, never an arbitrary expression (spec.md §4.2).
type CallArg struct {
	IsIdent bool
	Ident   string
	Literal types.Value
}

// Call is `call NAME arg*`, used as a statement.
type Call struct {
	Line int
	Name string
	Args []CallArg
}

func (s *Call) Pos() int   { return s.Line }
func (s *Call) stmtNode() {}

// ElseBranch is the tail of an If: either a single nested If (`else if`)
// or a plain statement list (`else`).
type ElseBranch struct {
	ElseIf *If
	Body   []Stmt
}

// If is `if cond ... (else if cond ... | else ...)? endif`.
type If struct {
	Line int
	Cond Expr
	Then []Stmt
	Else *ElseBranch // nil if there is no else/else-if tail
}

func (s *If) Pos() int   { return s.Line }
func (s *If) stmtNode() {}

// While is `while cond ... endwhile`.
type While struct {
	Line int
	Cond Expr
	Body []Stmt
}

func (s *While) Pos() int   { return s.Line }
func (s *While) stmtNode() {}

// For is `for NAME from start to end (step k)? ... endfor`.
type For struct {
	Line  int
	Var   string
	Start Expr
	End   Expr
	Step  Expr // nil if no explicit step
	Body  []Stmt
}

func (s *For) Pos() int   { return s.Line }
func (s *For) stmtNode() {}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Ident is a bare identifier reference.
type Ident struct {
	Line int
	Name string
}

func (e *Ident) Pos() int   { return e.Line }
func (e *Ident) exprNode() {}

// Literal is a literal value of one of the four static types.
type Literal struct {
	Line  int
	Value types.Value
}

func (e *Literal) Pos() int   { return e.Line }
func (e *Literal) exprNode() {}

// UnaryOp is one of the two unary operators.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
)

// Unary is `-expr` or `not expr`.
type Unary struct {
	Line int
	Op   UnaryOp
	X    Expr
}

func (e *Unary) Pos() int   { return e.Line }
func (e *Unary) exprNode() {}

// BinaryOp is one of the arithmetic, comparison, or logical binary operators.
type BinaryOp int

const (
	Or BinaryOp = iota
	And
	Equal
	NotEqual
	Greater
	Less
	GreaterEqual
	LessEqual
	Plus
	Minus
	Multiply
	Divide
	Mod
)

// Binary is `left op right`.
type Binary struct {
	Line  int
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (e *Binary) Pos() int   { return e.Line }
func (e *Binary) exprNode() {}

// CastTarget is the right operand of `as`.
type CastTarget int

const (
	CastString CastTarget = iota
	CastNumber
	CastFloat
	CastBoolean
	CastSin
	CastCos
	CastSqrt
)

// As is `expr as target`.
type As struct {
	Line   int
	X      Expr
	Target CastTarget
}

func (e *As) Pos() int   { return e.Line }
func (e *As) exprNode() {}
