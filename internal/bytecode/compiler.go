package bytecode

import (
	"github.com/Ztry8/Cylium/internal/ast"
	"github.com/Ztry8/Cylium/internal/types"
)

// Compile lowers a checked Program into bytecode. Compile assumes prog has
// already passed semantic analysis; it does not re-validate types or names.
func Compile(prog *ast.Program) *Program {
	c := &Compiler{}
	out := &Program{Procs: map[string]*ProcChunk{}}

	out.ConstInit = &Chunk{Name: "<const-init>"}
	for _, decl := range prog.Consts {
		c.chunk = out.ConstInit
		c.compileExpr(decl.Value)
		c.chunk.emit(decl.Line, Instruction{Op: StoreConst, Str: decl.Name})
	}

	for _, proc := range prog.Procs {
		pc := &ProcChunk{Name: proc.Name, Chunk: &Chunk{Name: proc.Name}}
		for _, param := range proc.Params {
			pc.Params = append(pc.Params, param.Name)
		}
		c.chunk = pc.Chunk
		c.compileStmts(proc.Body)
		out.Procs[proc.Name] = pc
	}

	return out
}

// Compiler holds the chunk currently being emitted into.
type Compiler struct {
	chunk *Chunk
}

func (c *Compiler) compileStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.compileStmt(s)
	}
}

func (c *Compiler) compileStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		c.compileExpr(s.Value)
		if s.IsConst {
			c.chunk.emit(s.Line, Instruction{Op: StoreConst, Str: s.Name})
		} else {
			c.chunk.emit(s.Line, Instruction{Op: StoreLocal, Str: s.Name})
		}

	case *ast.Assign:
		c.compileAssign(s)

	case *ast.Echo:
		c.compileExpr(s.Value)
		c.chunk.emit(s.Line, Instruction{Op: Echo})

	case *ast.Exit:
		c.chunk.emit(s.Line, Instruction{Op: Exit, Int: s.Code})

	case *ast.Delete:
		c.chunk.emit(s.Line, Instruction{Op: Delete, Str: s.Name})

	case *ast.Call:
		for i := len(s.Args) - 1; i >= 0; i-- {
			arg := s.Args[i]
			if arg.IsIdent {
				c.chunk.emit(s.Line, Instruction{Op: Load, Str: arg.Ident})
			} else {
				idx := c.chunk.addConstant(arg.Literal)
				c.chunk.emit(s.Line, Instruction{Op: Push, Int: idx})
			}
		}
		c.chunk.emit(s.Line, Instruction{Op: Call, Str: s.Name, Int: int64(len(s.Args))})

	case *ast.If:
		c.compileIf(s)

	case *ast.While:
		c.compileWhile(s)

	case *ast.For:
		c.compileFor(s)
	}
}

var compoundOp = map[ast.AssignOp]OpCode{
	ast.PlusAssign:     Plus,
	ast.MinusAssign:    Minus,
	ast.MultiplyAssign: Multiply,
	ast.DivideAssign:   Divide,
	ast.ModAssign:      Mod,
}

func (c *Compiler) compileAssign(s *ast.Assign) {
	if s.Op == ast.PlainAssign {
		c.compileExpr(s.Value)
		c.chunk.emit(s.Line, Instruction{Op: StoreLocal, Str: s.Name})
		return
	}
	// name op= value  ==  name = name op value; Plus/Minus/etc. compute
	// a <op> b where a is popped first, so push value (becomes b) before
	// the current value of name (becomes a).
	c.compileExpr(s.Value)
	c.chunk.emit(s.Line, Instruction{Op: Load, Str: s.Name})
	c.chunk.emit(s.Line, Instruction{Op: compoundOp[s.Op]})
	c.chunk.emit(s.Line, Instruction{Op: StoreLocal, Str: s.Name})
}

func (c *Compiler) compileIf(s *ast.If) {
	c.compileExpr(s.Cond)
	jumpElse := c.chunk.emit(s.Line, Instruction{Op: JumpIfFalse})
	c.compileStmts(s.Then)

	if s.Else == nil {
		c.patch(jumpElse, len(c.chunk.Code))
		return
	}

	jumpEnd := c.chunk.emit(s.Line, Instruction{Op: Jump})
	c.patch(jumpElse, len(c.chunk.Code))
	if s.Else.ElseIf != nil {
		c.compileStmt(s.Else.ElseIf)
	} else {
		c.compileStmts(s.Else.Body)
	}
	c.patch(jumpEnd, len(c.chunk.Code))
}

func (c *Compiler) compileWhile(s *ast.While) {
	top := len(c.chunk.Code)
	c.compileExpr(s.Cond)
	jumpEnd := c.chunk.emit(s.Line, Instruction{Op: JumpIfFalse})
	c.compileStmts(s.Body)
	c.chunk.emit(s.Line, Instruction{Op: Jump, Int: int64(top)})
	c.patch(jumpEnd, len(c.chunk.Code))
}

func (c *Compiler) compileFor(s *ast.For) {
	c.compileExpr(s.Start)
	c.compileExpr(s.End)
	explicitStep := int64(0)
	if s.Step != nil {
		c.compileExpr(s.Step)
		explicitStep = 1
	} else {
		// Placeholder; the VM synthesizes ±1 matching direction and numeric
		// kind when ForInit.Int is 0 (no explicit step given).
		idx := c.chunk.addConstant(types.NewNumber(1))
		c.chunk.emit(s.Line, Instruction{Op: Push, Int: idx})
	}
	c.chunk.emit(s.Line, Instruction{Op: ForInit, Int: explicitStep, Str: s.Var})

	top := len(c.chunk.Code)
	c.chunk.emit(s.Line, Instruction{Op: ForTest, Str: s.Var})
	jumpEnd := c.chunk.emit(s.Line, Instruction{Op: JumpIfFalse})
	c.compileStmts(s.Body)
	c.chunk.emit(s.Line, Instruction{Op: ForNext, Str: s.Var})
	c.chunk.emit(s.Line, Instruction{Op: Jump, Int: int64(top)})
	c.patch(jumpEnd, len(c.chunk.Code))
	c.chunk.emit(s.Line, Instruction{Op: ForEnd, Str: s.Var})
}

func (c *Compiler) patch(idx, target int) {
	c.chunk.Code[idx].Int = int64(target)
}

var binaryOp = map[ast.BinaryOp]OpCode{
	ast.Or: Or, ast.And: And,
	ast.Equal: Equal, ast.NotEqual: NotEqual,
	ast.Greater: Greater, ast.Less: Less,
	ast.GreaterEqual: GreaterEqual, ast.LessEqual: LessEqual,
	ast.Plus: Plus, ast.Minus: Minus,
	ast.Multiply: Multiply, ast.Divide: Divide, ast.Mod: Mod,
}

var castOp = map[ast.CastTarget]OpCode{
	ast.CastString:  CastToString,
	ast.CastNumber:  CastToNumber,
	ast.CastFloat:   CastToFloat,
	ast.CastBoolean: CastToBoolean,
	ast.CastSin:     Sin,
	ast.CastCos:     Cos,
	ast.CastSqrt:    Sqrt,
}

func (c *Compiler) compileExpr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.Ident:
		if x.Name == "input" {
			c.chunk.emit(x.Line, Instruction{Op: LoadInput})
			return
		}
		c.chunk.emit(x.Line, Instruction{Op: Load, Str: x.Name})

	case *ast.Literal:
		idx := c.chunk.addConstant(x.Value)
		c.chunk.emit(x.Line, Instruction{Op: Push, Int: idx})

	case *ast.Unary:
		c.compileExpr(x.X)
		if x.Op == ast.Not {
			c.chunk.emit(x.Line, Instruction{Op: Not})
		} else {
			c.chunk.emit(x.Line, Instruction{Op: Neg})
		}

	case *ast.As:
		c.compileExpr(x.X)
		c.chunk.emit(x.Line, Instruction{Op: castOp[x.Target]})

	case *ast.Binary:
		// Right then left, so the VM pops the left operand first and
		// computes left <op> right.
		c.compileExpr(x.Right)
		c.compileExpr(x.Left)
		c.chunk.emit(x.Line, Instruction{Op: binaryOp[x.Op]})
	}
}
