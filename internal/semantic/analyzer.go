// Package semantic implements Cylium's two-pass static type-and-scope
// validator: pass one collects procedure signatures and top-level
// constant types; pass two type-checks every procedure body against a
// symbol table seeded with its parameters.
package semantic

import (
	"github.com/Ztry8/Cylium/internal/ast"
	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/internal/types"
)

// builtinConsts are seeded into the const frame before any user constant is
// processed; redeclaring one of these names is a ConstReassign, matching the
// VM's StoreConst rule.
var builtinConsts = map[string]types.Kind{
	"PI":     types.Float,
	"TAU":    types.Float,
	"E":      types.Float,
	"SQRT_2": types.Float,
}

// procSig is a procedure's checked signature: its parameter types in
// declaration order.
type procSig struct {
	params []types.Kind
}

// varInfo tracks one local-frame binding's type and const-ness during
// pass two.
type varInfo struct {
	kind    types.Kind
	isConst bool
}

// Analyzer runs the two-pass validator over one parsed Program.
type Analyzer struct {
	file string
}

// New creates an Analyzer; file is attached to emitted errors.
func New(file string) *Analyzer {
	return &Analyzer{file: file}
}

func (a *Analyzer) errAt(code errors.Code, line int, format string, args ...any) *errors.CompilerError {
	e := errors.New(code, line, 0, format, args...)
	e.File = a.file
	return e
}

// Analyze type-checks prog in full, returning the first error encountered
// (validation is fatal-on-first-error, per spec.md §4.3/§7).
func (a *Analyzer) Analyze(prog *ast.Program) *errors.CompilerError {
	procs := map[string]procSig{}
	consts := map[string]types.Kind{}
	for name, kind := range builtinConsts {
		consts[name] = kind
	}

	// Pass 1: collect procedure signatures and top-level constant types.
	for _, p := range prog.Procs {
		if _, exists := procs[p.Name]; exists {
			return a.errAt(errors.DuplicateProc, p.Line, "procedure %q is already declared", p.Name)
		}
		sig := procSig{}
		for _, param := range p.Params {
			sig.params = append(sig.params, param.Type)
		}
		procs[p.Name] = sig
	}
	for _, c := range prog.Consts {
		if _, exists := consts[c.Name]; exists {
			if _, builtin := builtinConsts[c.Name]; builtin {
				return a.errAt(errors.ConstReassign, c.Line, "constant %q is already declared", c.Name)
			}
			return a.errAt(errors.DuplicateDecl, c.Line, "constant %q is already declared", c.Name)
		}
		consts[c.Name] = c.Type
	}

	if sig, ok := procs["main"]; !ok || len(sig.params) != 0 {
		return a.errAt(errors.MissingMain, 0, "a procedure 'main' with zero parameters is required")
	}

	// Constant initializer expressions type-check against an empty local
	// frame plus the reserved identifier 'input'.
	for _, c := range prog.Consts {
		t, err := a.exprType(map[string]varInfo{}, consts, c.Value)
		if err != nil {
			return err
		}
		if t != c.Type {
			return a.errAt(errors.TypeMismatch, c.Line, "constant %q declared as %s but initializer is %s", c.Name, c.Type, t)
		}
	}

	// Pass 2: type-check every procedure body.
	for _, p := range prog.Procs {
		vars := map[string]varInfo{}
		for _, param := range p.Params {
			vars[param.Name] = varInfo{kind: param.Type}
		}
		if err := a.checkStmts(procs, vars, consts, p.Body); err != nil {
			return err
		}
	}

	return nil
}

func (a *Analyzer) checkStmts(procs map[string]procSig, vars map[string]varInfo, consts map[string]types.Kind, stmts []ast.Stmt) *errors.CompilerError {
	for _, s := range stmts {
		if err := a.checkStmt(procs, vars, consts, s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStmt(procs map[string]procSig, vars map[string]varInfo, consts map[string]types.Kind, stmt ast.Stmt) *errors.CompilerError {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if _, exists := vars[s.Name]; exists {
			return a.errAt(errors.DuplicateDecl, s.Line, "%q is already declared in this scope", s.Name)
		}
		t, err := a.exprType(vars, consts, s.Value)
		if err != nil {
			return err
		}
		if t != s.Type {
			return a.errAt(errors.TypeMismatch, s.Line, "%q declared as %s but initializer is %s", s.Name, s.Type, t)
		}
		vars[s.Name] = varInfo{kind: s.Type, isConst: s.IsConst}
		return nil

	case *ast.Assign:
		info, exists := vars[s.Name]
		if !exists {
			return a.errAt(errors.UnknownIdent, s.Line, "unknown identifier %q", s.Name)
		}
		if info.isConst {
			return a.errAt(errors.ConstReassign, s.Line, "cannot reassign constant %q", s.Name)
		}
		rt, err := a.exprType(vars, consts, s.Value)
		if err != nil {
			return err
		}
		if !assignCompatible(s.Op, info.kind, rt) {
			return a.errAt(errors.BadArithType, s.Line, "operator %s is not defined for (%s, %s)", assignOpName(s.Op), info.kind, rt)
		}
		return nil

	case *ast.Echo:
		_, err := a.exprType(vars, consts, s.Value)
		return err

	case *ast.Exit:
		return nil

	case *ast.Delete:
		info, exists := vars[s.Name]
		if !exists {
			return a.errAt(errors.UnknownIdent, s.Line, "unknown identifier %q", s.Name)
		}
		if info.isConst {
			return a.errAt(errors.ConstDelete, s.Line, "cannot delete constant %q", s.Name)
		}
		delete(vars, s.Name)
		return nil

	case *ast.Call:
		sig, ok := procs[s.Name]
		if !ok {
			return a.errAt(errors.UnknownProc, s.Line, "unknown procedure %q", s.Name)
		}
		if len(sig.params) != len(s.Args) {
			return a.errAt(errors.ArityMismatch, s.Line, "procedure %q expects %d argument(s), got %d", s.Name, len(sig.params), len(s.Args))
		}
		for i, arg := range s.Args {
			var at types.Kind
			if arg.IsIdent {
				info, exists := vars[arg.Ident]
				if !exists {
					ct, cexists := consts[arg.Ident]
					if !cexists {
						if arg.Ident == "input" {
							at = types.String
						} else {
							return a.errAt(errors.UnknownIdent, s.Line, "unknown identifier %q", arg.Ident)
						}
					} else {
						at = ct
					}
				} else {
					at = info.kind
				}
			} else {
				at = arg.Literal.Kind
			}
			if at != sig.params[i] {
				return a.errAt(errors.ArgTypeMismatch, s.Line, "argument %d of %q: expected %s, got %s", i+1, s.Name, sig.params[i], at)
			}
		}
		return nil

	case *ast.If:
		ct, err := a.exprType(vars, consts, s.Cond)
		if err != nil {
			return err
		}
		if ct != types.Boolean {
			return a.errAt(errors.InvalidExpression, s.Line, "if condition must be bool, got %s", ct)
		}
		if err := a.checkStmts(procs, vars, consts, s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			if s.Else.ElseIf != nil {
				return a.checkStmt(procs, vars, consts, s.Else.ElseIf)
			}
			return a.checkStmts(procs, vars, consts, s.Else.Body)
		}
		return nil

	case *ast.While:
		ct, err := a.exprType(vars, consts, s.Cond)
		if err != nil {
			return err
		}
		if ct != types.Boolean {
			return a.errAt(errors.InvalidExpression, s.Line, "while condition must be bool, got %s", ct)
		}
		return a.checkStmts(procs, vars, consts, s.Body)

	case *ast.For:
		for _, e := range []ast.Expr{s.Start, s.End, s.Step} {
			if e == nil {
				continue
			}
			t, err := a.exprType(vars, consts, e)
			if err != nil {
				return err
			}
			if t != types.Number && t != types.Float {
				return a.errAt(errors.InvalidExpression, s.Line, "for bounds must be number or float, got %s", t)
			}
		}
		// The loop variable is bound as a local of the start expression's
		// type for the duration of the body.
		startType, err := a.exprType(vars, consts, s.Start)
		if err != nil {
			return err
		}
		prior, hadPrior := vars[s.Var]
		vars[s.Var] = varInfo{kind: startType}
		if err := a.checkStmts(procs, vars, consts, s.Body); err != nil {
			return err
		}
		if hadPrior {
			vars[s.Var] = prior
		} else {
			delete(vars, s.Var)
		}
		return nil

	default:
		return a.errAt(errors.InvalidExpression, stmt.Pos(), "unsupported statement")
	}
}

func assignOpName(op ast.AssignOp) string {
	switch op {
	case ast.PlainAssign:
		return "="
	case ast.PlusAssign:
		return "+="
	case ast.MinusAssign:
		return "-="
	case ast.MultiplyAssign:
		return "*="
	case ast.DivideAssign:
		return "/="
	case ast.ModAssign:
		return "%="
	default:
		return "?="
	}
}

func assignCompatible(op ast.AssignOp, left, right types.Kind) bool {
	switch op {
	case ast.PlainAssign:
		return left == right
	case ast.PlusAssign:
		return (left == types.Number && right == types.Number) ||
			(left == types.Float && right == types.Float) ||
			(left == types.String && right == types.String)
	case ast.MinusAssign, ast.DivideAssign:
		return (left == types.Number && right == types.Number) ||
			(left == types.Float && right == types.Float)
	case ast.MultiplyAssign:
		return (left == types.Number && right == types.Number) ||
			(left == types.Float && right == types.Float) ||
			(left == types.String && right == types.Number)
	case ast.ModAssign:
		return left == types.Number && right == types.Number
	default:
		return false
	}
}

// exprType computes the static type of e, or an error if e is ill-typed.
func (a *Analyzer) exprType(vars map[string]varInfo, consts map[string]types.Kind, e ast.Expr) (types.Kind, *errors.CompilerError) {
	switch x := e.(type) {
	case *ast.Ident:
		if info, ok := vars[x.Name]; ok {
			return info.kind, nil
		}
		if t, ok := consts[x.Name]; ok {
			return t, nil
		}
		if x.Name == "input" {
			return types.String, nil
		}
		return 0, a.errAt(errors.UnknownIdent, x.Line, "unknown identifier %q", x.Name)

	case *ast.Literal:
		return x.Value.Kind, nil

	case *ast.Unary:
		xt, err := a.exprType(vars, consts, x.X)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case ast.Not:
			if xt != types.Boolean {
				return 0, a.errAt(errors.BadLogicType, x.Line, "'not' requires bool, got %s", xt)
			}
			return types.Boolean, nil
		case ast.Neg:
			if xt != types.Number && xt != types.Float {
				return 0, a.errAt(errors.BadArithType, x.Line, "unary '-' requires number or float, got %s", xt)
			}
			return xt, nil
		}
		return 0, a.errAt(errors.InvalidExpression, x.Line, "unsupported unary operator")

	case *ast.As:
		xt, err := a.exprType(vars, consts, x.X)
		if err != nil {
			return 0, err
		}
		switch x.Target {
		case ast.CastString:
			if xt == types.String {
				return 0, a.errAt(errors.RedundantCast, x.Line, "value is already a string")
			}
			return types.String, nil
		case ast.CastNumber:
			if xt == types.Number {
				return 0, a.errAt(errors.RedundantCast, x.Line, "value is already a number")
			}
			return types.Number, nil
		case ast.CastFloat:
			if xt == types.Float {
				return 0, a.errAt(errors.RedundantCast, x.Line, "value is already a float")
			}
			return types.Float, nil
		case ast.CastBoolean:
			if xt == types.Boolean {
				return 0, a.errAt(errors.RedundantCast, x.Line, "value is already a bool")
			}
			return types.Boolean, nil
		case ast.CastSin, ast.CastCos, ast.CastSqrt:
			if xt != types.Float {
				return 0, a.errAt(errors.BadTransCastDomain, x.Line, "trigonometric/root casts require float, got %s", xt)
			}
			return types.Float, nil
		}
		return 0, a.errAt(errors.InvalidExpression, x.Line, "unsupported cast target")

	case *ast.Binary:
		lt, err := a.exprType(vars, consts, x.Left)
		if err != nil {
			return 0, err
		}
		rt, err := a.exprType(vars, consts, x.Right)
		if err != nil {
			return 0, err
		}
		return a.binaryType(x.Line, x.Op, lt, rt)

	default:
		return 0, a.errAt(errors.InvalidExpression, e.Pos(), "unsupported expression")
	}
}

func (a *Analyzer) binaryType(line int, op ast.BinaryOp, lt, rt types.Kind) (types.Kind, *errors.CompilerError) {
	switch op {
	case ast.Or, ast.And:
		if lt == types.Boolean && rt == types.Boolean {
			return types.Boolean, nil
		}
		return 0, a.errAt(errors.BadLogicType, line, "%s requires (bool, bool), got (%s, %s)", binOpName(op), lt, rt)

	case ast.Equal, ast.NotEqual:
		if lt == rt {
			return types.Boolean, nil
		}
		return 0, a.errAt(errors.BadLogicType, line, "%s requires matching types, got (%s, %s)", binOpName(op), lt, rt)

	case ast.Greater, ast.Less, ast.GreaterEqual, ast.LessEqual:
		if (lt == types.String && rt == types.String) ||
			(lt == types.Number && rt == types.Number) ||
			(lt == types.Float && rt == types.Float) {
			return types.Boolean, nil
		}
		return 0, a.errAt(errors.BadLogicType, line, "%s requires (number,number), (float,float) or (string,string), got (%s, %s)", binOpName(op), lt, rt)

	case ast.Plus:
		switch {
		case lt == types.String && rt == types.String:
			return types.String, nil
		case lt == types.Number && rt == types.Number:
			return types.Number, nil
		case lt == types.Float && rt == types.Float:
			return types.Float, nil
		default:
			return 0, a.errAt(errors.BadArithType, line, "'+' requires matching number/float/string operands, got (%s, %s)", lt, rt)
		}

	case ast.Minus, ast.Divide:
		switch {
		case lt == types.Number && rt == types.Number:
			return types.Number, nil
		case lt == types.Float && rt == types.Float:
			return types.Float, nil
		default:
			return 0, a.errAt(errors.BadArithType, line, "%s requires (number,number) or (float,float), got (%s, %s)", binOpName(op), lt, rt)
		}

	case ast.Multiply:
		switch {
		case lt == types.String && rt == types.Number:
			return types.String, nil
		case lt == types.Number && rt == types.String:
			return types.String, nil
		case lt == types.Number && rt == types.Number:
			return types.Number, nil
		case lt == types.Float && rt == types.Float:
			return types.Float, nil
		default:
			return 0, a.errAt(errors.BadArithType, line, "'*' requires (number,number), (float,float), (string,number), or (number,string), got (%s, %s)", lt, rt)
		}

	case ast.Mod:
		if lt == types.Number && rt == types.Number {
			return types.Number, nil
		}
		return 0, a.errAt(errors.BadArithType, line, "'%%' requires (number,number), got (%s, %s)", lt, rt)
	}

	return 0, a.errAt(errors.InvalidExpression, line, "unsupported binary operator")
}

func binOpName(op ast.BinaryOp) string {
	switch op {
	case ast.Or:
		return "or"
	case ast.And:
		return "and"
	case ast.Equal:
		return "=="
	case ast.NotEqual:
		return "!="
	case ast.Greater:
		return ">"
	case ast.Less:
		return "<"
	case ast.GreaterEqual:
		return ">="
	case ast.LessEqual:
		return "<="
	case ast.Plus:
		return "+"
	case ast.Minus:
		return "-"
	case ast.Multiply:
		return "*"
	case ast.Divide:
		return "/"
	case ast.Mod:
		return "%"
	default:
		return "?"
	}
}
