// Package vm executes compiled Cylium bytecode: a small stack machine with
// two scopes (an immutable const frame populated once at startup, and a
// fresh local frame per procedure call).
package vm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Ztry8/Cylium/internal/bytecode"
	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/internal/types"
)

// RuntimeError is a fatal failure that only manifests at execution time and
// has no entry in the static diagnostic catalogue (currently: integer
// division and modulo by zero). The process exits with status 1 when one
// escapes Run.
type RuntimeError struct {
	Line    int
	Message string
	Trace   errors.StackTrace
}

func (e *RuntimeError) Error() string {
	if len(e.Trace) == 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s\n%s", e.Line, e.Message, e.Trace)
}

var builtinConsts = map[string]types.Value{
	"PI":     types.NewFloat(math.Pi),
	"TAU":    types.NewFloat(2 * math.Pi),
	"E":      types.NewFloat(math.E),
	"SQRT_2": types.NewFloat(math.Sqrt2),
}

const maxCallDepth = 512

// loopState is one open for-loop's bound and step, used by ForTest/ForNext.
type loopState struct {
	end       types.Value
	step      types.Value
	ascending bool
}

// frame is one procedure activation: its own locals and operand stack, plus
// any nested for-loops currently open in it.
type frame struct {
	locals map[string]types.Value
	stack  []types.Value
	loops  []loopState
}

func newFrame() *frame {
	return &frame{locals: map[string]types.Value{}}
}

func (f *frame) push(v types.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop(line int) (types.Value, error) {
	if len(f.stack) == 0 {
		return types.Value{}, errors.New(errors.StackUnderflow, line, 0, "operand stack underflow")
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

// VM executes one compiled Program against a given I/O pair.
type VM struct {
	prog   *bytecode.Program
	out    io.Writer
	in     *bufio.Reader
	file   string
	consts map[string]types.Value
	depth  int
	trace  errors.StackTrace
}

// New creates a VM. out receives `echo` output; in feeds `Load "input"` reads.
func New(prog *bytecode.Program, out io.Writer, in io.Reader, file string) *VM {
	return &VM{prog: prog, out: out, in: bufio.NewReader(in), file: file}
}

// Run initializes constants then calls main with no arguments, returning the
// process exit code (0 if main falls off the end without an explicit exit).
func (vm *VM) Run() (int64, error) {
	vm.consts = make(map[string]types.Value, len(builtinConsts))
	for name, v := range builtinConsts {
		vm.consts[name] = v
	}

	exited, code, err := vm.exec(vm.prog.ConstInit, newFrame())
	if err != nil {
		return 1, vm.attachFile(err)
	}
	if exited {
		return code, nil
	}

	exited, code, err = vm.call("main", nil, 0)
	if err != nil {
		return 1, vm.attachFile(err)
	}
	if exited {
		return code, nil
	}
	return 0, nil
}

func (vm *VM) attachFile(err error) error {
	if ce, ok := err.(*errors.CompilerError); ok {
		ce.File = vm.file
	}
	return err
}

func (vm *VM) call(name string, args []types.Value, line int) (bool, int64, error) {
	proc, ok := vm.prog.Procs[name]
	if !ok {
		return false, 0, errors.New(errors.UnknownProc, line, 0, "unknown procedure %q", name)
	}
	if len(args) != len(proc.Params) {
		return false, 0, errors.New(errors.ArityMismatch, line, 0, "procedure %q expects %d argument(s), got %d", name, len(proc.Params), len(args))
	}

	vm.depth++
	vm.trace = append(vm.trace, errors.NewStackFrame(name, line))
	defer func() {
		vm.depth--
		vm.trace = vm.trace[:len(vm.trace)-1]
	}()
	if vm.depth > maxCallDepth {
		return false, 0, errors.New(errors.InvalidExpression, line, 0, "call stack exhausted")
	}

	f := newFrame()
	for i, pname := range proc.Params {
		f.locals[pname] = args[i]
	}
	exited, code, err := vm.exec(proc.Chunk, f)
	if rerr, ok := err.(*RuntimeError); ok && rerr.Trace == nil {
		rerr.Trace = append(errors.StackTrace{}, vm.trace...)
	}
	return exited, code, err
}

// exec runs chunk to completion in f, returning (exited, exitCode, err).
// exited is true when an Exit instruction was reached; the caller must
// propagate it unwound to Run.
func (vm *VM) exec(c *bytecode.Chunk, f *frame) (bool, int64, error) {
	ip := 0
	for ip < len(c.Code) {
		in := c.Code[ip]
		line := c.Lines[ip]

		switch in.Op {
		case bytecode.Push:
			f.push(c.Constants[in.Int])

		case bytecode.Load:
			if v, ok := f.locals[in.Str]; ok {
				f.push(v)
			} else if v, ok := vm.consts[in.Str]; ok {
				f.push(v)
			} else {
				return false, 0, errors.New(errors.UnknownIdent, line, 0, "unknown identifier %q", in.Str)
			}

		case bytecode.LoadInput:
			v, warn := vm.readInput()
			if warn != nil {
				fmt.Fprintln(vm.out, warn.String())
			}
			f.push(v)

		case bytecode.StoreLocal:
			v, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			f.locals[in.Str] = v

		case bytecode.StoreConst:
			if _, exists := vm.consts[in.Str]; exists {
				return false, 0, errors.New(errors.ConstReassign, line, 0, "constant %q is already defined", in.Str)
			}
			v, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			vm.consts[in.Str] = v

		case bytecode.Delete:
			if _, isConst := vm.consts[in.Str]; isConst {
				return false, 0, errors.New(errors.ConstDelete, line, 0, "cannot delete constant %q", in.Str)
			}
			if _, ok := f.locals[in.Str]; !ok {
				return false, 0, errors.New(errors.UnknownIdent, line, 0, "unknown identifier %q", in.Str)
			}
			delete(f.locals, in.Str)

		case bytecode.Neg, bytecode.Not:
			v, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			f.push(negate(in.Op, v))

		case bytecode.Or, bytecode.And, bytecode.Equal, bytecode.NotEqual,
			bytecode.Greater, bytecode.Less, bytecode.GreaterEqual, bytecode.LessEqual,
			bytecode.Plus, bytecode.Minus, bytecode.Multiply, bytecode.Divide, bytecode.Mod:
			a, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			b, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			result, rerr := binaryOp(in.Op, a, b, line)
			if rerr != nil {
				return false, 0, rerr
			}
			f.push(result)

		case bytecode.CastToString, bytecode.CastToNumber, bytecode.CastToFloat, bytecode.CastToBoolean,
			bytecode.Sin, bytecode.Cos, bytecode.Sqrt:
			v, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			casted, cerr := cast(in.Op, v, line)
			if cerr != nil {
				return false, 0, cerr
			}
			f.push(casted)

		case bytecode.Jump:
			ip = int(in.Int) - 1

		case bytecode.JumpIfFalse:
			v, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			if v.Kind != types.Boolean {
				return false, 0, errors.New(errors.InvalidExpression, line, 0, "branch condition is not a bool")
			}
			if !v.Bool {
				ip = int(in.Int) - 1
			}

		case bytecode.ForInit:
			step, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			end, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			start, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			ascending := numericLTE(start, end)
			if in.Int == 0 {
				// No explicit step: synthesize ±1 matching direction and
				// start's numeric kind.
				sign := int64(1)
				if !ascending {
					sign = -1
				}
				if start.Kind == types.Float {
					step = types.NewFloat(float64(sign))
				} else {
					step = types.NewNumber(sign)
				}
			} else if stepIsZero(step) {
				return false, 0, errors.New(errors.ForStepInvalid, line, 0, "for-loop step must not be zero")
			} else if !valuesEqual(start, end) && ascending != stepIsPositive(step) {
				return false, 0, errors.New(errors.ForDirectionInvalid, line, 0, "for-loop step direction does not match start/end")
			}
			f.locals[in.Str] = start
			f.loops = append(f.loops, loopState{end: end, step: step, ascending: ascending})

		case bytecode.ForTest:
			ls := f.loops[len(f.loops)-1]
			cur := f.locals[in.Str]
			if ls.ascending {
				f.push(types.NewBoolean(numericLT(cur, ls.end)))
			} else {
				f.push(types.NewBoolean(numericLT(ls.end, cur)))
			}

		case bytecode.ForNext:
			ls := f.loops[len(f.loops)-1]
			cur := f.locals[in.Str]
			sum, err := binaryOp(bytecode.Plus, ls.step, cur, line)
			if err != nil {
				return false, 0, err
			}
			f.locals[in.Str] = sum

		case bytecode.ForEnd:
			f.loops = f.loops[:len(f.loops)-1]
			delete(f.locals, in.Str)

		case bytecode.Call:
			var args []types.Value
			for i := int64(0); i < in.Int; i++ {
				v, err := f.pop(line)
				if err != nil {
					return false, 0, err
				}
				args = append(args, v)
			}
			exited, code, err := vm.call(in.Str, args, line)
			if err != nil {
				return false, 0, err
			}
			if exited {
				return true, code, nil
			}

		case bytecode.Echo:
			v, err := f.pop(line)
			if err != nil {
				return false, 0, err
			}
			fmt.Fprintln(vm.out, v.Text())

		case bytecode.Exit:
			return true, in.Int, nil
		}

		ip++
	}
	return false, 0, nil
}

// readInput flushes standard output (implicit: out is unbuffered in
// practice), reads one line from standard input, and trims its trailing
// newline. A read failure is non-fatal: it warns and yields an empty string.
func (vm *VM) readInput() (types.Value, *errors.Warning) {
	line, err := vm.in.ReadString('\n')
	if err != nil && line == "" {
		return types.NewString(""), &errors.Warning{Code: errors.InputReadFailure, Message: "failed to read from standard input"}
	}
	return types.NewString(strings.TrimRight(line, "\r\n")), nil
}

// numericLTE compares a <= b for Number or Float values; used to decide a
// for-loop's direction.
func numericLTE(a, b types.Value) bool {
	if a.Kind == types.Float || b.Kind == types.Float {
		return toFloat(a) <= toFloat(b)
	}
	return a.Num <= b.Num
}

// numericLT compares a < b for Number or Float values; used for the
// for-loop head test, which is exclusive of the end bound.
func numericLT(a, b types.Value) bool {
	if a.Kind == types.Float || b.Kind == types.Float {
		return toFloat(a) < toFloat(b)
	}
	return a.Num < b.Num
}

func stepIsZero(v types.Value) bool {
	if v.Kind == types.Float {
		return v.Flt == 0
	}
	return v.Num == 0
}

func stepIsPositive(v types.Value) bool {
	if v.Kind == types.Float {
		return v.Flt > 0
	}
	return v.Num > 0
}

func toFloat(v types.Value) float64 {
	if v.Kind == types.Float {
		return v.Flt
	}
	return float64(v.Num)
}

func negate(op bytecode.OpCode, v types.Value) types.Value {
	if op == bytecode.Not {
		return types.NewBoolean(!v.Bool)
	}
	if v.Kind == types.Float {
		return types.NewFloat(-v.Flt)
	}
	return types.NewNumber(-v.Num)
}

// binaryOp computes op(a, b), where a was popped first (the left operand in
// source order) and b second (the right operand). Every operator, arithmetic
// and relational alike, computes a <op> b.
func binaryOp(op bytecode.OpCode, a, b types.Value, line int) (types.Value, error) {
	switch op {
	case bytecode.Or:
		return types.NewBoolean(a.Bool || b.Bool), nil
	case bytecode.And:
		return types.NewBoolean(a.Bool && b.Bool), nil
	case bytecode.Equal:
		return types.NewBoolean(valuesEqual(a, b)), nil
	case bytecode.NotEqual:
		return types.NewBoolean(!valuesEqual(a, b)), nil

	case bytecode.Greater:
		return types.NewBoolean(compare(a, b) > 0), nil
	case bytecode.Less:
		return types.NewBoolean(compare(a, b) < 0), nil
	case bytecode.GreaterEqual:
		return types.NewBoolean(compare(a, b) >= 0), nil
	case bytecode.LessEqual:
		return types.NewBoolean(compare(a, b) <= 0), nil

	case bytecode.Plus:
		switch a.Kind {
		case types.Number:
			return types.NewNumber(a.Num + b.Num), nil
		case types.Float:
			return types.NewFloat(a.Flt + b.Flt), nil
		default:
			return types.NewString(a.Str + b.Str), nil
		}

	case bytecode.Minus:
		if a.Kind == types.Float {
			return types.NewFloat(a.Flt - b.Flt), nil
		}
		return types.NewNumber(a.Num - b.Num), nil

	case bytecode.Multiply:
		switch {
		case a.Kind == types.String && b.Kind == types.Number:
			return types.NewString(repeat(a.Str, b.Num)), nil
		case a.Kind == types.Number && b.Kind == types.String:
			return types.NewString(repeat(b.Str, a.Num)), nil
		case a.Kind == types.Float:
			return types.NewFloat(a.Flt * b.Flt), nil
		default:
			return types.NewNumber(a.Num * b.Num), nil
		}

	case bytecode.Divide:
		if a.Kind == types.Float {
			return types.NewFloat(a.Flt / b.Flt), nil
		}
		if b.Num == 0 {
			return types.Value{}, &RuntimeError{Line: line, Message: "integer division by zero"}
		}
		return types.NewNumber(a.Num / b.Num), nil

	case bytecode.Mod:
		if b.Num == 0 {
			return types.Value{}, &RuntimeError{Line: line, Message: "integer modulo by zero"}
		}
		return types.NewNumber(a.Num % b.Num), nil
	}
	return types.Value{}, errors.New(errors.InvalidExpression, line, 0, "unsupported binary operator")
}

func repeat(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, int(n))
}

func valuesEqual(a, b types.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.Number:
		return a.Num == b.Num
	case types.Float:
		return a.Flt == b.Flt
	case types.String:
		return a.Str == b.Str
	default:
		return a.Bool == b.Bool
	}
}

// compare orders two same-kind Number, Float, or String values.
func compare(x, y types.Value) int {
	switch x.Kind {
	case types.Number:
		switch {
		case x.Num < y.Num:
			return -1
		case x.Num > y.Num:
			return 1
		default:
			return 0
		}
	case types.Float:
		switch {
		case x.Flt < y.Flt:
			return -1
		case x.Flt > y.Flt:
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(x.Str, y.Str)
	}
}

func cast(op bytecode.OpCode, v types.Value, line int) (types.Value, error) {
	switch op {
	case bytecode.CastToString:
		return types.NewString(v.Text()), nil

	case bytecode.CastToNumber:
		switch v.Kind {
		case types.String:
			n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
			if err != nil {
				return types.Value{}, errors.New(errors.NumericParseFail, line, 0, "cannot parse %q as number", v.Str)
			}
			return types.NewNumber(n), nil
		case types.Float:
			return types.NewNumber(int64(v.Flt)), nil
		default: // Boolean
			if v.Bool {
				return types.NewNumber(1), nil
			}
			return types.NewNumber(0), nil
		}

	case bytecode.CastToFloat:
		switch v.Kind {
		case types.String:
			n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil {
				return types.Value{}, errors.New(errors.NumericParseFail, line, 0, "cannot parse %q as float", v.Str)
			}
			return types.NewFloat(n), nil
		case types.Number:
			return types.NewFloat(float64(v.Num)), nil
		default: // Boolean
			if v.Bool {
				return types.NewFloat(1), nil
			}
			return types.NewFloat(0), nil
		}

	case bytecode.CastToBoolean:
		switch v.Kind {
		case types.String:
			switch v.Str {
			case "true":
				return types.NewBoolean(true), nil
			case "false":
				return types.NewBoolean(false), nil
			default:
				return types.Value{}, errors.New(errors.BadBooleanValue, line, 0, "cannot parse %q as bool", v.Str)
			}
		case types.Number:
			return types.NewBoolean(v.Num == 1), nil
		default: // Float
			return types.NewBoolean(v.Flt == 1.0), nil
		}

	case bytecode.Sin:
		return types.NewFloat(math.Sin(v.Flt)), nil
	case bytecode.Cos:
		return types.NewFloat(math.Cos(v.Flt)), nil
	case bytecode.Sqrt:
		return types.NewFloat(math.Sqrt(v.Flt)), nil
	}
	return types.Value{}, errors.New(errors.BadCastTarget, line, 0, "unsupported cast")
}
