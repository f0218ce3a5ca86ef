// Package bytecode compiles a checked AST into a linear instruction stream
// for Cylium's stack-based virtual machine.
package bytecode

import "github.com/Ztry8/Cylium/internal/types"

// OpCode identifies one VM instruction.
type OpCode byte

const (
	// Push pushes Constants[Int] onto the operand stack.
	Push OpCode = iota
	// Load pushes the current value of the local or const named Str.
	Load
	// LoadInput blocks on one line of standard input and pushes it as a string.
	LoadInput
	// StoreLocal pops the stack and stores the value into local Str.
	StoreLocal
	// StoreConst pops the stack and binds the value into const Str (first write only).
	StoreConst
	// Delete removes local Str from the current frame.
	Delete

	// Neg pops a number/float and pushes its negation.
	Neg
	// Not pops a bool and pushes its negation.
	Not

	// Or, And pop two bools (a, b) and push a <op> b.
	Or
	And
	// Equal, NotEqual pop two values of matching type and push the comparison.
	Equal
	NotEqual
	// Greater, Less, GreaterEqual, LessEqual pop (a, b) and push a <op> b,
	// where a is the left operand (pushed last, so popped first).
	Greater
	Less
	GreaterEqual
	LessEqual
	// Plus, Minus, Multiply, Divide, Mod pop (a, b) and push a <op> b, where
	// a is the left operand (pushed last, so popped first).
	Plus
	Minus
	Multiply
	Divide
	Mod

	// CastToString, CastToNumber, CastToFloat, CastToBoolean pop a value and push it converted.
	CastToString
	CastToNumber
	CastToFloat
	CastToBoolean
	// Sin, Cos, Sqrt pop a float and push the transcendental result.
	Sin
	Cos
	Sqrt

	// Jump sets the instruction pointer to Int unconditionally.
	Jump
	// JumpIfFalse pops a bool; if false, sets the instruction pointer to Int.
	JumpIfFalse

	// ForInit pops (start, end, step) and opens a loop frame for local Str.
	// Int is 1 if the source gave an explicit step, 0 if the VM must
	// synthesize ±1 (matching direction and numeric kind) itself.
	ForInit
	// ForTest pushes whether local Str is still strictly short of its loop
	// frame's end bound (the end bound itself is excluded).
	ForTest
	// ForNext advances local Str by its loop frame's step.
	ForNext
	// ForEnd closes the innermost loop frame and deletes local Str.
	ForEnd

	// Call pops Int argument values (in declaration order) and invokes procedure Str.
	Call
	// Echo pops a value and writes its text form to standard output.
	Echo
	// Exit halts the program with exit code Int.
	Exit
)

// Instruction is one bytecode operation. Int and Str carry whichever operand
// the opcode needs; unused fields are zero.
type Instruction struct {
	Op  OpCode
	Int int64
	Str string
}

// Chunk is a compiled instruction stream for one procedure or for the
// top-level constant initializers.
type Chunk struct {
	Name      string
	Code      []Instruction
	Constants []types.Value
	Lines     []int // Lines[i] is the source line of Code[i]
}

func (c *Chunk) emit(line int, in Instruction) int {
	c.Code = append(c.Code, in)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

func (c *Chunk) addConstant(v types.Value) int64 {
	c.Constants = append(c.Constants, v)
	return int64(len(c.Constants) - 1)
}

// ProcChunk is a compiled procedure: its parameter names, in declaration
// order, plus its body chunk.
type ProcChunk struct {
	Name   string
	Params []string
	Chunk  *Chunk
}

// Program is a fully compiled Cylium source file.
type Program struct {
	ConstInit *Chunk // initializes every top-level const, in source order
	Procs     map[string]*ProcChunk
}
