package bytecode

import (
	"fmt"
	"io"

	"golang.org/x/text/width"
)

// Disassembler prints a human-readable rendering of a compiled Chunk.
// Mnemonics are padded to mnemonicWidth display cells, measured by display
// width (East Asian wide runes count as 2), so operands start in one column.
// Operands and constant-pool entries are printed as-is, without padding.
type Disassembler struct {
	w             io.Writer
	mnemonicWidth int
}

// NewDisassembler creates a Disassembler writing to w with the default
// mnemonic column width.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w, mnemonicWidth: 12}
}

// NewDisassemblerWidth creates a Disassembler with a custom mnemonic column
// width, as configured via cylium.yaml's disasm_width.
func NewDisassemblerWidth(w io.Writer, mnemonicWidth int) *Disassembler {
	if mnemonicWidth <= 0 {
		mnemonicWidth = 12
	}
	return &Disassembler{w: w, mnemonicWidth: mnemonicWidth}
}

// displayWidth counts s in display cells: East Asian wide/fullwidth runes
// count as 2, everything else as 1.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func padRight(s string, cells int) string {
	w := displayWidth(s)
	if w >= cells {
		return s
	}
	out := make([]byte, 0, len(s)+cells-w)
	out = append(out, s...)
	for i := w; i < cells; i++ {
		out = append(out, ' ')
	}
	return string(out)
}

// Disassemble prints the full chunk: its name, constant pool, then every
// instruction with its offset, source line, and operand.
func (d *Disassembler) Disassemble(c *Chunk) {
	fmt.Fprintf(d.w, "== %s ==\n", c.Name)
	if len(c.Constants) > 0 {
		fmt.Fprintf(d.w, "constants:\n")
		for i, v := range c.Constants {
			fmt.Fprintf(d.w, "  [%03d] %s\n", i, v.Text())
		}
	}
	for offset := range c.Code {
		d.instruction(c, offset)
	}
}

func (d *Disassembler) instruction(c *Chunk, offset int) {
	in := c.Code[offset]
	fmt.Fprintf(d.w, "%04d %4d  %s", offset, c.Lines[offset], padRight(opName(in.Op), d.mnemonicWidth))
	switch in.Op {
	case Push:
		fmt.Fprintf(d.w, " const[%d]", in.Int)
	case Jump, JumpIfFalse:
		fmt.Fprintf(d.w, " -> %04d", in.Int)
	case Call:
		fmt.Fprintf(d.w, " %s/%d", in.Str, in.Int)
	case Exit:
		fmt.Fprintf(d.w, " %d", in.Int)
	case Load, StoreLocal, StoreConst, Delete, ForInit, ForTest, ForNext, ForEnd:
		fmt.Fprintf(d.w, " %s", in.Str)
	}
	fmt.Fprintln(d.w)
}

var opNames = map[OpCode]string{
	Push: "push", Load: "load", LoadInput: "load_input",
	StoreLocal: "store_local", StoreConst: "store_const", Delete: "delete",
	Neg: "neg", Not: "not",
	Or: "or", And: "and",
	Equal: "equal", NotEqual: "not_equal",
	Greater: "greater", Less: "less", GreaterEqual: "greater_equal", LessEqual: "less_equal",
	Plus: "plus", Minus: "minus", Multiply: "multiply", Divide: "divide", Mod: "mod",
	CastToString: "cast_string", CastToNumber: "cast_number", CastToFloat: "cast_float", CastToBoolean: "cast_bool",
	Sin: "sin", Cos: "cos", Sqrt: "sqrt",
	Jump: "jump", JumpIfFalse: "jump_if_false",
	ForInit: "for_init", ForTest: "for_test", ForNext: "for_next", ForEnd: "for_end",
	Call: "call", Echo: "echo", Exit: "exit",
}

func opName(op OpCode) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}
