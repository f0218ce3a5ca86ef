package bytecode

import (
	"testing"

	"github.com/Ztry8/Cylium/internal/lexer"
	"github.com/Ztry8/Cylium/internal/parser"
	"github.com/Ztry8/Cylium/internal/source"
)

func compileSource(t *testing.T, text string) *Program {
	t.Helper()
	f := source.Load("test.cyl", text)
	l := lexer.New(f.Ready, f.RawLine)
	grid, lexErr := l.Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	p := parser.New(grid, "test.cyl")
	prog, parseErr := p.ParseProgram()
	if parseErr != nil {
		t.Fatalf("parse error: %v", parseErr)
	}
	return Compile(prog)
}

func TestCompileEchoArithmetic(t *testing.T) {
	prog := compileSource(t, "proc main\necho 1 + 2\nend\n")
	main := prog.Procs["main"]
	if main == nil {
		t.Fatal("expected main proc")
	}
	var ops []OpCode
	for _, in := range main.Chunk.Code {
		ops = append(ops, in.Op)
	}
	want := []OpCode{Push, Push, Plus, Echo}
	if len(ops) != len(want) {
		t.Fatalf("got %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d: got %v, want %v", i, ops[i], want[i])
		}
	}
}

func TestCompileWhileLoopBackpatch(t *testing.T) {
	prog := compileSource(t, "proc main\nnumber i = 0\nwhile i < 3\ni += 1\nendwhile\nend\n")
	main := prog.Procs["main"]
	var sawJumpIfFalse, sawJump bool
	for _, in := range main.Chunk.Code {
		if in.Op == JumpIfFalse {
			sawJumpIfFalse = true
			if int(in.Int) > len(main.Chunk.Code) {
				t.Fatalf("JumpIfFalse target out of range: %d", in.Int)
			}
		}
		if in.Op == Jump {
			sawJump = true
		}
	}
	if !sawJumpIfFalse || !sawJump {
		t.Fatal("expected both JumpIfFalse and Jump in compiled while loop")
	}
}

func TestCompileForLoopEmitsLoopOps(t *testing.T) {
	prog := compileSource(t, "proc main\nfor i from 0 to 3\necho i\nendfor\nend\n")
	main := prog.Procs["main"]
	found := map[OpCode]bool{}
	for _, in := range main.Chunk.Code {
		found[in.Op] = true
	}
	for _, op := range []OpCode{ForInit, ForTest, ForNext, ForEnd} {
		if !found[op] {
			t.Fatalf("expected opcode %v in compiled for loop", op)
		}
	}
}

func TestCompileCallArgsReversePushed(t *testing.T) {
	prog := compileSource(t, "proc add a:number b:number\nexit 0\nend\nproc main\ncall add 1 2\nend\n")
	main := prog.Procs["main"]
	// args pushed in reverse (2 then 1) so the call pops them back in
	// declared order.
	if main.Chunk.Code[0].Op != Push || main.Chunk.Constants[main.Chunk.Code[0].Int].Num != 2 {
		t.Fatalf("expected first push to be the second argument, got %#v", main.Chunk.Code[0])
	}
	if main.Chunk.Code[1].Op != Push || main.Chunk.Constants[main.Chunk.Code[1].Int].Num != 1 {
		t.Fatalf("expected second push to be the first argument, got %#v", main.Chunk.Code[1])
	}
	call := main.Chunk.Code[2]
	if call.Op != Call || call.Str != "add" || call.Int != 2 {
		t.Fatalf("unexpected call instruction: %#v", call)
	}
}

func TestCompileConstInit(t *testing.T) {
	prog := compileSource(t, "const number K = 10\nproc main\necho K\nend\n")
	if len(prog.ConstInit.Code) != 2 {
		t.Fatalf("expected 2 instructions in const init, got %d", len(prog.ConstInit.Code))
	}
	if prog.ConstInit.Code[1].Op != StoreConst || prog.ConstInit.Code[1].Str != "K" {
		t.Fatalf("unexpected const init tail: %#v", prog.ConstInit.Code[1])
	}
}
