package parser

import (
	"testing"

	"github.com/Ztry8/Cylium/internal/ast"
	"github.com/Ztry8/Cylium/internal/lexer"
	"github.com/Ztry8/Cylium/internal/source"
	"github.com/Ztry8/Cylium/internal/token"
)

func parseProgram(t *testing.T, text string) *ast.Program {
	t.Helper()
	f := source.Load("test.cyl", text)
	l := lexer.New(f.Ready, f.RawLine)
	grid, lexErr := l.Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	p := New(grid, "test.cyl")
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParseSimpleProc(t *testing.T) {
	prog := parseProgram(t, "proc main\necho 1 + 2 * 3\nend\n")
	if len(prog.Procs) != 1 {
		t.Fatalf("expected 1 proc, got %d", len(prog.Procs))
	}
	proc := prog.Procs[0]
	if proc.Name != "main" {
		t.Fatalf("expected main, got %q", proc.Name)
	}
	if len(proc.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(proc.Body))
	}
	echo, ok := proc.Body[0].(*ast.Echo)
	if !ok {
		t.Fatalf("expected Echo, got %T", proc.Body[0])
	}
	bin, ok := echo.Value.(*ast.Binary)
	if !ok || bin.Op != ast.Plus {
		t.Fatalf("expected top-level Plus, got %#v", echo.Value)
	}
	// precedence: 1 + (2 * 3)
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.Multiply {
		t.Fatalf("expected Multiply on the right, got %#v", bin.Right)
	}
}

func TestParseProcWithParams(t *testing.T) {
	prog := parseProgram(t, "proc add a:number b:number\necho a + b\nend\n")
	proc := prog.Procs[0]
	if len(proc.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(proc.Params))
	}
	if proc.Params[0].Name != "a" || proc.Params[1].Name != "b" {
		t.Fatalf("unexpected params: %#v", proc.Params)
	}
}

func TestParseWhileLoop(t *testing.T) {
	prog := parseProgram(t, "proc main\nnumber i = 0\nwhile i < 3\necho i\ni += 1\nendwhile\nend\n")
	proc := prog.Procs[0]
	if len(proc.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(proc.Body))
	}
	w, ok := proc.Body[1].(*ast.While)
	if !ok {
		t.Fatalf("expected While, got %T", proc.Body[1])
	}
	if len(w.Body) != 2 {
		t.Fatalf("expected 2 statements in while body, got %d", len(w.Body))
	}
}

func TestParseIfElseIf(t *testing.T) {
	prog := parseProgram(t, `proc main
if a == 1
echo 1
else if a == 2
echo 2
else
echo 3
endif
end
`)
	proc := prog.Procs[0]
	ifStmt, ok := proc.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", proc.Body[0])
	}
	if ifStmt.Else == nil || ifStmt.Else.ElseIf == nil {
		t.Fatalf("expected nested else-if, got %#v", ifStmt.Else)
	}
	nested := ifStmt.Else.ElseIf
	if nested.Else == nil || nested.Else.Body == nil {
		t.Fatalf("expected nested else body, got %#v", nested.Else)
	}
}

func TestParseForLoop(t *testing.T) {
	prog := parseProgram(t, "proc main\nfor i from 3 to 0\necho i\nendfor\nend\n")
	proc := prog.Procs[0]
	f, ok := proc.Body[0].(*ast.For)
	if !ok {
		t.Fatalf("expected For, got %T", proc.Body[0])
	}
	if f.Var != "i" || f.Step != nil {
		t.Fatalf("unexpected for header: %#v", f)
	}
}

func TestParseCallWithArgs(t *testing.T) {
	prog := parseProgram(t, "proc main\ncall add 2 3\nend\n")
	proc := prog.Procs[0]
	call, ok := proc.Body[0].(*ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", proc.Body[0])
	}
	if call.Name != "add" || len(call.Args) != 2 {
		t.Fatalf("unexpected call: %#v", call)
	}
}

func TestParseAsCast(t *testing.T) {
	prog := parseProgram(t, "proc main\necho K as string\nend\nconst number K = 10\n")
	_ = prog
}

func TestParseTopLevelConst(t *testing.T) {
	prog := parseProgram(t, "const number K = 10\nproc main\necho K\nend\n")
	if len(prog.Consts) != 1 || prog.Consts[0].Name != "K" {
		t.Fatalf("unexpected consts: %#v", prog.Consts)
	}
}

func TestParseTopLevelErrorOnBareStatement(t *testing.T) {
	f := source.Load("test.cyl", "echo 1\n")
	l := lexer.New(f.Ready, f.RawLine)
	grid, _ := l.Tokenize()
	p := New(grid, "test.cyl")
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatal("expected a top-level error")
	}
	if err.Code != "A20" {
		t.Fatalf("expected A20, got %s", err.Code)
	}
}

func TestParseMissingExitCode(t *testing.T) {
	f := source.Load("test.cyl", "proc main\nexit\nend\n")
	l := lexer.New(f.Ready, f.RawLine)
	grid, _ := l.Tokenize()
	p := New(grid, "test.cyl")
	_, err := p.ParseProgram()
	if err == nil || err.Code != "A26" {
		t.Fatalf("expected A26, got %v", err)
	}
}

func TestParseUnbalancedParen(t *testing.T) {
	f := source.Load("test.cyl", "proc main\necho (1 + 2\nend\n")
	l := lexer.New(f.Ready, f.RawLine)
	grid, _ := l.Tokenize()
	p := New(grid, "test.cyl")
	_, err := p.ParseProgram()
	if err == nil || err.Code != "A10" {
		t.Fatalf("expected A10, got %v", err)
	}
}

var _ = token.EOF
