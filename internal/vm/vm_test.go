package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Ztry8/Cylium/internal/bytecode"
	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/internal/lexer"
	"github.com/Ztry8/Cylium/internal/parser"
	"github.com/Ztry8/Cylium/internal/semantic"
	"github.com/Ztry8/Cylium/internal/source"
)

func compileText(t *testing.T, text string) *bytecode.Program {
	t.Helper()
	f := source.Load("test.cyl", text)
	l := lexer.New(f.Ready, f.RawLine)
	grid, lexErr := l.Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	prog, parseErr := parser.New(grid, "test.cyl").ParseProgram()
	if parseErr != nil {
		t.Fatalf("parse error: %v", parseErr)
	}
	if semErr := semantic.New("test.cyl").Analyze(prog); semErr != nil {
		t.Fatalf("semantic error: %v", semErr)
	}
	return bytecode.Compile(prog)
}

func TestVMIntegerDivideByZeroIsRuntimeError(t *testing.T) {
	prog := compileText(t, "proc main\nnumber x = 1 / 0\nend\n")
	var out bytes.Buffer
	_, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run()
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	rerr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if len(rerr.Trace) != 1 || rerr.Trace[0].ProcName != "main" {
		t.Fatalf("expected a one-frame trace for main, got %v", rerr.Trace)
	}
}

func TestVMModuloByZeroIsRuntimeError(t *testing.T) {
	prog := compileText(t, "proc main\nnumber x = 1 % 0\nend\n")
	var out bytes.Buffer
	_, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run()
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
}

func TestVMSubtractionOperandOrder(t *testing.T) {
	// 5 - 2 evaluates to 3 under natural (left - right) order; a buggy
	// swap would instead compute 2 - 5 = -3.
	prog := compileText(t, "proc main\necho 5 - 2\nend\n")
	var out bytes.Buffer
	if _, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "3\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestVMForLoopDescending(t *testing.T) {
	prog := compileText(t, "proc main\nfor i from 3 to 1 step -1\necho i\nendfor\nend\n")
	var out bytes.Buffer
	if _, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "3\n2\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestVMForLoopDescendingDefaultStep(t *testing.T) {
	// No explicit step: start > end must synthesize step = -1, not +1.
	prog := compileText(t, "proc main\nfor i from 3 to 0\necho i\nendfor\nend\n")
	var out bytes.Buffer
	if _, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "3\n2\n1\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestVMForLoopStepDirectionMismatchIsRuntimeError(t *testing.T) {
	prog := compileText(t, "proc main\nfor i from 1 to 3 step -1\necho i\nendfor\nend\n")
	var out bytes.Buffer
	_, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run()
	cerr, ok := err.(*errors.CompilerError)
	if !ok {
		t.Fatalf("expected *errors.CompilerError, got %T: %v", err, err)
	}
	if cerr.Code != errors.ForDirectionInvalid {
		t.Fatalf("expected %s, got %s", errors.ForDirectionInvalid, cerr.Code)
	}
}

func TestVMForLoopZeroStepIsRuntimeError(t *testing.T) {
	prog := compileText(t, "proc main\nfor i from 1 to 3 step 0\necho i\nendfor\nend\n")
	var out bytes.Buffer
	_, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run()
	cerr, ok := err.(*errors.CompilerError)
	if !ok {
		t.Fatalf("expected *errors.CompilerError, got %T: %v", err, err)
	}
	if cerr.Code != errors.ForStepInvalid {
		t.Fatalf("expected %s, got %s", errors.ForStepInvalid, cerr.Code)
	}
}

func TestVMBuiltinConstants(t *testing.T) {
	prog := compileText(t, "proc main\necho PI\nend\n")
	var out bytes.Buffer
	if _, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "3.14159") {
		t.Fatalf("unexpected PI output: %q", out.String())
	}
}

func TestVMReassignBuiltinConstantIsFatal(t *testing.T) {
	prog := compileText(t, "proc main\nconst number PI = 1\nend\n")
	var out bytes.Buffer
	_, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run()
	if err == nil {
		t.Fatal("expected an error reassigning a builtin constant")
	}
}

func TestVMInputReadFailureIsNonFatal(t *testing.T) {
	prog := compileText(t, "proc main\necho input\nend\n")
	var out bytes.Buffer
	code, err := New(prog, &out, strings.NewReader(""), "test.cyl").Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "Warning") {
		t.Fatalf("expected an input-read warning in output, got %q", out.String())
	}
}
