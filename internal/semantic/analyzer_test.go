package semantic

import (
	"testing"

	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/internal/lexer"
	"github.com/Ztry8/Cylium/internal/parser"
	"github.com/Ztry8/Cylium/internal/source"
)

func analyze(t *testing.T, text string) *errors.CompilerError {
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
	return New("test.cyl").Analyze(prog)
}

func TestAnalyzeValidProgram(t *testing.T) {
	if err := analyze(t, "proc main\nnumber x = 1\necho x + 1\nend\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeMissingMain(t *testing.T) {
	err := analyze(t, "proc other\nexit 0\nend\n")
	if err == nil || err.Code != errors.MissingMain {
		t.Fatalf("expected MissingMain, got %v", err)
	}
}

func TestAnalyzeUnknownIdentifier(t *testing.T) {
	err := analyze(t, "proc main\necho y\nend\n")
	if err == nil || err.Code != errors.UnknownIdent {
		t.Fatalf("expected UnknownIdent, got %v", err)
	}
}

func TestAnalyzeVarDeclTypeMismatch(t *testing.T) {
	err := analyze(t, "proc main\nnumber x = \"hi\"\nend\n")
	if err == nil || err.Code != errors.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestAnalyzeDuplicateTopLevelConstFatal(t *testing.T) {
	err := analyze(t, "const number K = 1\nconst number K = 2\nproc main\nexit 0\nend\n")
	if err == nil || err.Code != errors.DuplicateDecl {
		t.Fatalf("expected DuplicateDecl, got %v", err)
	}
}

func TestAnalyzeAssignToConstFatal(t *testing.T) {
	err := analyze(t, "proc main\nconst number x = 1\nx = 2\nend\n")
	if err == nil || err.Code != errors.ConstReassign {
		t.Fatalf("expected ConstReassign, got %v", err)
	}
}

func TestAnalyzeIfConditionMustBeBool(t *testing.T) {
	err := analyze(t, "proc main\nif 1\nexit 0\nendif\nend\n")
	if err == nil || err.Code != errors.InvalidExpression {
		t.Fatalf("expected InvalidExpression, got %v", err)
	}
}

func TestAnalyzeCallArityMismatch(t *testing.T) {
	err := analyze(t, "proc add a:number b:number\nexit 0\nend\nproc main\ncall add 1\nend\n")
	if err == nil || err.Code != errors.ArityMismatch {
		t.Fatalf("expected ArityMismatch, got %v", err)
	}
}

func TestAnalyzeBuiltinConstantsAvailable(t *testing.T) {
	if err := analyze(t, "proc main\necho PI\necho TAU\necho E\necho SQRT_2\nend\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeRedundantCast(t *testing.T) {
	err := analyze(t, "proc main\nnumber x = 1\necho x as number\nend\n")
	if err == nil || err.Code != errors.RedundantCast {
		t.Fatalf("expected RedundantCast, got %v", err)
	}
}
