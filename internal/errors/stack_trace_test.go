package errors

import (
	"strings"
	"testing"
)

func TestStackTraceOrdering(t *testing.T) {
	st := NewStackTrace()
	st = append(st, NewStackFrame("main", 3))
	st = append(st, NewStackFrame("add", 7))

	if st.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", st.Depth())
	}
	if top := st.Top(); top == nil || top.ProcName != "add" {
		t.Fatalf("expected top frame add, got %v", top)
	}

	want := "add [line 7]\nmain [line 3]"
	if got := st.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestCompilerErrorFormat(t *testing.T) {
	e := New(NumericParseFail, 4, 10, "cannot parse %q as number", "abc")
	e.Source = "number x = 1\nnumber y = 2\nnumber z = 3\nnumber w = \"abc\" as number"
	e.File = "demo.cyl"

	out := e.Format(false)
	if !strings.Contains(out, "Error in demo.cyl:4:10") {
		t.Fatalf("missing header in output: %q", out)
	}
	if !strings.Contains(out, `Error A02: cannot parse "abc" as number`) {
		t.Fatalf("missing message in output: %q", out)
	}
	if !strings.Contains(out, DetailsURL) {
		t.Fatalf("missing details URL in output: %q", out)
	}
}
