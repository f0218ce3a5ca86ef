package source

import "testing"

func TestLoadStripsCommentsAndBlanks(t *testing.T) {
	text := "proc main\n# a comment\n\n  echo 1\nend\n"
	f := Load("demo.cyl", text)

	want := []string{"proc main", "echo 1", "end"}
	if len(f.Ready) != len(want) {
		t.Fatalf("Ready = %v, want %v", f.Ready, want)
	}
	for i, line := range want {
		if f.Ready[i] != line {
			t.Errorf("Ready[%d] = %q, want %q", i, f.Ready[i], line)
		}
	}

	// "echo 1" is raw line 4.
	if got := f.RawLine(2); got != 4 {
		t.Errorf("RawLine(2) = %d, want 4", got)
	}
}

func TestRawLineOutOfRange(t *testing.T) {
	f := Load("demo.cyl", "proc main\nend\n")
	if got := f.RawLine(0); got != 0 {
		t.Errorf("RawLine(0) = %d, want 0", got)
	}
	if got := f.RawLine(99); got != 0 {
		t.Errorf("RawLine(99) = %d, want 0", got)
	}
}
