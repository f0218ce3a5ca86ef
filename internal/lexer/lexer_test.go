package lexer

import (
	"testing"

	"github.com/Ztry8/Cylium/internal/token"
)

func tokenTypes(t *testing.T, toks []token.Token) []token.Type {
	t.Helper()
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizeOperators(t *testing.T) {
	l := New([]string{"a += b == c and not d"}, nil)
	grid, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Type{token.IDENT, token.PLUS_ASSIGN, token.IDENT, token.EQ, token.IDENT, token.AND, token.NOT, token.IDENT}
	got := tokenTypes(t, grid[0])
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeNumberAndFloat(t *testing.T) {
	l := New([]string{"number x = 3"}, nil)
	grid, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid[0][3].Type != token.NUMBER || grid[0][3].Literal != "3" {
		t.Fatalf("unexpected token: %v", grid[0][3])
	}

	l2 := New([]string{"float y = 3.5"}, nil)
	grid2, err := l2.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid2[0][3].Type != token.FLOAT || grid2[0][3].Literal != "3.5" {
		t.Fatalf("unexpected token: %v", grid2[0][3])
	}
}

func TestTokenizeStringEscape(t *testing.T) {
	l := New([]string{`echo "he said \"hi\""`}, nil)
	grid, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	str := grid[0][1]
	if str.Type != token.STRING || str.Literal != `he said "hi"` {
		t.Fatalf("unexpected token: %v", str)
	}
}

func TestTokenizeUnclosedString(t *testing.T) {
	l := New([]string{`echo "unterminated`}, nil)
	_, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected an unclosed-string error")
	}
	if err.Code != "A21" {
		t.Fatalf("expected A21, got %s", err.Code)
	}
}

func TestTokenizeBadChar(t *testing.T) {
	l := New([]string{"x = 1 @ 2"}, nil)
	_, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected a bad-character error")
	}
	if err.Code != "A15" {
		t.Fatalf("expected A15, got %s", err.Code)
	}
}

func TestRawLineMapping(t *testing.T) {
	l := New([]string{"proc main", "echo 1", "end"}, func(i int) int { return i*2 - 1 })
	grid, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid[1][0].Pos.Line != 3 {
		t.Fatalf("expected line 3, got %d", grid[1][0].Pos.Line)
	}
}
