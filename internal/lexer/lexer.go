// Package lexer tokenizes Cylium source, one already-preprocessed line at
// a time. Unlike a conventional streaming lexer it never crosses a line
// boundary: Cylium's grammar is line-oriented (spec.md §4.1), so the
// lexer's unit of work is "one line in, one token vector out".
package lexer

import (
	"unicode"

	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/internal/token"
)

// Option configures a Lexer via the functional-options idiom.
type Option func(*Lexer)

// WithFile sets the file name attached to emitted errors.
func WithFile(name string) Option {
	return func(l *Lexer) { l.file = name }
}

// Lexer tokenizes a fixed set of preprocessed source lines.
type Lexer struct {
	lines   []string
	rawLine func(readyIndex int) int // 1-based ready index -> 1-based raw line number
	file    string
}

// New creates a Lexer over lines (already comment/blank-stripped). rawLine
// maps a 1-based index into lines back to the original source line number
// for diagnostics; pass nil to use lines' own 1-based index directly.
func New(lines []string, rawLine func(int) int, opts ...Option) *Lexer {
	l := &Lexer{lines: lines, rawLine: rawLine}
	if l.rawLine == nil {
		l.rawLine = func(i int) int { return i }
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize scans every line and returns one token vector per line, in
// order. It stops and returns the first lexical error encountered
// (UnclosedString or BadChar), per spec.md §4.1 and §7's fatal-on-first
// -error policy.
func (l *Lexer) Tokenize() ([][]token.Token, *errors.CompilerError) {
	grid := make([][]token.Token, 0, len(l.lines))
	for i, line := range l.lines {
		raw := l.rawLine(i + 1)
		toks, err := l.tokenizeLine(line, raw)
		if err != nil {
			return nil, err
		}
		grid = append(grid, toks)
	}
	return grid, nil
}

func (l *Lexer) errAt(code errors.Code, line, col int, format string, args ...any) *errors.CompilerError {
	e := errors.New(code, line, col, format, args...)
	e.File = l.file
	return e
}

// tokenizeLine scans a single already-trimmed logical source line.
func (l *Lexer) tokenizeLine(line string, rawLine int) ([]token.Token, *errors.CompilerError) {
	runes := []rune(line)
	var toks []token.Token
	i := 0

	emit := func(typ token.Type, lit string, col int) {
		toks = append(toks, token.Token{Type: typ, Literal: lit, Pos: token.Position{Line: rawLine, Column: col}})
	}

	for i < len(runes) {
		col := i + 1
		ch := runes[i]

		switch {
		case ch == ' ' || ch == '\t':
			i++

		case ch == '(':
			emit(token.LPAREN, "(", col)
			i++
		case ch == ')':
			emit(token.RPAREN, ")", col)
			i++
		case ch == '[':
			emit(token.LBRACKET, "[", col)
			i++
		case ch == ']':
			emit(token.RBRACKET, "]", col)
			i++
		case ch == '{':
			emit(token.LBRACE, "{", col)
			i++
		case ch == '}':
			emit(token.RBRACE, "}", col)
			i++
		case ch == ',':
			emit(token.COMMA, ",", col)
			i++
		case ch == ':':
			emit(token.COLON, ":", col)
			i++

		case ch == '+':
			i = handleTwoChar(runes, i, emit, col, token.PLUS, "+", token.PLUS_ASSIGN, "+=")
		case ch == '-':
			i = handleTwoChar(runes, i, emit, col, token.MINUS, "-", token.MINUS_ASSIGN, "-=")
		case ch == '*':
			i = handleTwoChar(runes, i, emit, col, token.ASTERISK, "*", token.ASTERISK_ASSIGN, "*=")
		case ch == '/':
			i = handleTwoChar(runes, i, emit, col, token.SLASH, "/", token.SLASH_ASSIGN, "/=")
		case ch == '%':
			i = handleTwoChar(runes, i, emit, col, token.PERCENT, "%", token.PERCENT_ASSIGN, "%=")
		case ch == '=':
			i = handleTwoChar(runes, i, emit, col, token.ASSIGN, "=", token.EQ, "==")
		case ch == '>':
			i = handleTwoChar(runes, i, emit, col, token.GT, ">", token.GT_EQ, ">=")
		case ch == '<':
			i = handleTwoChar(runes, i, emit, col, token.LT, "<", token.LT_EQ, "<=")

		case ch == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				emit(token.NOT_EQ, "!=", col)
				i += 2
			} else {
				return nil, l.errAt(errors.InvalidExpression, rawLine, col, "unexpected character %q", ch)
			}

		case ch == '"':
			lit, next, ok := scanString(runes, i+1)
			if !ok {
				return nil, l.errAt(errors.UnclosedString, rawLine, col, "unterminated string literal")
			}
			emit(token.STRING, lit, col)
			i = next

		case unicode.IsDigit(ch):
			lit, isFloat, next := scanNumber(runes, i)
			if isFloat {
				emit(token.FLOAT, lit, col)
			} else {
				emit(token.NUMBER, lit, col)
			}
			i = next

		case isIdentStart(ch):
			lit, next := scanIdent(runes, i)
			emit(token.LookupIdent(lit), lit, col)
			i = next

		default:
			return nil, l.errAt(errors.InvalidExpression, rawLine, col, "unexpected character %q", ch)
		}
	}

	return toks, nil
}

// handleTwoChar consumes a single-char punctuator, or its two-char form if
// the line has a trailing '=' right after it.
func handleTwoChar(runes []rune, i int, emit func(token.Type, string, int), col int, single token.Type, singleLit string, double token.Type, doubleLit string) int {
	if i+1 < len(runes) && runes[i+1] == '=' {
		emit(double, doubleLit, col)
		return i + 2
	}
	emit(single, singleLit, col)
	return i + 1
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func scanIdent(runes []rune, start int) (string, int) {
	i := start + 1
	for i < len(runes) && isIdentPart(runes[i]) {
		i++
	}
	return string(runes[start:i]), i
}

// scanNumber consumes a run of digits optionally containing exactly one
// '.'. Presence of '.' selects float, else integer (spec.md §4.1).
func scanNumber(runes []rune, start int) (lit string, isFloat bool, next int) {
	i := start
	seenDot := false
	for i < len(runes) && (unicode.IsDigit(runes[i]) || (runes[i] == '.' && !seenDot)) {
		if runes[i] == '.' {
			seenDot = true
		}
		i++
	}
	return string(runes[start:i]), seenDot, i
}

// scanString consumes a double-quoted string literal starting just after
// the opening '"'. A backslash before '"' escapes the terminator.
func scanString(runes []rune, start int) (lit string, next int, ok bool) {
	var sb []rune
	i := start
	for i < len(runes) {
		if runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == '"' {
			sb = append(sb, '"')
			i += 2
			continue
		}
		if runes[i] == '"' {
			return string(sb), i + 1, true
		}
		sb = append(sb, runes[i])
		i++
	}
	return "", i, false
}
