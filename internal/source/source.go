// Package source implements the line-oriented file preprocessor: the
// collaborator that strips comments and blank lines while preserving
// original line numbers for diagnostics. It sits outside the language
// pipeline proper (lexer/parser/validator/compiler/VM) but every stage
// depends on the line-number mapping it produces.
package source

import "strings"

// File holds the preprocessed and raw forms of one Cylium source file.
//
// Ready holds trimmed, non-empty, non-comment lines in original order.
// Raw holds the untouched original lines, indexed by the same line number
// that diagnostics report (1-based via RawLine).
type File struct {
	Name string
	Raw  []string

	// Ready is the comment/blank-stripped line list fed to the lexer.
	Ready []string
	// readyToRaw[i] is the 1-based raw line number that Ready[i] came from.
	readyToRaw []int
}

// Load splits text into raw lines and builds the comment/blank-stripped
// Ready view. '#' as the first non-whitespace character marks a whole-line
// comment; trailing whitespace is trimmed from every line.
func Load(name, text string) *File {
	raw := strings.Split(text, "\n")
	f := &File{Name: name, Raw: raw}

	for i, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		f.Ready = append(f.Ready, trimmed)
		f.readyToRaw = append(f.readyToRaw, i+1)
	}

	return f
}

// RawLine maps a 1-based index into Ready back to the 1-based line number
// in Raw, for diagnostics. Returns 0 if readyLine is out of range.
func (f *File) RawLine(readyLine int) int {
	if readyLine < 1 || readyLine > len(f.readyToRaw) {
		return 0
	}
	return f.readyToRaw[readyLine-1]
}

// Text reconstructs the original source as a single string, for
// error-formatting source-context lookups.
func (f *File) Text() string {
	return strings.Join(f.Raw, "\n")
}

// Line returns the raw (untouched) text of the given 1-based raw line
// number, or "" if out of range.
func (f *File) Line(rawLine int) string {
	if rawLine < 1 || rawLine > len(f.Raw) {
		return ""
	}
	return f.Raw[rawLine-1]
}
