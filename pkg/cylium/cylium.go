// Package cylium is the public entry point for embedding the Cylium
// toolchain: source loading, lexing, parsing, semantic analysis,
// compilation, and execution, wired together as a single pipeline.
package cylium

import (
	"io"

	"github.com/Ztry8/Cylium/internal/ast"
	"github.com/Ztry8/Cylium/internal/bytecode"
	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/internal/lexer"
	"github.com/Ztry8/Cylium/internal/parser"
	"github.com/Ztry8/Cylium/internal/semantic"
	"github.com/Ztry8/Cylium/internal/source"
	"github.com/Ztry8/Cylium/internal/token"
	"github.com/Ztry8/Cylium/internal/vm"
)

// Tokenize preprocesses and lexes text, returning the per-line token grid.
func Tokenize(file, text string) ([][]token.Token, *errors.CompilerError) {
	f := source.Load(file, text)
	l := lexer.New(f.Ready, f.RawLine, lexer.WithFile(file))
	grid, err := l.Tokenize()
	if err != nil {
		err.Source = f.Text()
	}
	return grid, err
}

// Parse lexes and parses text into an AST.
func Parse(file, text string) (*ast.Program, *errors.CompilerError) {
	grid, err := Tokenize(file, text)
	if err != nil {
		return nil, err
	}
	prog, perr := parser.New(grid, file).ParseProgram()
	if perr != nil {
		perr.Source = text
	}
	return prog, perr
}

// Check parses and semantically validates text, returning the checked AST.
func Check(file, text string) (*ast.Program, *errors.CompilerError) {
	prog, err := Parse(file, text)
	if err != nil {
		return nil, err
	}
	if err := semantic.New(file).Analyze(prog); err != nil {
		err.Source = text
		return nil, err
	}
	return prog, nil
}

// Compile checks text and lowers it into a bytecode Program.
func Compile(file, text string) (*bytecode.Program, *errors.CompilerError) {
	prog, err := Check(file, text)
	if err != nil {
		return nil, err
	}
	return bytecode.Compile(prog), nil
}

// Run compiles and executes text, writing `echo` output to stdout and
// reading `input` lines from stdin. It returns the process exit code.
func Run(file, text string, stdout io.Writer, stdin io.Reader) (int64, error) {
	prog, err := Compile(file, text)
	if err != nil {
		return 1, err
	}
	return vm.New(prog, stdout, stdin, file).Run()
}
