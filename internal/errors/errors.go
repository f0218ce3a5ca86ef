// Package errors provides Cylium's diagnostic catalogue and formatting.
// It formats compiler/runtime errors with source context, line/column
// information, and a caret pointing at the offending position.
package errors

import (
	"fmt"
	"strings"
)

// Code is one entry of the A##/C## diagnostic catalogue.
type Code string

const (
	NumericParseFail       Code = "A02"
	UnknownIdent           Code = "A03"
	ExpectedAssignOperator Code = "A04"
	InvalidName            Code = "A05"
	ConstReassign          Code = "A07"
	UnbalancedParen        Code = "A10"
	InvalidExpression      Code = "A15"
	BadArithType           Code = "A16"
	TopLevelOnlyInProc     Code = "A20"
	UnclosedString         Code = "A21"
	MissingMain            Code = "A22"
	UnknownProc            Code = "A24"
	MissingExitCode        Code = "A26"
	ArityMismatch          Code = "A27"
	ConstDelete            Code = "A28"
	BadBooleanValue        Code = "A35"
	BadCastSource          Code = "A36"
	DuplicateDecl          Code = "A37"
	DuplicateProc          Code = "A38"
	BadLogicType           Code = "A39"
	RedundantCast          Code = "A40"
	BadTransCastDomain     Code = "A41"
	ArgTypeMismatch        Code = "A42"
	TypeMismatch           Code = "A43"

	BadCastTarget       Code = "A44"
	ForStepInvalid      Code = "A45"
	ForDirectionInvalid Code = "A46"
	StackUnderflow      Code = "A47"

	RedundantConversion Code = "C01"
	InputReadFailure    Code = "C02"
)

// DetailsURL is appended to every formatted diagnostic, matching the
// preprocessor collaborator's own error footer.
const DetailsURL = "https://cylium.site/materials/errors"

// CompilerError is a single fatal diagnostic with position and source context.
type CompilerError struct {
	Code    Code
	Message string
	Source  string // full original (raw) source text, for context lines
	File    string
	Line    int
	Column  int
}

func New(code Code, line, column int, format string, args ...any) *CompilerError {
	return &CompilerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format renders the error with a source gutter and caret. If color is
// true, ANSI codes highlight the caret and message.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Line, e.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d\n", e.Line)
	}

	if line := e.sourceLine(e.Line); line != "" {
		gutter := fmt.Sprintf("%4d | ", e.Line)
		sb.WriteString(gutter)
		sb.WriteString(line)
		sb.WriteString("\n")

		col := e.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(gutter)+col-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	fmt.Fprintf(&sb, "Error %s: %s", e.Code, e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "For details, visit: %s\n", DetailsURL)

	return sb.String()
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors renders one or more errors in sequence.
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Compilation failed with %d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(errs))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Warning is a non-fatal diagnostic (C01/C02): printed, execution continues.
type Warning struct {
	Code    Code
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("Warning %s: %s", w.Code, w.Message)
}
