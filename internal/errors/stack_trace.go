package errors

import (
	"fmt"
	"strings"
)

// StackFrame is a single active Call frame: the procedure name and the
// source line of the call that entered it (0 for the initial call of main).
type StackFrame struct {
	ProcName string
	Line     int
}

func (sf StackFrame) String() string {
	return fmt.Sprintf("%s [line %d]", sf.ProcName, sf.Line)
}

// StackTrace is the chain of active procedure activations, oldest first,
// used to annotate a vm.RuntimeError raised inside a nested Call.
type StackTrace []StackFrame

func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (st StackTrace) Top() *StackFrame {
	if len(st) == 0 {
		return nil
	}
	return &st[len(st)-1]
}

func (st StackTrace) Depth() int { return len(st) }

func NewStackFrame(procName string, line int) StackFrame {
	return StackFrame{ProcName: procName, Line: line}
}

func NewStackTrace() StackTrace {
	return make(StackTrace, 0)
}
