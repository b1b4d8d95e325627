package interpreter

import (
	"fmt"
	"strings"

	"bizdsl/interpreter-go/pkg/ast"
)

// TypeError reports an operator, member access or index applied to operands
// of the wrong kind.
type TypeError struct {
	Message string
	Pos     ast.Position
}

func (e *TypeError) Error() string {
	return withPosition("type error: "+e.Message, e.Pos)
}

// UndefinedFunctionError reports a call to a name that is neither a builtin
// nor declared by the script.
type UndefinedFunctionError struct {
	Name string
	Pos  ast.Position
}

func (e *UndefinedFunctionError) Error() string {
	return withPosition(fmt.Sprintf("undefined function '%s'", e.Name), e.Pos)
}

// IndexOutOfRangeError reports a list index outside [0, Length).
type IndexOutOfRangeError struct {
	Index  float64
	Length int
	Pos    ast.Position
}

func (e *IndexOutOfRangeError) Error() string {
	msg := fmt.Sprintf("index %v out of range for list of length %d", e.Index, e.Length)
	return withPosition(msg, e.Pos)
}

// RecursionLimitError is raised when nested user function calls exceed the
// configured depth.
type RecursionLimitError struct {
	Function string
	Limit    int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("maximum call depth %d exceeded calling '%s'", e.Limit, e.Function)
}

// StackFrame names one active user function call.
type StackFrame struct {
	Function string
	Pos      ast.Position
}

func (f StackFrame) String() string {
	if f.Pos.Line <= 0 {
		return f.Function
	}
	return fmt.Sprintf("%s (line %d, column %d)", f.Function, f.Pos.Line, f.Pos.Column)
}

// RuntimeError decorates an evaluation failure with the user function call
// stack active when it happened, innermost frame first.
type RuntimeError struct {
	Err   error
	Stack []StackFrame
}

func (e *RuntimeError) Error() string {
	return e.Err.Error()
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// StackTrace renders the frames one per line.
func (e *RuntimeError) StackTrace() []string {
	out := make([]string, 0, len(e.Stack))
	for _, frame := range e.Stack {
		out = append(out, "at "+frame.String())
	}
	return out
}

func (e *RuntimeError) String() string {
	if len(e.Stack) == 0 {
		return e.Error()
	}
	return e.Error() + "\n  " + strings.Join(e.StackTrace(), "\n  ")
}

func withPosition(msg string, pos ast.Position) string {
	if pos.Line <= 0 {
		return msg
	}
	return fmt.Sprintf("%s (line %d, column %d)", msg, pos.Line, pos.Column)
}

func typeErrorf(node ast.Node, format string, args ...any) error {
	return &TypeError{Message: fmt.Sprintf(format, args...), Pos: node.Span().Start}
}
