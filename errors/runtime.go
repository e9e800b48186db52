package errors

import (
	"fmt"
	"strings"
)

// RuntimeError is raised by the virtual machine. It records the address of
// the failing instruction and the call trace, innermost call first.
type RuntimeError struct {
	Code    ErrorCode
	Message string
	Address int
	Line    int
	Stack   []StackFrame
	Err     error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString("runtime error: ")
	b.WriteString(e.Message)
	fmt.Fprintf(&b, " (address %d", e.Address)
	if e.Line > 0 {
		fmt.Fprintf(&b, ", line %d", e.Line)
	}
	b.WriteString(")")
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// FriendlyErrorMessage returns the error with its call trace.
func (e *RuntimeError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *RuntimeError) ToFormatted() *FormattedError {
	return &FormattedError{
		Code:    e.Code,
		Kind:    "runtime error",
		Message: e.Message,
		Line:    e.Line,
		Note:    fmt.Sprintf("at instruction %d", e.Address),
		Stack:   e.Stack,
	}
}
