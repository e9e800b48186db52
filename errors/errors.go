// Package errors defines the lexical, compile, link and runtime error types
// reported by gpdsl, along with a formatter for displaying them.
package errors

import (
	"fmt"
	"strings"
)

// StackFrame is one entry of a runtime call trace.
type StackFrame struct {
	Function string
	Address  int // address of the call instruction
	Line     int // 1-based source line of the call, 0 if unknown
}

// String returns a formatted string representation of the stack frame.
func (f StackFrame) String() string {
	name := f.Function
	if name == "" {
		name = "<anonymous>"
	}
	if f.Line > 0 {
		return fmt.Sprintf("at %s (address %d, line %d)", name, f.Address, f.Line)
	}
	return fmt.Sprintf("at %s (address %d)", name, f.Address)
}

// FormatStackTrace formats a slice of stack frames as a human-readable string.
func FormatStackTrace(frames []StackFrame) string {
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Stack trace:\n")
	for _, frame := range frames {
		b.WriteString("  ")
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
	return b.String()
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be rendered by the
// Formatter.
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}
