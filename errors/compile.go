package errors

import (
	"fmt"
	"strings"
)

// CompileError represents a compilation error. Compilation aborts at the
// first one.
type CompileError struct {
	Code        ErrorCode
	Message     string
	Line        int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
}

// NewCompileError returns a CompileError for the given line.
func NewCompileError(code ErrorCode, line int, format string, args ...any) *CompileError {
	return &CompileError{Code: code, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compile error: ")
	b.WriteString(e.Message)
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	return b.String()
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:    e.Code,
		Kind:    "compile error",
		Message: e.Message,
		Line:    e.Line,
		Note:    e.Note,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: e.Line, Text: e.SourceLine, IsMain: true},
		}
	}
	if len(e.Suggestions) > 0 {
		fe.Hint = FormatSuggestions(e.Suggestions)
	}
	return fe
}
