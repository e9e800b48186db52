package errors

import "fmt"

// LexError is raised by the tokenizer. Tokenization stops at the first one.
type LexError struct {
	Code       ErrorCode
	Message    string
	Line       int
	SourceLine string
}

// NewLexError returns a LexError for the given line.
func NewLexError(code ErrorCode, line int, format string, args ...any) *LexError {
	return &LexError{Code: code, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error: %s (line %d)", e.Message, e.Line)
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *LexError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *LexError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:    e.Code,
		Kind:    "lexical error",
		Message: e.Message,
		Line:    e.Line,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{{Number: e.Line, Text: e.SourceLine, IsMain: true}}
	}
	return fe
}
