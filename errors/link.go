package errors

import "fmt"

// LinkError reports a branch id the linker could not resolve. It always
// indicates a code generator bug rather than a problem in user code.
type LinkError struct {
	Code     ErrorCode
	Message  string
	BranchID int
}

// NewLinkError returns a LinkError for the given branch id.
func NewLinkError(code ErrorCode, id int, format string, args ...any) *LinkError {
	return &LinkError{Code: code, BranchID: id, Message: fmt.Sprintf(format, args...)}
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link error: %s", e.Message)
}

// ToFormatted converts to the FormattedError type for display.
func (e *LinkError) ToFormatted() *FormattedError {
	return &FormattedError{
		Code:    e.Code,
		Kind:    "link error",
		Message: e.Message,
		Note:    fmt.Sprintf("branch id %d", e.BranchID),
	}
}
