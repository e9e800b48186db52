package object

import (
	"errors"
	"fmt"
)

var (
	// ErrConstant is returned when assigning into a constant value.
	ErrConstant = errors.New("cannot assign to a constant")

	// ErrNullOperand is returned when an operation does not accept null.
	ErrNullOperand = errors.New("null operand")
)

// TypeError indicates a value of the wrong type reached an operation.
type TypeError struct {
	Err error
}

func (t *TypeError) Error() string {
	return t.Err.Error()
}

func (t *TypeError) Unwrap() error {
	return t.Err
}

// TypeErrorf returns a TypeError with a formatted message.
func TypeErrorf(format string, args ...any) *TypeError {
	return &TypeError{Err: fmt.Errorf(format, args...)}
}
