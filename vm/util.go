package vm

import (
	stderrors "errors"

	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/object"
)

// classify maps a value model error to a runtime error code.
func classify(err error) errors.ErrorCode {
	var typeErr *object.TypeError
	switch {
	case stderrors.Is(err, object.ErrConstant):
		return errors.E3011
	case stderrors.Is(err, object.ErrNullOperand):
		return errors.E3005
	case stderrors.As(err, &typeErr):
		return errors.E3001
	}
	return errors.E3007
}
