package vm

import (
	"context"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/object"
)

// Run executes a linked program in a new Virtual Machine and returns its
// exit value.
func Run(ctx context.Context, program *bytecode.Program, options ...Option) (object.Value, error) {
	machine, err := New(program, options...)
	if err != nil {
		return nil, err
	}
	return machine.Run(ctx)
}
