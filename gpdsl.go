// Package gpdsl compiles and runs gpdsl programs.
//
// gpdsl is a small statically typed scripting language with three value
// types (bool, double and string), functions and structured control flow.
// Source is tokenized, compiled in a single pass to register-based
// bytecode, optionally run through a peephole optimizer, linked, and
// executed by a virtual machine. Hosts expose functions and variables to
// scripts through bindings:
//
//	square := gpdsl.ExternalFunction{
//		Name:       "square",
//		ReturnType: "double",
//		ParamTypes: []string{"double"},
//		Invoke: func(pop func() object.Value) (object.Value, error) {
//			x := pop().(*object.Number).Value()
//			return object.NewNumber(x * x), nil
//		},
//	}
//	result, err := gpdsl.Run(ctx, "exit square(4);", gpdsl.WithBindings(square))
package gpdsl

import (
	"context"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/compiler"
	"github.com/danielteel/gpdsl-sub000/dis"
	"github.com/danielteel/gpdsl-sub000/internal/lexer"
	"github.com/danielteel/gpdsl-sub000/linker"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/optimizer"
	"github.com/danielteel/gpdsl-sub000/vm"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

// Result is the outcome of Run. On failure Value is nil and Disassembly,
// when requested, holds whatever was built before the error.
type Result struct {
	ID          string
	Value       object.Value
	Disassembly string
	Stats       optimizer.Stats
}

type build struct {
	program   *bytecode.Program
	externals []vm.External
	stats     optimizer.Stats
}

func (o *options) build(source string, logger zerolog.Logger) (*build, error) {
	b := &build{}
	decls, externals, err := resolveBindings(o.bindings)
	if err != nil {
		return b, err
	}
	b.externals = externals
	var exitType object.Type
	if o.exitType != "" {
		if exitType, err = object.ParseType(o.exitType); err != nil {
			return b, err
		}
	}
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return b, err
	}
	c := compiler.New(tokens, o.compilerOpts(decls, exitType, logger)...)
	b.program = c.Program()
	if err := c.Compile(); err != nil {
		return b, err
	}
	if o.optimize {
		if b.stats, err = optimizer.Optimize(b.program, o.optimizerOpts(logger)...); err != nil {
			return b, err
		}
	}
	if err := linker.Link(b.program, linker.WithLogger(logger)); err != nil {
		return b, err
	}
	return b, nil
}

// Compile tokenizes, compiles, optionally optimizes and links source into
// a program ready to execute.
func Compile(source string, opts ...Option) (*bytecode.Program, error) {
	o := collectOptions(opts...)
	b, err := o.build(source, o.logger)
	if err != nil {
		return nil, err
	}
	return b.program, nil
}

// Execute runs a program returned by Compile. The bindings must declare
// the same names and types, in the same order, as the ones it was compiled
// with. A compiled program is read-only, so it may be executed
// concurrently as long as each call has its own variable bindings.
func Execute(ctx context.Context, program *bytecode.Program, opts ...Option) (object.Value, error) {
	o := collectOptions(opts...)
	_, externals, err := resolveBindings(o.bindings)
	if err != nil {
		return nil, err
	}
	return vm.Run(ctx, program, o.vmOpts(externals, o.logger)...)
}

// Run compiles and executes source and returns its exit value.
func Run(ctx context.Context, source string, opts ...Option) (*Result, error) {
	o := collectOptions(opts...)
	id := uuid.Must(uuid.NewV4()).String()
	logger := o.logger.With().Str("run", id).Logger()
	result := &Result{ID: id}

	b, err := o.build(source, logger)
	result.Stats = b.stats
	if o.disassembly && b.program != nil {
		result.Disassembly = dis.Disassemble(b.program)
	}
	if err != nil {
		return result, err
	}
	value, err := vm.Run(ctx, b.program, o.vmOpts(b.externals, logger)...)
	if err != nil {
		return result, err
	}
	result.Value = value
	return result, nil
}

// Eval runs source and returns its exit value as a Go value: bool,
// float64, string, or nil for null.
func Eval(ctx context.Context, source string, opts ...Option) (any, error) {
	result, err := Run(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	return result.Value.Interface(), nil
}
