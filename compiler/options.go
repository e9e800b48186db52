package compiler

import (
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/rs/zerolog"
)

// Binding declares a host-provided name. Bindings are assigned depth 0
// slots in the order given.
type Binding struct {
	Name       string
	Type       object.Type // FUNCTION for external functions
	Params     []object.Type
	ReturnType object.Type
}

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithExitType requires every exit expression to match the given type.
// Null exits always match.
func WithExitType(t object.Type) Option {
	return func(c *Compiler) {
		c.exitType = t
		c.checkExit = true
	}
}

// WithBindings declares external bindings before the top-level block is
// compiled. This option is additive.
func WithBindings(bindings ...Binding) Option {
	return func(c *Compiler) {
		c.bindings = append(c.bindings, bindings...)
	}
}

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}
