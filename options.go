package gpdsl

import (
	"github.com/danielteel/gpdsl-sub000/compiler"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/optimizer"
	"github.com/danielteel/gpdsl-sub000/vm"
	"github.com/rs/zerolog"
)

// Option configures a gpdsl compilation or execution.
type Option func(*options)

type options struct {
	optimize             bool
	disassembly          bool
	exitType             string
	bindings             []Binding
	logger               zerolog.Logger
	instructionLimit     int64
	contextCheckInterval int
	maxCallDepth         int
	observer             vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{
		logger:               zerolog.Nop(),
		contextCheckInterval: vm.DefaultContextCheckInterval,
		maxCallDepth:         vm.DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerOpts(decls []compiler.Binding, exitType object.Type, logger zerolog.Logger) []compiler.Option {
	opts := []compiler.Option{compiler.WithLogger(logger)}
	if len(decls) > 0 {
		opts = append(opts, compiler.WithBindings(decls...))
	}
	if o.exitType != "" {
		opts = append(opts, compiler.WithExitType(exitType))
	}
	return opts
}

func (o *options) optimizerOpts(logger zerolog.Logger) []optimizer.Option {
	return []optimizer.Option{optimizer.WithLogger(logger)}
}

func (o *options) vmOpts(externals []vm.External, logger zerolog.Logger) []vm.Option {
	opts := []vm.Option{
		vm.WithLogger(logger),
		vm.WithExternals(externals...),
		vm.WithContextCheckInterval(o.contextCheckInterval),
		vm.WithMaxCallDepth(o.maxCallDepth),
	}
	if o.instructionLimit > 0 {
		opts = append(opts, vm.WithInstructionLimit(o.instructionLimit))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	return opts
}

// WithOptimize enables the peephole optimizer.
func WithOptimize(enabled bool) Option {
	return func(o *options) {
		o.optimize = enabled
	}
}

// WithDisassembly requests a listing of the program in the Result, or the
// part of it built before a compile error.
func WithDisassembly(enabled bool) Option {
	return func(o *options) {
		o.disassembly = enabled
	}
}

// WithExitType requires every exit expression to have the named type
// ("bool", "double" or "string"). A mismatch is a compile error.
func WithExitType(name string) Option {
	return func(o *options) {
		o.exitType = name
	}
}

// WithBindings provides external functions and variables. This option is
// additive; slots are assigned in the order the bindings are supplied.
func WithBindings(bindings ...Binding) Option {
	return func(o *options) {
		o.bindings = append(o.bindings, bindings...)
	}
}

// WithLogger sets the logger passed to every pipeline stage. Each run adds
// its run ID to it.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInstructionLimit aborts execution after n instructions.
func WithInstructionLimit(n int64) Option {
	return func(o *options) {
		o.instructionLimit = n
	}
}

// WithContextCheckInterval sets how often, in instructions, the VM checks
// for context cancellation. Zero disables the check.
func WithContextCheckInterval(interval int) Option {
	return func(o *options) {
		o.contextCheckInterval = interval
	}
}

// WithMaxCallDepth bounds script recursion.
func WithMaxCallDepth(depth int) Option {
	return func(o *options) {
		o.maxCallDepth = depth
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}
