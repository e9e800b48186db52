package vm

import "github.com/rs/zerolog"

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithExternals binds the depth-0 slots, in the order the compiler declared
// them.
func WithExternals(externals ...External) Option {
	return func(vm *VirtualMachine) {
		vm.externals = append(vm.externals, externals...)
	}
}

// WithLogger sets the logger used for run start, finish and failure.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithInstructionLimit aborts a run with E3008 after n instructions. Zero
// means no limit.
func WithInstructionLimit(n int64) Option {
	return func(vm *VirtualMachine) {
		vm.instructionLimit = n
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution, in instructions. A value of 0 disables the check. The default
// is DefaultContextCheckInterval (1000).
//
// Lower values provide more responsive cancellation at a small cost per
// instruction.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithMaxCallDepth bounds the call stack. Exceeding it is E3006.
func WithMaxCallDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxCallDepth = depth
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
