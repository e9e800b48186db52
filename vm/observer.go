package vm

import (
	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config observing calls and returns.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives VM execution events. Methods are called synchronously
// and returning false from any of them halts execution with E3009.
//
// Implementations can embed NoOpObserver and override what they need.
type Observer interface {
	// Config is called once when the VM is created.
	Config() ObserverConfig

	OnStep(event StepEvent) bool
	OnCall(event CallEvent) bool
	OnReturn(event ReturnEvent) bool
}

// StepEvent describes one executed instruction.
type StepEvent struct {
	IP          int
	Opcode      op.Code
	OpcodeName  string
	Instruction string
	Line        int
	StackDepth  int
	FrameDepth  int
}

// CallEvent describes a call to a script or host function.
type CallEvent struct {
	FunctionName string
	External     bool
	Line         int
	FrameDepth   int
}

// ReturnEvent describes a return from a script or host function.
type ReturnEvent struct {
	FunctionName string
	Line         int
	FrameDepth   int
}

// NoOpObserver is an Observer that does nothing. Its config steps through
// every instruction and observes calls and returns.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}

func (vm *VirtualMachine) observeStep(ins *bytecode.Instruction) bool {
	if vm.observer == nil {
		return true
	}
	switch vm.observerConfig.StepMode {
	case StepNone:
		return true
	case StepSampled:
		if vm.executed%int64(vm.observerConfig.SampleInterval) != 0 {
			return true
		}
	case StepOnLine:
		if vm.line == vm.lastObservedLine {
			return true
		}
		vm.lastObservedLine = vm.line
	}
	return vm.observer.OnStep(StepEvent{
		IP:          vm.ip,
		Opcode:      ins.Code,
		OpcodeName:  ins.Code.String(),
		Instruction: ins.LinkedString(),
		Line:        vm.line,
		StackDepth:  len(vm.stack),
		FrameDepth:  len(vm.calls),
	})
}

func (vm *VirtualMachine) observeCall(name string, external bool) bool {
	if vm.observer == nil || !vm.observerConfig.ObserveCalls {
		return true
	}
	return vm.observer.OnCall(CallEvent{
		FunctionName: name,
		External:     external,
		Line:         vm.line,
		FrameDepth:   len(vm.calls),
	})
}

func (vm *VirtualMachine) observeReturn(name string) bool {
	if vm.observer == nil || !vm.observerConfig.ObserveReturns {
		return true
	}
	return vm.observer.OnReturn(ReturnEvent{
		FunctionName: name,
		Line:         vm.line,
		FrameDepth:   len(vm.calls),
	})
}
