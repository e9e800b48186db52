// Package vm provides a VirtualMachine that executes linked gpdsl programs.
//
// The machine has three scratch registers, an equal/above/below flag
// triple, an operand stack, a call stack and one stack of slot frames per
// allocation depth. Depth 0 holds the host's external bindings; they are
// shared by reference, so assignments made by a script are visible to the
// host after the run.
package vm

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/rs/zerolog"
)

const (
	// DefaultContextCheckInterval is the number of instructions between
	// checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000

	// DefaultMaxCallDepth bounds the call stack.
	DefaultMaxCallDepth = 10000
)

type flags struct {
	equal bool
	above bool
	below bool
}

// VirtualMachine executes one linked program. A VirtualMachine may be run
// repeatedly but not concurrently.
type VirtualMachine struct {
	program   *bytecode.Program
	code      []*bytecode.Instruction
	externals []External

	ip        int
	line      int
	executed  int64
	registers [bytecode.RegisterCount]*object.Register
	flags     flags
	stack     []object.Value
	calls     []call
	scopes    []scope

	running  bool
	runMutex sync.Mutex

	logger               zerolog.Logger
	instructionLimit     int64
	contextCheckInterval int
	maxCallDepth         int
	observer             Observer
	observerConfig       ObserverConfig
	lastObservedLine     int
}

// New returns a VirtualMachine for a linked program.
func New(program *bytecode.Program, options ...Option) (*VirtualMachine, error) {
	if program.State() != bytecode.Ready {
		return nil, fmt.Errorf("vm: program is %s, not ready", program.State())
	}
	vm := &VirtualMachine{
		program:              program,
		code:                 program.Instructions(),
		logger:               zerolog.Nop(),
		contextCheckInterval: DefaultContextCheckInterval,
		maxCallDepth:         DefaultMaxCallDepth,
	}
	for i := range vm.registers {
		vm.registers[i] = object.NewRegister(bytecode.Register(i).String())
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}
	return vm, nil
}

// Executed returns the number of instructions executed by the last run.
func (vm *VirtualMachine) Executed() int64 {
	return vm.executed
}

// Register returns the current contents of a scratch register.
func (vm *VirtualMachine) Register(r bytecode.Register) object.Value {
	return vm.registers[r].Held()
}

func (vm *VirtualMachine) start() error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	vm.running = true
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

func (vm *VirtualMachine) reset() {
	vm.ip = 0
	vm.line = 0
	vm.lastObservedLine = -1
	vm.executed = 0
	vm.flags = flags{}
	vm.stack = vm.stack[:0]
	vm.calls = vm.calls[:0]
	for _, r := range vm.registers {
		r.Reset()
	}
	values := make([]object.Value, len(vm.externals))
	for i, ext := range vm.externals {
		values[i] = ext.Value
	}
	vm.scopes = []scope{{frames: [][]object.Value{values}}}
}

// Run executes the program and returns a copy of the value passed to the
// exit instruction that stopped it. A program that runs past its last
// instruction returns null.
func (vm *VirtualMachine) Run(ctx context.Context) (result object.Value, err error) {
	if err := vm.start(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, vm.errorf(errors.E3007, nil, "internal error: %v", r)
		}
		if err != nil {
			vm.logger.Warn().Err(err).Int("address", vm.ip).Msg("runtime error")
		}
		vm.stop()
	}()

	vm.reset()
	vm.logger.Debug().
		Str("program", vm.program.ID()).
		Int("instructions", len(vm.code)).
		Int("externals", len(vm.externals)).
		Msg("run started")

	result, err = vm.eval(ctx)
	if err != nil {
		return nil, err
	}
	vm.logger.Debug().
		Str("program", vm.program.ID()).
		Int64("executed", vm.executed).
		Str("result", result.Inspect()).
		Msg("run finished")
	return result, nil
}

func (vm *VirtualMachine) eval(ctx context.Context) (object.Value, error) {
	var sinceCheck int
	doneChan := ctx.Done()

	for vm.ip < len(vm.code) {
		if vm.contextCheckInterval > 0 && doneChan != nil {
			sinceCheck++
			if sinceCheck >= vm.contextCheckInterval {
				sinceCheck = 0
				select {
				case <-doneChan:
					return nil, vm.errorf(errors.E3009, ctx.Err(), "execution cancelled: %v", ctx.Err())
				default:
				}
			}
		}

		ins := vm.code[vm.ip]
		if ins.Code == op.DebugLine {
			vm.line = ins.Line
			vm.ip++
			continue
		}
		if ins.Code == op.Label {
			vm.ip++
			continue
		}

		vm.executed++
		if vm.instructionLimit > 0 && vm.executed > vm.instructionLimit {
			return nil, vm.errorf(errors.E3008, nil, "instruction limit of %d exceeded", vm.instructionLimit)
		}
		if err := vm.step(ins); err != nil {
			return nil, err
		}

		next := vm.ip + 1
		switch ins.Code {
		case op.Exit:
			v, err := vm.resolve(ins.Operands[0])
			if err != nil {
				return nil, err
			}
			return object.Native(v).Copy(), nil
		case op.Jmp:
			next = ins.Branch
		case op.Je, op.Jne, op.Ja, op.Jae, op.Jb, op.Jbe:
			if vm.condition(ins.Code) {
				next = ins.Branch
			}
		case op.Call:
			if len(vm.calls) >= vm.maxCallDepth {
				return nil, vm.errorf(errors.E3006, nil, "call stack overflow (depth %d)", len(vm.calls))
			}
			vm.calls = append(vm.calls, call{
				name:       ins.Name,
				returnAddr: vm.ip + 1,
				callSiteIP: vm.ip,
				line:       vm.line,
			})
			if !vm.observeCall(ins.Name, false) {
				return nil, vm.errorf(errors.E3009, nil, "execution halted by observer")
			}
			next = ins.Branch
		case op.Ret:
			if len(vm.calls) == 0 {
				return nil, vm.errorf(errors.E3012, nil, "return with an empty call stack")
			}
			c := vm.calls[len(vm.calls)-1]
			vm.calls = vm.calls[:len(vm.calls)-1]
			if !vm.observeReturn(c.name) {
				return nil, vm.errorf(errors.E3009, nil, "execution halted by observer")
			}
			vm.line = c.line
			next = c.returnAddr
		}
		vm.ip = next
	}
	return object.Nil, nil
}

// step executes every instruction that does not transfer control.
func (vm *VirtualMachine) step(ins *bytecode.Instruction) error {
	if !vm.observeStep(ins) {
		return vm.errorf(errors.E3009, nil, "execution halted by observer")
	}
	switch ins.Code {
	case op.Exit, op.Jmp, op.Je, op.Jne, op.Ja, op.Jae, op.Jb, op.Jbe, op.Call, op.Ret:
		return nil
	case op.ExCall:
		return vm.callExternal(ins)
	case op.Cmp:
		a, b, err := vm.resolve2(ins)
		if err != nil {
			return err
		}
		vm.flags = flags{equal: a.Equals(b)}
		if object.IsNumeric(a) && object.IsNumeric(b) {
			vm.flags.above = a.Greater(b)
			vm.flags.below = a.Less(b)
		}
	case op.Test:
		v, err := vm.resolve(ins.Operands[0])
		if err != nil {
			return err
		}
		truth, err := object.Truthy(v)
		if err != nil {
			return vm.wrap(err)
		}
		vm.flags = flags{equal: !truth}
	case op.Se, op.Sne, op.Sa, op.Sae, op.Sb, op.Sbe:
		dst, err := vm.resolve(ins.Operands[0])
		if err != nil {
			return err
		}
		return vm.assign(dst, object.NewBool(vm.condition(op.JumpForSet(ins.Code))))
	case op.Mov:
		dst, src, err := vm.resolve2(ins)
		if err != nil {
			return err
		}
		return vm.assign(dst, src)
	case op.Push:
		v, err := vm.resolve(ins.Operands[0])
		if err != nil {
			return err
		}
		vm.stack = append(vm.stack, object.Native(v).Copy())
	case op.Pop:
		dst, err := vm.resolve(ins.Operands[0])
		if err != nil {
			return err
		}
		if len(vm.stack) == 0 {
			return vm.errorf(errors.E3012, nil, "pop from an empty operand stack")
		}
		v := vm.stack[len(vm.stack)-1]
		vm.stack = vm.stack[:len(vm.stack)-1]
		return vm.assign(dst, v)
	case op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Pow, op.And, op.Or, op.Concat:
		dst, src, err := vm.resolve2(ins)
		if err != nil {
			return err
		}
		result, err := object.BinaryOp(ins.Code, dst, src)
		if err != nil {
			return vm.wrap(err)
		}
		return vm.assign(dst, result)
	case op.Neg, op.Not:
		dst, err := vm.resolve(ins.Operands[0])
		if err != nil {
			return err
		}
		var result object.Value
		if ins.Code == op.Neg {
			result, err = object.Negate(dst)
		} else {
			result, err = object.Not(dst)
		}
		if err != nil {
			return vm.wrap(err)
		}
		return vm.assign(dst, result)
	case op.ScopeDepth:
		for len(vm.scopes) < ins.Size {
			vm.scopes = append(vm.scopes, scope{})
		}
	case op.PushScope:
		if ins.Scope <= 0 || ins.Scope >= len(vm.scopes) {
			return vm.errorf(errors.E3007, nil, "invalid allocation depth %d", ins.Scope)
		}
		vm.scopes[ins.Scope].push(ins.Size)
	case op.PopScope:
		if ins.Scope <= 0 || ins.Scope >= len(vm.scopes) || !vm.scopes[ins.Scope].pop() {
			return vm.errorf(errors.E3012, nil, "no frame to pop at depth %d", ins.Scope)
		}
	case op.AllocBool, op.AllocDouble, op.AllocString:
		return vm.alloc(ins)
	default:
		return vm.errorf(errors.E3007, nil, "invalid opcode %d", ins.Code)
	}
	return nil
}

// condition evaluates the flags for a conditional jump.
func (vm *VirtualMachine) condition(code op.Code) bool {
	f := vm.flags
	switch code {
	case op.Je:
		return f.equal
	case op.Jne:
		return !f.equal
	case op.Ja:
		return f.above
	case op.Jae:
		return f.above || f.equal
	case op.Jb:
		return f.below
	case op.Jbe:
		return f.below || f.equal
	}
	return false
}

// resolve returns the runtime value an operand refers to.
func (vm *VirtualMachine) resolve(o bytecode.Operand) (object.Value, error) {
	switch o.Kind {
	case bytecode.RegisterOperand:
		if int(o.Register) >= len(vm.registers) {
			return nil, vm.errorf(errors.E3007, nil, "unknown register %s", o.Register)
		}
		return vm.registers[o.Register], nil
	case bytecode.VariableOperand:
		slot, err := vm.slot(o)
		if err != nil {
			return nil, err
		}
		if *slot == nil {
			return nil, vm.errorf(errors.E3007, nil, "variable %s used before allocation", o)
		}
		return *slot, nil
	case bytecode.LiteralOperand:
		return o.Value, nil
	case bytecode.NullOperand:
		return object.Nil, nil
	}
	return nil, vm.errorf(errors.E3007, nil, "unknown operand kind %d", o.Kind)
}

func (vm *VirtualMachine) resolve2(ins *bytecode.Instruction) (object.Value, object.Value, error) {
	a, err := vm.resolve(ins.Operands[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := vm.resolve(ins.Operands[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// slot returns the storage cell a variable operand addresses in the top
// frame of its allocation depth.
func (vm *VirtualMachine) slot(o bytecode.Operand) (*object.Value, error) {
	if o.Scope < 0 || o.Scope >= len(vm.scopes) {
		return nil, vm.errorf(errors.E3007, nil, "invalid allocation depth %d for %s", o.Scope, o)
	}
	frame := vm.scopes[o.Scope].top()
	if frame == nil || o.Index < 0 || o.Index >= len(frame) {
		return nil, vm.errorf(errors.E3007, nil, "no slot for %s", o)
	}
	return &frame[o.Index], nil
}

func (vm *VirtualMachine) alloc(ins *bytecode.Instruction) error {
	o := ins.Operands[0]
	if o.Kind != bytecode.VariableOperand {
		return vm.errorf(errors.E3007, nil, "cannot allocate %s", o)
	}
	slot, err := vm.slot(o)
	if err != nil {
		return err
	}
	var t object.Type
	switch ins.Code {
	case op.AllocBool:
		t = object.BOOL
	case op.AllocDouble:
		t = object.DOUBLE
	default:
		t = object.STRING
	}
	*slot = object.NewNullOf(t)
	return nil
}

// assign stores src into dst.
func (vm *VirtualMachine) assign(dst, src object.Value) error {
	if err := dst.Set(src); err != nil {
		return vm.wrap(err)
	}
	return nil
}

// trace returns the call stack, innermost call first.
func (vm *VirtualMachine) trace() []errors.StackFrame {
	frames := make([]errors.StackFrame, 0, len(vm.calls))
	for i := len(vm.calls) - 1; i >= 0; i-- {
		c := vm.calls[i]
		frames = append(frames, errors.StackFrame{
			Function: c.name,
			Address:  c.callSiteIP,
			Line:     c.line,
		})
	}
	return frames
}

func (vm *VirtualMachine) errorf(code errors.ErrorCode, cause error, format string, args ...any) *errors.RuntimeError {
	return &errors.RuntimeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Address: vm.ip,
		Line:    vm.line,
		Stack:   vm.trace(),
		Err:     cause,
	}
}

// wrap converts a value model error into a RuntimeError.
func (vm *VirtualMachine) wrap(err error) error {
	var runtimeErr *errors.RuntimeError
	if stderrors.As(err, &runtimeErr) {
		return err
	}
	return vm.errorf(classify(err), err, "%s", err)
}
