package vm

import (
	"fmt"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/errors"
	"github.com/danielteel/gpdsl-sub000/object"
)

// Function is a host function invoked by excall. It must call pop once per
// declared parameter; arguments come off in reverse declaration order.
type Function func(pop func() object.Value) (object.Value, error)

// External fills one depth-0 binding slot, in declaration order. Exactly
// one of Value and Function is set.
type External struct {
	Name       string
	Value      object.Value
	Function   Function
	Arity      int
	ReturnType object.Type
}

// callExternal invokes the host function bound at the slot stored in the
// instruction's branch field and leaves its result in eax. The operand
// stack is restored to its height before the arguments were pushed,
// whatever the callback popped.
func (vm *VirtualMachine) callExternal(ins *bytecode.Instruction) error {
	index := ins.Branch
	if index < 0 || index >= len(vm.externals) || vm.externals[index].Function == nil {
		return vm.errorf(errors.E3007, nil, "slot %d is not an external function", index)
	}
	ext := vm.externals[index]
	base := len(vm.stack) - ext.Arity
	if base < 0 {
		return vm.errorf(errors.E3012, nil, "%s expects %d arguments on the stack", ext.Name, ext.Arity)
	}
	underflow := false
	pop := func() object.Value {
		if len(vm.stack) <= base {
			underflow = true
			return object.Nil
		}
		v := vm.stack[len(vm.stack)-1]
		vm.stack = vm.stack[:len(vm.stack)-1]
		return v
	}

	if !vm.observeCall(ext.Name, true) {
		return vm.errorf(errors.E3009, nil, "execution halted by observer")
	}
	result, err := invoke(ext, pop)
	vm.stack = vm.stack[:base]
	if err != nil {
		return vm.errorf(errors.E3010, err, "%s: %v", ext.Name, err)
	}
	if underflow {
		return vm.errorf(errors.E3012, nil, "%s popped more than %d arguments", ext.Name, ext.Arity)
	}
	if !vm.observeReturn(ext.Name) {
		return vm.errorf(errors.E3009, nil, "execution halted by observer")
	}
	if result == nil {
		result = object.Nil
	}
	result = object.Native(result)
	if !result.IsNull() && ext.ReturnType.IsScalar() && result.Type() != ext.ReturnType {
		return vm.errorf(errors.E3001, nil, "%s returned %s, declared %s", ext.Name, result.Type(), ext.ReturnType)
	}
	return vm.assign(vm.registers[bytecode.EAX], result)
}

// invoke calls the host function, converting a panic into an error.
func invoke(ext External, pop func() object.Value) (result object.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ext.Function(pop)
}
