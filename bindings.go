package gpdsl

import (
	"fmt"

	"github.com/danielteel/gpdsl-sub000/compiler"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/vm"
	"github.com/hashicorp/go-multierror"
)

// Binding is a host-provided name visible to scripts. It is implemented by
// ExternalFunction and ExternalVariable.
type Binding interface {
	BindingName() string
}

// ExternalFunction is a host function callable from scripts.
//
// Invoke receives a pop function that yields the arguments in reverse
// declaration order; it must be called exactly len(ParamTypes) times.
// ReturnType and each entry of ParamTypes is "bool", "double" or "string".
type ExternalFunction struct {
	Name       string
	Invoke     vm.Function
	ReturnType string
	ParamTypes []string
}

// BindingName returns the script-visible name.
func (f ExternalFunction) BindingName() string { return f.Name }

// ExternalVariable exposes a host value to scripts by reference. Script
// assignments to a mutable value are visible to the host after the run;
// assignments to a constant value fail at runtime.
type ExternalVariable struct {
	Name  string
	Value object.Value
}

// BindingName returns the script-visible name.
func (v ExternalVariable) BindingName() string { return v.Name }

// NewVariable returns a mutable variable binding holding a copy of value.
func NewVariable(name string, value any) (ExternalVariable, error) {
	v, err := toValue(value, false)
	if err != nil {
		return ExternalVariable{}, fmt.Errorf("variable %q: %w", name, err)
	}
	return ExternalVariable{Name: name, Value: v}, nil
}

// NewConstant returns a constant variable binding.
func NewConstant(name string, value any) (ExternalVariable, error) {
	v, err := toValue(value, true)
	if err != nil {
		return ExternalVariable{}, fmt.Errorf("constant %q: %w", name, err)
	}
	return ExternalVariable{Name: name, Value: v}, nil
}

func toValue(value any, constant bool) (object.Value, error) {
	switch value := value.(type) {
	case bool:
		if constant {
			return object.NewConstantBool(value), nil
		}
		return object.NewBool(value), nil
	case float64:
		if constant {
			return object.NewConstantNumber(value), nil
		}
		return object.NewNumber(value), nil
	case int:
		return toValue(float64(value), constant)
	case string:
		if constant {
			return object.NewConstantString(value), nil
		}
		return object.NewString(value), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

// resolveBindings validates the bindings and splits them into compiler
// declarations and VM slots, both in the order given. Every invalid
// binding is reported, not just the first.
func resolveBindings(bindings []Binding) ([]compiler.Binding, []vm.External, error) {
	var (
		result    error
		decls     []compiler.Binding
		externals []vm.External
		seen      = map[string]bool{}
	)
	for i, b := range bindings {
		if b == nil {
			result = multierror.Append(result, fmt.Errorf("binding %d is nil", i))
			continue
		}
		name := b.BindingName()
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("binding %d has no name", i))
			continue
		}
		if seen[name] {
			result = multierror.Append(result, fmt.Errorf("duplicate binding %q", name))
			continue
		}
		seen[name] = true
		switch b := b.(type) {
		case ExternalFunction:
			decl, ext, err := resolveFunction(b)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			decls = append(decls, decl)
			externals = append(externals, ext)
		case *ExternalFunction:
			decl, ext, err := resolveFunction(*b)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			decls = append(decls, decl)
			externals = append(externals, ext)
		case ExternalVariable:
			decl, ext, err := resolveVariable(b)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			decls = append(decls, decl)
			externals = append(externals, ext)
		case *ExternalVariable:
			decl, ext, err := resolveVariable(*b)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			decls = append(decls, decl)
			externals = append(externals, ext)
		default:
			result = multierror.Append(result, fmt.Errorf("binding %q: unsupported type %T", name, b))
		}
	}
	if result != nil {
		return nil, nil, result
	}
	return decls, externals, nil
}

func resolveFunction(f ExternalFunction) (compiler.Binding, vm.External, error) {
	var result error
	if f.Invoke == nil {
		result = multierror.Append(result, fmt.Errorf("function %q has no implementation", f.Name))
	}
	ret, err := object.ParseType(f.ReturnType)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("function %q return type: %w", f.Name, err))
	}
	params := make([]object.Type, len(f.ParamTypes))
	for i, name := range f.ParamTypes {
		if params[i], err = object.ParseType(name); err != nil {
			result = multierror.Append(result, fmt.Errorf("function %q parameter %d: %w", f.Name, i+1, err))
		}
	}
	if result != nil {
		return compiler.Binding{}, vm.External{}, result
	}
	decl := compiler.Binding{
		Name:       f.Name,
		Type:       object.FUNCTION,
		Params:     params,
		ReturnType: ret,
	}
	ext := vm.External{
		Name:       f.Name,
		Function:   f.Invoke,
		Arity:      len(params),
		ReturnType: ret,
	}
	return decl, ext, nil
}

func resolveVariable(v ExternalVariable) (compiler.Binding, vm.External, error) {
	if v.Value == nil {
		return compiler.Binding{}, vm.External{}, fmt.Errorf("variable %q has no value", v.Name)
	}
	t := v.Value.Type()
	if !t.IsScalar() {
		return compiler.Binding{}, vm.External{}, fmt.Errorf("variable %q has unsupported type %s", v.Name, t)
	}
	return compiler.Binding{Name: v.Name, Type: t}, vm.External{Name: v.Name, Value: v.Value}, nil
}
