// Package builtins defines a standard set of external functions a host may
// bind into gpdsl programs.
//
// Conversions that cannot be performed return a typed null instead of an
// error, so scripts can test the result against null.
package builtins

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gpdsl "github.com/danielteel/gpdsl-sub000"
	"github.com/danielteel/gpdsl-sub000/object"
)

// Bindings returns the standard functions. print and printd write to w.
func Bindings(w io.Writer) []gpdsl.Binding {
	return []gpdsl.Binding{
		fn("print", "string", []string{"string"}, Print(w)),
		fn("printd", "string", []string{"double"}, PrintDouble(w)),
		fn("tostring", "string", []string{"double"}, ToString),
		fn("todouble", "double", []string{"string"}, ToDouble),
		fn("len", "double", []string{"string"}, Len),
		fn("substr", "string", []string{"string", "double", "double"}, Substr),
		fn("abs", "double", []string{"double"}, unary(math.Abs)),
		fn("floor", "double", []string{"double"}, unary(math.Floor)),
		fn("ceil", "double", []string{"double"}, unary(math.Ceil)),
		fn("round", "double", []string{"double"}, unary(math.Round)),
		fn("sqrt", "double", []string{"double"}, unary(math.Sqrt)),
		fn("min", "double", []string{"double", "double"}, binary(math.Min)),
		fn("max", "double", []string{"double", "double"}, binary(math.Max)),
	}
}

type function = func(pop func() object.Value) (object.Value, error)

func fn(name, ret string, params []string, invoke function) gpdsl.ExternalFunction {
	return gpdsl.ExternalFunction{
		Name:       name,
		Invoke:     invoke,
		ReturnType: ret,
		ParamTypes: params,
	}
}

// Print writes its string argument followed by a newline and returns the
// text written.
func Print(w io.Writer) function {
	return func(pop func() object.Value) (object.Value, error) {
		s, ok := str(pop())
		if !ok {
			s = "null"
		}
		return write(w, s)
	}
}

// PrintDouble writes its double argument followed by a newline and returns
// the text written.
func PrintDouble(w io.Writer) function {
	return func(pop func() object.Value) (object.Value, error) {
		return write(w, pop().Inspect())
	}
}

func write(w io.Writer, text string) (object.Value, error) {
	if _, err := fmt.Fprintln(w, text); err != nil {
		return nil, err
	}
	return object.NewString(text), nil
}

// ToString formats a double without trailing zeros.
func ToString(pop func() object.Value) (object.Value, error) {
	x, ok := number(pop())
	if !ok {
		return object.NullString(), nil
	}
	return object.NewString(strconv.FormatFloat(x, 'f', -1, 64)), nil
}

// ToDouble parses a decimal number, ignoring surrounding whitespace.
func ToDouble(pop func() object.Value) (object.Value, error) {
	s, ok := str(pop())
	if !ok {
		return object.NullNumber(), nil
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return object.NullNumber(), nil
	}
	return object.NewNumber(x), nil
}

// Len returns the number of characters in a string.
func Len(pop func() object.Value) (object.Value, error) {
	s, ok := str(pop())
	if !ok {
		return object.NullNumber(), nil
	}
	return object.NewNumber(float64(len([]rune(s)))), nil
}

// Substr returns length characters of s starting at start. A range that
// is not whole numbers within s yields null.
func Substr(pop func() object.Value) (object.Value, error) {
	length, lok := number(pop())
	start, sok := number(pop())
	s, ok := str(pop())
	if !ok || !lok || !sok {
		return object.NullString(), nil
	}
	runes := []rune(s)
	if start != math.Trunc(start) || length != math.Trunc(length) ||
		start < 0 || length < 0 || start+length > float64(len(runes)) {
		return object.NullString(), nil
	}
	from := int(start)
	return object.NewString(string(runes[from : from+int(length)])), nil
}

func unary(f func(float64) float64) function {
	return func(pop func() object.Value) (object.Value, error) {
		x, ok := number(pop())
		if !ok {
			return object.NullNumber(), nil
		}
		return object.NewNumber(f(x)), nil
	}
}

func binary(f func(float64, float64) float64) function {
	return func(pop func() object.Value) (object.Value, error) {
		y, yok := number(pop())
		x, xok := number(pop())
		if !xok || !yok {
			return object.NullNumber(), nil
		}
		return object.NewNumber(f(x, y)), nil
	}
}

func number(v object.Value) (float64, bool) {
	n, ok := object.Native(v).(*object.Number)
	if !ok || n.IsNull() {
		return 0, false
	}
	return n.Value(), true
}

func str(v object.Value) (string, bool) {
	s, ok := object.Native(v).(*object.String)
	if !ok || s.IsNull() {
		return "", false
	}
	return s.Value(), true
}
