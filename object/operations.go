package object

import (
	"fmt"
	"math"

	"github.com/danielteel/gpdsl-sub000/op"
)

// Epsilon is the tolerance used when deciding a divisor is zero.
const Epsilon = 1e-7

// AboutZero returns true if x is within Epsilon of zero.
func AboutZero(x float64) bool {
	return math.Abs(x) < Epsilon
}

// BinaryOp applies a two-operand arithmetic, logical or string opcode to a
// and b and returns a new value. Null operands are rejected. Division and
// modulo by a value about equal to zero, and any non-finite numeric result,
// yield Nil.
func BinaryOp(code op.Code, a, b Value) (Value, error) {
	a, b = Native(a), Native(b)
	if a.IsNull() || b.IsNull() {
		return nil, fmt.Errorf("%w: %s %s %s", ErrNullOperand, a.Inspect(), code, b.Inspect())
	}
	switch code {
	case op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Pow:
		x, ok1 := a.(*Number)
		y, ok2 := b.(*Number)
		if !ok1 || !ok2 {
			return nil, TypeErrorf("%s requires double operands (got %s and %s)", code, a.Type(), b.Type())
		}
		return arithmetic(code, x.value, y.value), nil
	case op.And, op.Or:
		x, ok1 := a.(*Bool)
		y, ok2 := b.(*Bool)
		if !ok1 || !ok2 {
			return nil, TypeErrorf("%s requires bool operands (got %s and %s)", code, a.Type(), b.Type())
		}
		if code == op.And {
			return NewBool(x.value && y.value), nil
		}
		return NewBool(x.value || y.value), nil
	case op.Concat:
		x, ok1 := a.(*String)
		y, ok2 := b.(*String)
		if !ok1 || !ok2 {
			return nil, TypeErrorf("concat requires string operands (got %s and %s)", a.Type(), b.Type())
		}
		return NewString(x.value + y.value), nil
	default:
		return nil, fmt.Errorf("unsupported binary operation %s", code)
	}
}

func arithmetic(code op.Code, x, y float64) Value {
	var result float64
	switch code {
	case op.Add:
		result = x + y
	case op.Sub:
		result = x - y
	case op.Mul:
		result = x * y
	case op.Div:
		if AboutZero(y) {
			return Nil
		}
		result = x / y
	case op.Mod:
		if AboutZero(y) {
			return Nil
		}
		result = math.Mod(x, y)
	case op.Pow:
		result = math.Pow(x, y)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return Nil
	}
	return NewNumber(result)
}

// Negate returns -v for a non-null number.
func Negate(v Value) (Value, error) {
	v = Native(v)
	if v.IsNull() {
		return nil, fmt.Errorf("%w: cannot negate null", ErrNullOperand)
	}
	n, ok := v.(*Number)
	if !ok {
		return nil, TypeErrorf("cannot negate %s", v.Type())
	}
	return NewNumber(-n.value), nil
}

// Not returns the logical negation of a non-null bool.
func Not(v Value) (Value, error) {
	v = Native(v)
	if v.IsNull() {
		return nil, fmt.Errorf("%w: cannot negate null", ErrNullOperand)
	}
	b, ok := v.(*Bool)
	if !ok {
		return nil, TypeErrorf("cannot apply not to %s", v.Type())
	}
	return NewBool(!b.value), nil
}

// Truthy returns the payload of a non-null bool. It backs the test
// instruction.
func Truthy(v Value) (bool, error) {
	v = Native(v)
	if v.IsNull() {
		return false, fmt.Errorf("%w: null used as a condition", ErrNullOperand)
	}
	b, ok := v.(*Bool)
	if !ok {
		return false, TypeErrorf("condition must be bool (got %s)", v.Type())
	}
	return b.value, nil
}
