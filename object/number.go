package object

import (
	"math"
	"strconv"
)

// Number wraps float64 and is the only numeric type of the language.
type Number struct {
	value    float64
	null     bool
	constant bool
}

// NewNumber returns a mutable number. Non-finite values are stored as null.
func NewNumber(value float64) *Number {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return NullNumber()
	}
	return &Number{value: value}
}

// NewConstantNumber returns a number that rejects assignment.
func NewConstantNumber(value float64) *Number {
	n := NewNumber(value)
	n.constant = true
	return n
}

// NullNumber returns a mutable number holding null.
func NullNumber() *Number {
	return &Number{null: true}
}

func (n *Number) sealed() {}

func (n *Number) Type() Type {
	return DOUBLE
}

// Value returns the payload. It is zero when the value is null.
func (n *Number) Value() float64 {
	if n.null {
		return 0
	}
	return n.value
}

func (n *Number) IsNull() bool {
	return n.null
}

func (n *Number) IsConstant() bool {
	return n.constant
}

func (n *Number) Set(v Value) error {
	if n.constant {
		return ErrConstant
	}
	switch v := Native(v).(type) {
	case *Number:
		n.value, n.null = v.value, v.null
	case *Null:
		n.value, n.null = 0, true
	default:
		if v.IsNull() {
			n.value, n.null = 0, true
			return nil
		}
		return TypeErrorf("cannot assign %s to double", v.Type())
	}
	return nil
}

func (n *Number) Copy() Value {
	return &Number{value: n.value, null: n.null}
}

func (n *Number) Equals(other Value) bool {
	if eq, ok := equalsNull(n, other); ok {
		return eq
	}
	o, ok := Native(other).(*Number)
	return ok && o.value == n.value
}

func (n *Number) Less(other Value) bool {
	o, ok := Native(other).(*Number)
	if !ok || n.null || o.null {
		return false
	}
	return n.value < o.value
}

func (n *Number) Greater(other Value) bool {
	o, ok := Native(other).(*Number)
	if !ok || n.null || o.null {
		return false
	}
	return n.value > o.value
}

func (n *Number) Interface() interface{} {
	if n.null {
		return nil
	}
	return n.value
}

func (n *Number) Inspect() string {
	if n.null {
		return "null"
	}
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

func (n *Number) String() string {
	return n.Inspect()
}
