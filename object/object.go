// Package object provides the runtime value model of the gpdsl virtual
// machine.
//
// The model is closed: every Value is one of *Bool, *Number, *String, *Null
// or *Register. Consumers are expected to type switch over those five
// variants:
//
//	switch v := object.Native(v).(type) {
//	case *object.Bool:
//		// v.Value()
//	case *object.Number:
//		// v.Value()
//	case *object.String:
//		// v.Value()
//	case *object.Null:
//	}
//
// Bool, Number and String values are typed: their Type never changes after
// construction, but they may hold a typed null payload. A Register is a
// scratch holder whose current type follows whatever was last stored in it.
package object

// Value is the interface that all runtime values implement.
type Value interface {
	// Type of the value. For a Register this is the type currently held.
	Type() Type

	// IsNull returns true if the value holds a null payload.
	IsNull() bool

	// IsConstant returns true if assignments into the value are rejected.
	IsConstant() bool

	// Set stores the payload of v into this value.
	Set(v Value) error

	// Copy returns a mutable, non-register copy of the value.
	Copy() Value

	// Equals returns true if both values are null, or if both hold equal
	// payloads of the same type.
	Equals(other Value) bool

	// Less returns true if both values are non-null numbers and this one is
	// smaller.
	Less(other Value) bool

	// Greater returns true if both values are non-null numbers and this one
	// is larger.
	Greater(other Value) bool

	// Interface converts the value to a native Go value (nil when null).
	Interface() interface{}

	// Inspect returns a string representation of the value.
	Inspect() string

	sealed()
}

// Native returns the value held by a Register, or v itself otherwise.
func Native(v Value) Value {
	if r, ok := v.(*Register); ok {
		return r.held
	}
	return v
}

// IsNumeric returns true if v is a Number or a Register currently holding
// a Number.
func IsNumeric(v Value) bool {
	_, ok := Native(v).(*Number)
	return ok
}

// NewNullOf returns a mutable typed null of the given scalar type. Any other
// type yields the universal Null.
func NewNullOf(t Type) Value {
	switch t {
	case BOOL:
		return NullBool()
	case DOUBLE:
		return NullNumber()
	case STRING:
		return NullString()
	default:
		return Nil
	}
}

func equalsNull(a, b Value) (bool, bool) {
	an, bn := a.IsNull(), b.IsNull()
	if an || bn {
		return an && bn, true
	}
	return false, false
}
