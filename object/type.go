package object

import "fmt"

// Type is the static and runtime type tag of a value.
type Type uint8

// Type constants
const (
	NULL Type = iota
	BOOL
	DOUBLE
	STRING
	FUNCTION
)

func (t Type) String() string {
	switch t {
	case NULL:
		return "null"
	case BOOL:
		return "bool"
	case DOUBLE:
		return "double"
	case STRING:
		return "string"
	case FUNCTION:
		return "function"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// IsScalar returns true for the three storable types.
func (t Type) IsScalar() bool {
	return t == BOOL || t == DOUBLE || t == STRING
}

// ParseType maps a host-facing type name ("bool", "double", "string") to its
// type tag.
func ParseType(name string) (Type, error) {
	switch name {
	case "bool":
		return BOOL, nil
	case "double":
		return DOUBLE, nil
	case "string":
		return STRING, nil
	default:
		return NULL, fmt.Errorf("invalid type name %q (expected bool, double or string)", name)
	}
}

// Match reports whether a value of type b may be used where type a is
// expected. Null matches any type unless strict is set.
func Match(a, b Type, strict bool) bool {
	if a == b {
		return true
	}
	return !strict && (a == NULL || b == NULL)
}
