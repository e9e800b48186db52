package object

import "strconv"

// String is a typed string value.
type String struct {
	value    string
	null     bool
	constant bool
}

// NewString returns a mutable string.
func NewString(value string) *String {
	return &String{value: value}
}

// NewConstantString returns a string that rejects assignment.
func NewConstantString(value string) *String {
	return &String{value: value, constant: true}
}

// NullString returns a mutable string holding null.
func NullString() *String {
	return &String{null: true}
}

func (s *String) sealed() {}

func (s *String) Type() Type {
	return STRING
}

// Value returns the payload. It is empty when the value is null.
func (s *String) Value() string {
	if s.null {
		return ""
	}
	return s.value
}

func (s *String) IsNull() bool {
	return s.null
}

func (s *String) IsConstant() bool {
	return s.constant
}

func (s *String) Set(v Value) error {
	if s.constant {
		return ErrConstant
	}
	switch v := Native(v).(type) {
	case *String:
		s.value, s.null = v.value, v.null
	case *Null:
		s.value, s.null = "", true
	default:
		if v.IsNull() {
			s.value, s.null = "", true
			return nil
		}
		return TypeErrorf("cannot assign %s to string", v.Type())
	}
	return nil
}

func (s *String) Copy() Value {
	return &String{value: s.value, null: s.null}
}

func (s *String) Equals(other Value) bool {
	if eq, ok := equalsNull(s, other); ok {
		return eq
	}
	o, ok := Native(other).(*String)
	return ok && o.value == s.value
}

func (s *String) Less(other Value) bool {
	return false
}

func (s *String) Greater(other Value) bool {
	return false
}

func (s *String) Interface() interface{} {
	if s.null {
		return nil
	}
	return s.value
}

func (s *String) Inspect() string {
	if s.null {
		return "null"
	}
	return strconv.Quote(s.value)
}

func (s *String) String() string {
	return s.Value()
}
