package object

// Bool is a typed boolean value.
type Bool struct {
	value    bool
	null     bool
	constant bool
}

// NewBool returns a mutable boolean.
func NewBool(value bool) *Bool {
	return &Bool{value: value}
}

// NewConstantBool returns a boolean that rejects assignment.
func NewConstantBool(value bool) *Bool {
	return &Bool{value: value, constant: true}
}

// NullBool returns a mutable boolean holding null.
func NullBool() *Bool {
	return &Bool{null: true}
}

func (b *Bool) sealed() {}

func (b *Bool) Type() Type {
	return BOOL
}

// Value returns the payload. It is false when the value is null.
func (b *Bool) Value() bool {
	return b.value && !b.null
}

func (b *Bool) IsNull() bool {
	return b.null
}

func (b *Bool) IsConstant() bool {
	return b.constant
}

func (b *Bool) Set(v Value) error {
	if b.constant {
		return ErrConstant
	}
	switch v := Native(v).(type) {
	case *Bool:
		b.value, b.null = v.value, v.null
	case *Null:
		b.value, b.null = false, true
	default:
		if v.IsNull() {
			b.value, b.null = false, true
			return nil
		}
		return TypeErrorf("cannot assign %s to bool", v.Type())
	}
	return nil
}

func (b *Bool) Copy() Value {
	return &Bool{value: b.value, null: b.null}
}

func (b *Bool) Equals(other Value) bool {
	if eq, ok := equalsNull(b, other); ok {
		return eq
	}
	o, ok := Native(other).(*Bool)
	return ok && o.value == b.value
}

func (b *Bool) Less(other Value) bool {
	return false
}

func (b *Bool) Greater(other Value) bool {
	return false
}

func (b *Bool) Interface() interface{} {
	if b.null {
		return nil
	}
	return b.value
}

func (b *Bool) Inspect() string {
	if b.null {
		return "null"
	}
	if b.value {
		return "true"
	}
	return "false"
}

func (b *Bool) String() string {
	return b.Inspect()
}
