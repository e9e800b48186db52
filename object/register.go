package object

// Register is a VM scratch value. It takes on the type and payload of
// whatever is stored into it and delegates comparisons to that value.
type Register struct {
	name string
	held Value
}

// NewRegister returns an empty register holding null.
func NewRegister(name string) *Register {
	return &Register{name: name, held: Nil}
}

func (r *Register) sealed() {}

// Name returns the register mnemonic, e.g. "eax".
func (r *Register) Name() string {
	return r.name
}

// Held returns the native value currently in the register.
func (r *Register) Held() Value {
	return r.held
}

// Reset clears the register back to null.
func (r *Register) Reset() {
	r.held = Nil
}

func (r *Register) Type() Type {
	return r.held.Type()
}

func (r *Register) IsNull() bool {
	return r.held.IsNull()
}

func (r *Register) IsConstant() bool {
	return false
}

// Set copies v into the register; the register adopts v's type.
func (r *Register) Set(v Value) error {
	r.held = Native(v).Copy()
	return nil
}

func (r *Register) Copy() Value {
	return r.held.Copy()
}

func (r *Register) Equals(other Value) bool {
	return r.held.Equals(other)
}

func (r *Register) Less(other Value) bool {
	return r.held.Less(other)
}

func (r *Register) Greater(other Value) bool {
	return r.held.Greater(other)
}

func (r *Register) Interface() interface{} {
	return r.held.Interface()
}

func (r *Register) Inspect() string {
	return r.held.Inspect()
}

func (r *Register) String() string {
	return r.name
}
