package object

// Null is the universal null value. It is compatible with every scalar
// type and is always constant.
type Null struct{}

// Nil is the shared Null instance.
var Nil = &Null{}

func (n *Null) sealed() {}

func (n *Null) Type() Type {
	return NULL
}

func (n *Null) IsNull() bool {
	return true
}

func (n *Null) IsConstant() bool {
	return true
}

func (n *Null) Set(v Value) error {
	return ErrConstant
}

func (n *Null) Copy() Value {
	return Nil
}

func (n *Null) Equals(other Value) bool {
	return other.IsNull()
}

func (n *Null) Less(other Value) bool {
	return false
}

func (n *Null) Greater(other Value) bool {
	return false
}

func (n *Null) Interface() interface{} {
	return nil
}

func (n *Null) Inspect() string {
	return "null"
}

func (n *Null) String() string {
	return "null"
}
