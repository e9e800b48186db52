package bytecode

import (
	"fmt"

	"github.com/danielteel/gpdsl-sub000/object"
)

// OperandKind tags what an Operand refers to.
type OperandKind uint8

const (
	NoOperand OperandKind = iota
	RegisterOperand
	VariableOperand
	LiteralOperand
	NullOperand
)

// Register identifies one of the three VM scratch registers.
type Register uint8

const (
	EAX Register = iota
	EBX
	ECX
)

// RegisterCount is the number of scratch registers.
const RegisterCount = 3

func (r Register) String() string {
	switch r {
	case EAX:
		return "eax"
	case EBX:
		return "ebx"
	case ECX:
		return "ecx"
	default:
		return fmt.Sprintf("r%d", uint8(r))
	}
}

// Operand is a compile-time reference to an instruction target. Two operands
// are the same target iff Equal reports true; the optimizer relies on this.
type Operand struct {
	Kind     OperandKind
	Register Register
	Type     object.Type
	Scope    int
	Index    int
	Value    object.Value
	Name     string
}

// Reg returns a register operand.
func Reg(r Register) Operand {
	return Operand{Kind: RegisterOperand, Register: r}
}

// Var returns a variable operand addressing slot index of the frame at the
// given allocation depth. The name is for disassembly only.
func Var(t object.Type, scope, index int, name string) Operand {
	return Operand{Kind: VariableOperand, Type: t, Scope: scope, Index: index, Name: name}
}

// Lit returns a literal operand. The value is frozen as a constant.
func Lit(v object.Value) Operand {
	switch v := object.Native(v).(type) {
	case *object.Bool:
		return Operand{Kind: LiteralOperand, Type: object.BOOL, Value: object.NewConstantBool(v.Value())}
	case *object.Number:
		return Operand{Kind: LiteralOperand, Type: object.DOUBLE, Value: object.NewConstantNumber(v.Value())}
	case *object.String:
		return Operand{Kind: LiteralOperand, Type: object.STRING, Value: object.NewConstantString(v.Value())}
	default:
		return Null()
	}
}

// Null returns the null literal operand.
func Null() Operand {
	return Operand{Kind: NullOperand, Type: object.NULL}
}

// IsZero returns true for an absent operand.
func (o Operand) IsZero() bool {
	return o.Kind == NoOperand
}

// IsRegister returns true if the operand is a register.
func (o Operand) IsRegister() bool {
	return o.Kind == RegisterOperand
}

// IsLiteral returns true for literal and null operands.
func (o Operand) IsLiteral() bool {
	return o.Kind == LiteralOperand || o.Kind == NullOperand
}

// Equal reports whether both operands have the same tag and identity.
func (o Operand) Equal(p Operand) bool {
	if o.Kind != p.Kind {
		return false
	}
	switch o.Kind {
	case NoOperand, NullOperand:
		return true
	case RegisterOperand:
		return o.Register == p.Register
	case VariableOperand:
		return o.Type == p.Type && o.Scope == p.Scope && o.Index == p.Index
	case LiteralOperand:
		return o.Type == p.Type && o.Value.Equals(p.Value)
	}
	return false
}

func (o Operand) String() string {
	switch o.Kind {
	case RegisterOperand:
		return o.Register.String()
	case VariableOperand:
		if o.Name != "" {
			return fmt.Sprintf("%s(%s@%d:%d)", o.Name, o.Type, o.Scope, o.Index)
		}
		return fmt.Sprintf("%s@%d:%d", o.Type, o.Scope, o.Index)
	case LiteralOperand:
		return o.Value.Inspect()
	case NullOperand:
		return "null"
	default:
		return ""
	}
}
