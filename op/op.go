// Package op defines opcodes used by the gpdsl compiler and virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Pseudo-instructions
	Label     Code = 1
	DebugLine Code = 2

	// Execution
	Call   Code = 10
	ExCall Code = 11
	Ret    Code = 12
	Exit   Code = 13

	// Jump
	Jmp Code = 20
	Je  Code = 21
	Jne Code = 22
	Ja  Code = 23
	Jae Code = 24
	Jb  Code = 25
	Jbe Code = 26

	// Flags
	Cmp  Code = 30
	Test Code = 31

	// Set operand from flags
	Se  Code = 40
	Sne Code = 41
	Sa  Code = 42
	Sae Code = 43
	Sb  Code = 44
	Sbe Code = 45

	// Data movement
	Mov  Code = 50
	Push Code = 51
	Pop  Code = 52

	// Arithmetic
	Add Code = 60
	Sub Code = 61
	Mul Code = 62
	Div Code = 63
	Mod Code = 64
	Pow Code = 65
	Neg Code = 66

	// Logic
	And Code = 70
	Or  Code = 71
	Not Code = 72

	// Strings
	Concat Code = 80

	// Storage
	PushScope   Code = 90
	PopScope    Code = 91
	ScopeDepth  Code = 92
	AllocBool   Code = 93
	AllocDouble Code = 94
	AllocString Code = 95
)

// Operand access flags. Bit i of Info.Reads (Info.Writes) is set when the
// instruction reads (writes) its i-th operand.
const (
	Operand0 uint8 = 1 << iota
	Operand1
	Operand2
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Reads        uint8
	Writes       uint8
	Branch       bool
	Pseudo       bool
}

// ReadsOperand returns true if the opcode reads operand i.
func (i Info) ReadsOperand(n int) bool {
	return i.Reads&(1<<uint(n)) != 0
}

// WritesOperand returns true if the opcode writes operand i.
func (i Info) WritesOperand(n int) bool {
	return i.Writes&(1<<uint(n)) != 0
}

var infos = make([]Info, 128)

func init() {
	type opInfo struct {
		op     Code
		name   string
		count  int
		reads  uint8
		writes uint8
	}
	ops := []opInfo{
		{Label, "label", 0, 0, 0},
		{DebugLine, "debug", 0, 0, 0},
		{Call, "call", 0, 0, 0},
		{ExCall, "excall", 0, 0, 0},
		{Ret, "ret", 0, 0, 0},
		{Exit, "exit", 1, Operand0, 0},
		{Jmp, "jmp", 0, 0, 0},
		{Je, "je", 0, 0, 0},
		{Jne, "jne", 0, 0, 0},
		{Ja, "ja", 0, 0, 0},
		{Jae, "jae", 0, 0, 0},
		{Jb, "jb", 0, 0, 0},
		{Jbe, "jbe", 0, 0, 0},
		{Cmp, "cmp", 2, Operand0 | Operand1, 0},
		{Test, "test", 1, Operand0, 0},
		{Se, "se", 1, 0, Operand0},
		{Sne, "sne", 1, 0, Operand0},
		{Sa, "sa", 1, 0, Operand0},
		{Sae, "sae", 1, 0, Operand0},
		{Sb, "sb", 1, 0, Operand0},
		{Sbe, "sbe", 1, 0, Operand0},
		{Mov, "mov", 2, Operand1, Operand0},
		{Push, "push", 1, Operand0, 0},
		{Pop, "pop", 1, 0, Operand0},
		{Add, "add", 2, Operand0 | Operand1, Operand0},
		{Sub, "sub", 2, Operand0 | Operand1, Operand0},
		{Mul, "mul", 2, Operand0 | Operand1, Operand0},
		{Div, "div", 2, Operand0 | Operand1, Operand0},
		{Mod, "mod", 2, Operand0 | Operand1, Operand0},
		{Pow, "pow", 2, Operand0 | Operand1, Operand0},
		{Neg, "neg", 1, Operand0, Operand0},
		{And, "and", 2, Operand0 | Operand1, Operand0},
		{Or, "or", 2, Operand0 | Operand1, Operand0},
		{Not, "not", 1, Operand0, Operand0},
		{Concat, "concat", 2, Operand0 | Operand1, Operand0},
		{PushScope, "pushscope", 0, 0, 0},
		{PopScope, "popscope", 0, 0, 0},
		{ScopeDepth, "scopedepth", 0, 0, 0},
		{AllocBool, "bool", 1, 0, Operand0},
		{AllocDouble, "double", 1, 0, Operand0},
		{AllocString, "string", 1, 0, Operand0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandCount: o.count,
			Reads:        o.reads,
			Writes:       o.writes,
		}
	}
	for _, c := range []Code{Jmp, Je, Jne, Ja, Jae, Jb, Jbe, Call} {
		infos[c].Branch = true
	}
	infos[Label].Pseudo = true
	infos[DebugLine].Pseudo = true
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{}
	}
	return infos[op]
}

// String returns the mnemonic of the opcode.
func (c Code) String() string {
	if name := GetInfo(c).Name; name != "" {
		return name
	}
	return "invalid"
}

// IsConditionalJump returns true for the six flag-driven jumps.
func (c Code) IsConditionalJump() bool {
	switch c {
	case Je, Jne, Ja, Jae, Jb, Jbe:
		return true
	}
	return false
}

// IsSetFlag returns true for the six flag-to-operand instructions.
func (c Code) IsSetFlag() bool {
	switch c {
	case Se, Sne, Sa, Sae, Sb, Sbe:
		return true
	}
	return false
}

// JumpForSet returns the conditional jump that is taken exactly when the
// given set-flag instruction would store true.
func JumpForSet(c Code) Code {
	switch c {
	case Se:
		return Je
	case Sne:
		return Jne
	case Sa:
		return Ja
	case Sae:
		return Jae
	case Sb:
		return Jb
	case Sbe:
		return Jbe
	}
	return Invalid
}
