package bytecode

import (
	"fmt"
	"strings"

	"github.com/danielteel/gpdsl-sub000/op"
)

// Instruction is one element of a Program.
//
// Branch holds a symbolic branch id while the program is being built, and
// the absolute target index once linked. ExCall stores the binding slot of
// the external function in Branch as well; it is never rewritten.
type Instruction struct {
	Code     op.Code
	Operands [3]Operand
	Branch   int
	Scope    int
	Size     int
	Line     int
	Text     string
	Name     string
}

// New returns an instruction with the given operands. It panics if the
// operand count does not match the opcode, since that is a compiler bug.
func New(code op.Code, operands ...Operand) *Instruction {
	info := op.GetInfo(code)
	if len(operands) != info.OperandCount {
		panic(fmt.Sprintf("bytecode: %s takes %d operands (got %d)",
			info.Name, info.OperandCount, len(operands)))
	}
	ins := &Instruction{Code: code}
	copy(ins.Operands[:], operands)
	return ins
}

// NewBranch returns a jump or call to the given branch id.
func NewBranch(code op.Code, id int) *Instruction {
	return &Instruction{Code: code, Branch: id}
}

// NewCall returns an internal call to the function entry label id.
func NewCall(id int, name string) *Instruction {
	return &Instruction{Code: op.Call, Branch: id, Name: name}
}

// NewExCall returns a call to the external function in binding slot index.
func NewExCall(index int, name string) *Instruction {
	return &Instruction{Code: op.ExCall, Branch: index, Name: name}
}

// NewLabel returns a label pseudo-instruction for branch id.
func NewLabel(id int) *Instruction {
	return &Instruction{Code: op.Label, Branch: id}
}

// NewDebugLine returns a source line marker.
func NewDebugLine(line int, text string) *Instruction {
	return &Instruction{Code: op.DebugLine, Line: line, Text: text}
}

// NewPushScope returns an instruction pushing a frame of size slots at the
// given allocation depth.
func NewPushScope(scope, size int) *Instruction {
	return &Instruction{Code: op.PushScope, Scope: scope, Size: size}
}

// NewPopScope returns an instruction popping the top frame at the given
// allocation depth.
func NewPopScope(scope int) *Instruction {
	return &Instruction{Code: op.PopScope, Scope: scope}
}

// NewScopeDepth returns the instruction telling the VM how many allocation
// depths to prepare.
func NewScopeDepth(depth int) *Instruction {
	return &Instruction{Code: op.ScopeDepth, Size: depth}
}

// Info returns the opcode information for the instruction.
func (i *Instruction) Info() op.Info {
	return op.GetInfo(i.Code)
}

// Operand returns operand n.
func (i *Instruction) Operand(n int) Operand {
	return i.Operands[n]
}

// Clone returns a shallow copy of the instruction.
func (i *Instruction) Clone() *Instruction {
	c := *i
	return &c
}

// Reads returns true if the instruction reads an operand equal to o.
func (i *Instruction) Reads(o Operand) bool {
	info := i.Info()
	for n := 0; n < info.OperandCount; n++ {
		if info.ReadsOperand(n) && i.Operands[n].Equal(o) {
			return true
		}
	}
	return false
}

// Writes returns true if the instruction writes an operand equal to o.
func (i *Instruction) Writes(o Operand) bool {
	info := i.Info()
	for n := 0; n < info.OperandCount; n++ {
		if info.WritesOperand(n) && i.Operands[n].Equal(o) {
			return true
		}
	}
	return false
}

// Uses returns true if any operand of the instruction equals o.
func (i *Instruction) Uses(o Operand) bool {
	info := i.Info()
	for n := 0; n < info.OperandCount; n++ {
		if i.Operands[n].Equal(o) {
			return true
		}
	}
	return false
}

// String renders the instruction as "mnemonic operand, operand". Branch
// targets are rendered as given; unlinked ids are prefixed with "L".
func (i *Instruction) String() string {
	return i.format(false)
}

// LinkedString renders the instruction with branch targets as indices.
func (i *Instruction) LinkedString() string {
	return i.format(true)
}

func (i *Instruction) format(linked bool) string {
	info := i.Info()
	var b strings.Builder
	b.WriteString(info.Name)
	target := fmt.Sprintf("L%d", i.Branch)
	if linked {
		target = fmt.Sprintf("%d", i.Branch)
	}
	switch i.Code {
	case op.Label:
		return fmt.Sprintf("L%d:", i.Branch)
	case op.DebugLine:
		return fmt.Sprintf("-%d-\t%s", i.Line, i.Text)
	case op.Call:
		fmt.Fprintf(&b, " %s", target)
		if i.Name != "" {
			fmt.Fprintf(&b, " (%s)", i.Name)
		}
		return b.String()
	case op.ExCall:
		fmt.Fprintf(&b, " %d (%s)", i.Branch, i.Name)
		return b.String()
	case op.PushScope:
		fmt.Fprintf(&b, " %d %d", i.Scope, i.Size)
		return b.String()
	case op.PopScope:
		fmt.Fprintf(&b, " %d", i.Scope)
		return b.String()
	case op.ScopeDepth:
		fmt.Fprintf(&b, " %d", i.Size)
		return b.String()
	}
	if info.Branch {
		b.WriteString(" ")
		b.WriteString(target)
		return b.String()
	}
	for n := 0; n < info.OperandCount; n++ {
		if n == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(i.Operands[n].String())
	}
	return b.String()
}
