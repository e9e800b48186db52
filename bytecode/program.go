package bytecode

import (
	"fmt"

	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/gofrs/uuid"
)

// State is the lifecycle state of a Program.
type State uint8

const (
	Building State = iota
	Optimized
	Ready
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Optimized:
		return "optimized"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Program is an ordered, mutable list of instructions.
type Program struct {
	id           string
	instructions []*Instruction
	state        State
	nextBranch   int
}

// NewProgram returns an empty program in the Building state.
func NewProgram() *Program {
	return &Program{
		id:    uuid.Must(uuid.NewV4()).String(),
		state: Building,
	}
}

// ID returns the unique identifier of this program.
func (p *Program) ID() string {
	return p.id
}

// State returns the current lifecycle state.
func (p *Program) State() State {
	return p.state
}

// NewBranchID returns a branch id never returned before by this program.
func (p *Program) NewBranchID() int {
	id := p.nextBranch
	p.nextBranch++
	return id
}

// Len returns the number of instructions, pseudo-instructions included.
func (p *Program) Len() int {
	return len(p.instructions)
}

// At returns the instruction at index i.
func (p *Program) At(i int) *Instruction {
	return p.instructions[i]
}

// Instructions returns a copy of the instruction list.
func (p *Program) Instructions() []*Instruction {
	out := make([]*Instruction, len(p.instructions))
	copy(out, p.instructions)
	return out
}

// CodeCount returns the number of instructions that are not labels or
// debug markers.
func (p *Program) CodeCount() int {
	count := 0
	for _, ins := range p.instructions {
		if !ins.Info().Pseudo {
			count++
		}
	}
	return count
}

func (p *Program) mustBeMutable() {
	if p.state == Ready {
		panic("bytecode: program is linked and can no longer be modified")
	}
}

// Append adds instructions to the end of the program and returns the index
// of the first one.
func (p *Program) Append(ins ...*Instruction) int {
	p.mustBeMutable()
	idx := len(p.instructions)
	p.instructions = append(p.instructions, ins...)
	return idx
}

// Patch replaces the instruction at index i.
func (p *Program) Patch(i int, ins *Instruction) {
	p.mustBeMutable()
	p.instructions[i] = ins
}

// Replace swaps the n instructions starting at index i for the given ones.
func (p *Program) Replace(i, n int, with ...*Instruction) {
	p.mustBeMutable()
	tail := append([]*Instruction{}, p.instructions[i+n:]...)
	p.instructions = append(append(p.instructions[:i], with...), tail...)
}

// Remove deletes the instruction at index i.
func (p *Program) Remove(i int) {
	p.Replace(i, 1)
}

// Filter keeps only the instructions for which keep returns true.
func (p *Program) Filter(keep func(*Instruction) bool) int {
	p.mustBeMutable()
	kept := p.instructions[:0]
	removed := 0
	for _, ins := range p.instructions {
		if keep(ins) {
			kept = append(kept, ins)
		} else {
			removed++
		}
	}
	for i := len(kept); i < len(p.instructions); i++ {
		p.instructions[i] = nil
	}
	p.instructions = kept
	return removed
}

// MarkOptimized moves a Building program to Optimized.
func (p *Program) MarkOptimized() error {
	if p.state != Building {
		return fmt.Errorf("cannot optimize a program in state %s", p.state)
	}
	p.state = Optimized
	return nil
}

// MarkReady moves the program to Ready. It is a no-op on a Ready program.
func (p *Program) MarkReady() {
	p.state = Ready
}

// Branches returns the indices of every instruction carrying a branch id
// that the linker must rewrite.
func (p *Program) Branches() []int {
	var out []int
	for i, ins := range p.instructions {
		if ins.Info().Branch {
			out = append(out, i)
		}
	}
	return out
}

// IsBranch reports whether code carries a rewritable branch id.
func IsBranch(code op.Code) bool {
	return op.GetInfo(code).Branch
}
