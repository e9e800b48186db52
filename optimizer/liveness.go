package optimizer

import (
	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/op"
)

type effect uint8

const (
	pass effect = iota
	read
	killed
)

// access classifies how one instruction touches the tracked value.
type access func(*bytecode.Instruction) effect

// registerAccess tracks a register. A call clobbers every register; a ret
// is treated as reading all of them since the caller is unknown here.
func registerAccess(r bytecode.Operand) access {
	return func(ins *bytecode.Instruction) effect {
		switch ins.Code {
		case op.Call:
			return killed
		case op.Ret:
			return read
		case op.ExCall:
			if r.Equal(bytecode.Reg(bytecode.EAX)) {
				return killed
			}
			return pass
		}
		if ins.Reads(r) {
			return read
		}
		if ins.Writes(r) {
			return killed
		}
		return pass
	}
}

// flagAccess tracks the comparison flags.
func flagAccess(ins *bytecode.Instruction) effect {
	switch {
	case ins.Code == op.Cmp, ins.Code == op.Test, ins.Code == op.Call:
		return killed
	case ins.Code == op.Ret:
		return read
	case ins.Code.IsConditionalJump(), ins.Code.IsSetFlag():
		return read
	}
	return pass
}

// live reports whether the tracked value may be read on some path starting
// at instruction index from before being overwritten.
func (o *optimizer) live(from int, a access) bool {
	return o.reaches(from, a, map[int]bool{})
}

func (o *optimizer) reaches(pc int, a access, visited map[int]bool) bool {
	for ; pc < o.program.Len(); pc++ {
		if visited[pc] {
			return false
		}
		visited[pc] = true
		ins := o.at(pc)
		switch a(ins) {
		case read:
			return true
		case killed:
			return false
		}
		switch {
		case ins.Code == op.Exit:
			return false
		case ins.Code == op.Jmp:
			target, ok := o.label(ins.Branch)
			if !ok {
				return true
			}
			pc = target - 1
		case ins.Code.IsConditionalJump():
			target, ok := o.label(ins.Branch)
			if !ok || o.reaches(target, a, visited) {
				return true
			}
		}
	}
	return false
}

// registerDead reports whether register r is dead at index from.
func (o *optimizer) registerDead(from int, r bytecode.Operand) bool {
	return !o.live(from, registerAccess(r))
}

// flagsDead reports whether the flags are dead at index from.
func (o *optimizer) flagsDead(from int) bool {
	return !o.live(from, flagAccess)
}
