package optimizer

import (
	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/op"
)

// rule rewrites the window of size instructions starting at index i and
// reports whether it changed anything.
type rule struct {
	name  string
	size  int
	apply func(o *optimizer, i int) bool
}

var rules = []rule{
	{"self-move", 1, selfMove},
	{"dead-store", 1, deadStore},
	{"push-pop", 2, pushPop},
	{"push-mov-pop", 3, pushMovPop},
	{"fold-unary", 2, foldUnary},
	{"fold-binop", 3, foldBinop},
	{"propagate", 2, propagate},
	{"fuse-branch", 3, fuseBranch},
}

func isMov(ins *bytecode.Instruction) bool {
	return ins.Code == op.Mov
}

func isBinop(c op.Code) bool {
	switch c {
	case op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Pow, op.And, op.Or, op.Concat:
		return true
	}
	return false
}

// removable reports whether a write to o can be dropped without losing a
// runtime error. Only bindings at depth 0 may be constant.
func removable(o bytecode.Operand) bool {
	return o.IsRegister() || (o.Kind == bytecode.VariableOperand && o.Scope > 0)
}

// mov X, X
func selfMove(o *optimizer, i int) bool {
	ins := o.at(i)
	if !isMov(ins) || !ins.Operands[0].Equal(ins.Operands[1]) || !removable(ins.Operands[0]) {
		return false
	}
	o.replace(i, 1)
	return true
}

// mov R, S where R is never read afterwards.
func deadStore(o *optimizer, i int) bool {
	ins := o.at(i)
	if !isMov(ins) || !ins.Operands[0].IsRegister() {
		return false
	}
	if !o.registerDead(i+1, ins.Operands[0]) {
		return false
	}
	o.replace(i, 1)
	return true
}

// push A; pop D  =>  mov D, A
func pushPop(o *optimizer, i int) bool {
	push, pop := o.at(i), o.at(i+1)
	if push.Code != op.Push || pop.Code != op.Pop {
		return false
	}
	o.replace(i, 2, bytecode.New(op.Mov, pop.Operands[0], push.Operands[0]))
	return true
}

// push A; mov B, C; pop D  =>  mov D, A; mov B, C
//
// D is written before C is read and before B is written, so D must alias
// neither.
func pushMovPop(o *optimizer, i int) bool {
	push, mov, pop := o.at(i), o.at(i+1), o.at(i+2)
	if push.Code != op.Push || !isMov(mov) || pop.Code != op.Pop {
		return false
	}
	a, b, c, d := push.Operands[0], mov.Operands[0], mov.Operands[1], pop.Operands[0]
	if d.Equal(c) || d.Equal(b) {
		return false
	}
	o.replace(i, 3, bytecode.New(op.Mov, d, a), bytecode.New(op.Mov, b, c))
	return true
}

// mov R, lit; neg R  =>  mov R, -lit
// mov R, lit; not R  =>  mov R, !lit
func foldUnary(o *optimizer, i int) bool {
	mov, next := o.at(i), o.at(i+1)
	if !isMov(mov) || !mov.Operands[0].IsRegister() || mov.Operands[1].Kind != bytecode.LiteralOperand {
		return false
	}
	if !next.Operands[0].Equal(mov.Operands[0]) {
		return false
	}
	var folded object.Value
	var err error
	switch next.Code {
	case op.Neg:
		folded, err = object.Negate(mov.Operands[1].Value)
	case op.Not:
		folded, err = object.Not(mov.Operands[1].Value)
	default:
		return false
	}
	if err != nil {
		return false
	}
	o.replace(i, 2, bytecode.New(op.Mov, mov.Operands[0], bytecode.Lit(folded)))
	return true
}

// mov R, A; op R, B; mov A, R  =>  op A, B  when R is dead afterwards.
func foldBinop(o *optimizer, i int) bool {
	load, calc, store := o.at(i), o.at(i+1), o.at(i+2)
	if !isMov(load) || !isBinop(calc.Code) || !isMov(store) {
		return false
	}
	r, a, b := load.Operands[0], load.Operands[1], calc.Operands[1]
	if !r.IsRegister() || a.IsLiteral() || b.Equal(r) {
		return false
	}
	if !calc.Operands[0].Equal(r) || !store.Operands[0].Equal(a) || !store.Operands[1].Equal(r) {
		return false
	}
	if !o.registerDead(i+3, r) {
		return false
	}
	o.replace(i, 3, bytecode.New(calc.Code, a, b))
	return true
}

// mov R, S; I  =>  I with R replaced by S, when I only reads R and R is
// dead after I.
func propagate(o *optimizer, i int) bool {
	mov, next := o.at(i), o.at(i+1)
	if !isMov(mov) || !mov.Operands[0].IsRegister() {
		return false
	}
	r, s := mov.Operands[0], mov.Operands[1]
	if !next.Reads(r) || next.Writes(r) {
		return false
	}
	if !o.registerDead(i+2, r) {
		return false
	}
	rewritten := next.Clone()
	info := next.Info()
	for n := 0; n < info.OperandCount; n++ {
		if info.ReadsOperand(n) && rewritten.Operands[n].Equal(r) {
			rewritten.Operands[n] = s
		}
	}
	o.replace(i, 2, rewritten)
	return true
}

// setX R; test R; jne L  =>  jX L
// se R; test R; je L     =>  jne L
// sne R; test R; je L    =>  je L
//
// Relational sets are not rewritten across je because a comparison
// involving null clears both ordering flags.
func fuseBranch(o *optimizer, i int) bool {
	set, test, jump := o.at(i), o.at(i+1), o.at(i+2)
	if !set.Code.IsSetFlag() || test.Code != op.Test || !set.Operands[0].IsRegister() {
		return false
	}
	r := set.Operands[0]
	if !test.Operands[0].Equal(r) {
		return false
	}
	var code op.Code
	switch {
	case jump.Code == op.Jne:
		code = op.JumpForSet(set.Code)
	case jump.Code == op.Je && set.Code == op.Se:
		code = op.Jne
	case jump.Code == op.Je && set.Code == op.Sne:
		code = op.Je
	default:
		return false
	}
	target, ok := o.label(jump.Branch)
	if !ok {
		return false
	}
	if !o.registerDead(i+3, r) || !o.registerDead(target, r) {
		return false
	}
	if !o.flagsDead(i+3) || !o.flagsDead(target) {
		return false
	}
	o.replace(i, 3, bytecode.NewBranch(code, jump.Branch))
	return true
}
