package bytecode

import (
	"testing"

	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/stretchr/testify/require"
)

func TestOperandEquality(t *testing.T) {
	require.True(t, Reg(EAX).Equal(Reg(EAX)))
	require.False(t, Reg(EAX).Equal(Reg(EBX)))

	a := Var(object.DOUBLE, 1, 0, "a")
	require.True(t, a.Equal(Var(object.DOUBLE, 1, 0, "renamed")))
	require.False(t, a.Equal(Var(object.DOUBLE, 2, 0, "a")))
	require.False(t, a.Equal(Var(object.DOUBLE, 1, 1, "a")))
	require.False(t, a.Equal(Reg(EAX)))

	require.True(t, Lit(object.NewNumber(5)).Equal(Lit(object.NewNumber(5))))
	require.False(t, Lit(object.NewNumber(5)).Equal(Lit(object.NewNumber(6))))
	require.False(t, Lit(object.NewNumber(1)).Equal(Lit(object.NewBool(true))))
	require.True(t, Null().Equal(Null()))
	require.True(t, Lit(object.Nil).Equal(Null()))
}

func TestLiteralIsConstant(t *testing.T) {
	lit := Lit(object.NewString("x"))
	require.True(t, lit.Value.IsConstant())
	require.Equal(t, object.STRING, lit.Type)
	require.Equal(t, `"x"`, lit.String())
}

func TestInstructionAccess(t *testing.T) {
	ins := New(op.Add, Reg(EAX), Reg(EBX))
	require.True(t, ins.Reads(Reg(EAX)))
	require.True(t, ins.Reads(Reg(EBX)))
	require.True(t, ins.Writes(Reg(EAX)))
	require.False(t, ins.Writes(Reg(EBX)))
	require.Equal(t, "add eax, ebx", ins.String())

	mov := New(op.Mov, Reg(EAX), Lit(object.NewNumber(2)))
	require.False(t, mov.Reads(Reg(EAX)))
	require.True(t, mov.Writes(Reg(EAX)))
	require.True(t, mov.Uses(Reg(EAX)))
	require.Equal(t, "mov eax, 2", mov.String())

	require.Panics(t, func() { New(op.Mov, Reg(EAX)) })
}

func TestInstructionFormatting(t *testing.T) {
	require.Equal(t, "jmp L3", NewBranch(op.Jmp, 3).String())
	require.Equal(t, "jmp 3", NewBranch(op.Jmp, 3).LinkedString())
	require.Equal(t, "call L1 (fib)", NewCall(1, "fib").String())
	require.Equal(t, "excall 0 (print)", NewExCall(0, "print").String())
	require.Equal(t, "L2:", NewLabel(2).String())
	require.Equal(t, "-4-\tdouble a;", NewDebugLine(4, "double a;").String())
	require.Equal(t, "pushscope 1 3", NewPushScope(1, 3).String())
	require.Equal(t, "popscope 2", NewPopScope(2).String())
	require.Equal(t, "scopedepth 2", NewScopeDepth(2).String())
}

func TestProgramLifecycle(t *testing.T) {
	p := NewProgram()
	require.NotEmpty(t, p.ID())
	require.NotEqual(t, p.ID(), NewProgram().ID())
	require.Equal(t, Building, p.State())

	require.Equal(t, 0, p.NewBranchID())
	require.Equal(t, 1, p.NewBranchID())

	require.Equal(t, 0, p.Append(NewDebugLine(1, "x"), NewLabel(0)))
	require.Equal(t, 2, p.Append(New(op.Push, Reg(EAX))))
	require.Equal(t, 3, p.Len())
	require.Equal(t, 1, p.CodeCount())

	require.Nil(t, p.MarkOptimized())
	require.NotNil(t, p.MarkOptimized())

	p.MarkReady()
	require.Equal(t, Ready, p.State())
	p.MarkReady()
	require.Equal(t, Ready, p.State())
	require.NotNil(t, p.MarkOptimized())
	require.Panics(t, func() { p.Append(New(op.Pop, Reg(EAX))) })
}

func TestProgramEditing(t *testing.T) {
	p := NewProgram()
	p.Append(
		New(op.Push, Reg(EAX)),
		New(op.Mov, Reg(EBX), Reg(ECX)),
		New(op.Pop, Reg(EAX)),
		NewBranch(op.Jmp, 0),
	)
	p.Replace(0, 3, New(op.Mov, Reg(EBX), Reg(ECX)))
	require.Equal(t, 2, p.Len())
	require.Equal(t, op.Mov, p.At(0).Code)
	require.Equal(t, op.Jmp, p.At(1).Code)

	p.Patch(0, New(op.Neg, Reg(EAX)))
	require.Equal(t, op.Neg, p.At(0).Code)
	require.Equal(t, []int{1}, p.Branches())

	p.Remove(0)
	require.Equal(t, 1, p.Len())

	p.Append(NewDebugLine(2, "y"))
	removed := p.Filter(func(ins *Instruction) bool { return ins.Code != op.DebugLine })
	require.Equal(t, 1, removed)
	require.Equal(t, 1, p.Len())
}
