package optimizer

import (
	"testing"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/compiler"
	"github.com/danielteel/gpdsl-sub000/internal/lexer"
	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/stretchr/testify/require"
)

var (
	eax = bytecode.Reg(bytecode.EAX)
	ebx = bytecode.Reg(bytecode.EBX)
	a   = bytecode.Var(object.DOUBLE, 1, 0, "a")
	b   = bytecode.Var(object.DOUBLE, 1, 1, "b")
)

func num(f float64) bytecode.Operand {
	return bytecode.Lit(object.NewNumber(f))
}

func optimizeSource(t *testing.T, source string, opts ...compiler.Option) (*bytecode.Program, Stats) {
	t.Helper()
	tokens, err := lexer.Tokenize(source)
	require.Nil(t, err)
	program, err := compiler.Compile(tokens, opts...)
	require.Nil(t, err)
	stats, err := Optimize(program)
	require.Nil(t, err)
	return program, stats
}

func listing(p *bytecode.Program) []string {
	var out []string
	for _, ins := range p.Instructions() {
		out = append(out, ins.String())
	}
	return out
}

func TestBinaryExpressionCollapses(t *testing.T) {
	p, stats := optimizeSource(t, "exit 1 + 2;")
	require.Equal(t, []string{
		"scopedepth 2",
		"mov eax, 1",
		"add eax, 2",
		"exit eax",
		"exit null",
	}, listing(p))
	require.Equal(t, 9, stats.Before)
	require.Equal(t, 5, stats.After)
	require.Equal(t, bytecode.Optimized, p.State())
}

func TestSelfAssignmentShrinks(t *testing.T) {
	p, stats := optimizeSource(t, "double a = 5;\na = a;")
	require.Equal(t, []string{
		"scopedepth 2",
		"pushscope 1 1",
		"double a(double@1:0)",
		"mov a(double@1:0), 5",
		"exit null",
	}, listing(p))
	require.Less(t, stats.After, stats.Before)
	require.Equal(t, 1, stats.Rewrites["self-move"])
}

func TestSelfAssignmentOfBindingKept(t *testing.T) {
	p, _ := optimizeSource(t, "a = a;",
		compiler.WithBindings(compiler.Binding{Name: "a", Type: object.DOUBLE}))
	require.Contains(t, listing(p), "mov a(double@0:0), a(double@0:0)")
}

func TestReadModifyWriteFolds(t *testing.T) {
	p, stats := optimizeSource(t, "double a = 1;\na = a + 1;")
	require.Equal(t, []string{
		"scopedepth 2",
		"pushscope 1 1",
		"double a(double@1:0)",
		"mov a(double@1:0), 1",
		"add a(double@1:0), 1",
		"exit null",
	}, listing(p))
	require.Equal(t, 1, stats.Rewrites["fold-binop"])
}

func TestDebugLinesStripped(t *testing.T) {
	p, _ := optimizeSource(t, "double a;\na = 1;\n")
	for _, ins := range p.Instructions() {
		require.NotEqual(t, op.DebugLine, ins.Code)
	}
}

func TestNegativeLiteralFolds(t *testing.T) {
	p, _ := optimizeSource(t, "exit -5;")
	require.Equal(t, []string{"scopedepth 2", "exit -5", "exit null"}, listing(p))
}

func TestNegatedNullNotFolded(t *testing.T) {
	p := bytecode.NewProgram()
	p.Append(
		bytecode.New(op.Mov, eax, bytecode.Null()),
		bytecode.New(op.Neg, eax),
		bytecode.New(op.Exit, eax),
	)
	_, err := Optimize(p)
	require.Nil(t, err)
	require.Contains(t, listing(p), "neg eax")
}

func TestPushMovPopAliasing(t *testing.T) {
	p := bytecode.NewProgram()
	p.Append(
		bytecode.New(op.Mov, eax, num(1)),
		bytecode.New(op.Push, eax),
		bytecode.New(op.Mov, eax, num(2)),
		bytecode.New(op.Pop, eax),
		bytecode.New(op.Exit, eax),
	)
	_, err := Optimize(p)
	require.Nil(t, err)
	require.Equal(t, []string{"exit 1"}, listing(p))
}

func TestPushMovPopKeepsOrder(t *testing.T) {
	// The pop target is read by the middle move, so the window must stay.
	p := bytecode.NewProgram()
	p.Append(
		bytecode.New(op.Push, a),
		bytecode.New(op.Mov, b, eax),
		bytecode.New(op.Pop, eax),
		bytecode.New(op.Exit, eax),
	)
	_, err := Optimize(p)
	require.Nil(t, err)
	require.Equal(t, []string{
		"push a(double@1:0)",
		"mov b(double@1:1), eax",
		"pop eax",
		"exit eax",
	}, listing(p))
}

func equalityBranch(p *bytecode.Program, set op.Code, jump op.Code, exitTarget bytecode.Operand) {
	l := p.NewBranchID()
	p.Append(
		bytecode.New(op.Cmp, a, b),
		bytecode.New(set, eax),
		bytecode.New(op.Test, eax),
		bytecode.NewBranch(jump, l),
		bytecode.New(op.Mov, eax, num(1)),
		bytecode.New(op.Exit, eax),
		bytecode.NewLabel(l),
		bytecode.New(op.Exit, exitTarget),
	)
}

func TestFuseEqualityBranch(t *testing.T) {
	p := bytecode.NewProgram()
	equalityBranch(p, op.Se, op.Je, bytecode.Null())
	stats, err := Optimize(p)
	require.Nil(t, err)
	require.Equal(t, []string{
		"cmp a(double@1:0), b(double@1:1)",
		"jne L0",
		"exit 1",
		"L0:",
		"exit null",
	}, listing(p))
	require.Equal(t, 1, stats.Rewrites["fuse-branch"])
}

func TestFuseInequalityBranch(t *testing.T) {
	p := bytecode.NewProgram()
	equalityBranch(p, op.Sne, op.Je, bytecode.Null())
	_, err := Optimize(p)
	require.Nil(t, err)
	require.Contains(t, listing(p), "je L0")
	require.NotContains(t, listing(p), "test eax")
}

func TestRelationalBranchNotInverted(t *testing.T) {
	p := bytecode.NewProgram()
	equalityBranch(p, op.Sb, op.Je, bytecode.Null())
	_, err := Optimize(p)
	require.Nil(t, err)
	l := listing(p)
	require.Contains(t, l, "sb eax")
	require.Contains(t, l, "je L0")
}

func TestRelationalBranchFusedOnJne(t *testing.T) {
	p := bytecode.NewProgram()
	equalityBranch(p, op.Sb, op.Jne, bytecode.Null())
	_, err := Optimize(p)
	require.Nil(t, err)
	require.Contains(t, listing(p), "jb L0")
}

func TestFusionBlockedByLiveRegister(t *testing.T) {
	p := bytecode.NewProgram()
	equalityBranch(p, op.Se, op.Je, eax)
	_, err := Optimize(p)
	require.Nil(t, err)
	require.Contains(t, listing(p), "se eax")
}

func TestLoopLiveness(t *testing.T) {
	// ebx is read at the loop head on the back edge.
	p := bytecode.NewProgram()
	top := p.NewBranchID()
	p.Append(
		bytecode.NewLabel(top),
		bytecode.New(op.Add, eax, ebx),
		bytecode.New(op.Mov, ebx, num(2)),
		bytecode.New(op.Cmp, eax, num(10)),
		bytecode.NewBranch(op.Jb, top),
		bytecode.New(op.Exit, eax),
	)
	_, err := Optimize(p)
	require.Nil(t, err)
	require.Contains(t, listing(p), "mov ebx, 2")
}

func TestCallClobbersRegisters(t *testing.T) {
	p := bytecode.NewProgram()
	f := p.NewBranchID()
	p.Append(
		bytecode.New(op.Mov, ebx, num(3)),
		bytecode.NewCall(f, "f"),
		bytecode.New(op.Exit, eax),
		bytecode.NewLabel(f),
		bytecode.New(op.Mov, eax, num(1)),
		bytecode.New(op.Ret),
	)
	_, err := Optimize(p)
	require.Nil(t, err)
	require.NotContains(t, listing(p), "mov ebx, 3")
	require.Contains(t, listing(p), "mov eax, 1")
}

func TestOptimizeRequiresBuilding(t *testing.T) {
	p := bytecode.NewProgram()
	p.Append(bytecode.New(op.Exit, bytecode.Null()))
	_, err := Optimize(p)
	require.Nil(t, err)
	_, err = Optimize(p)
	require.NotNil(t, err)
}

func TestMaxPasses(t *testing.T) {
	tokens, err := lexer.Tokenize("exit 1 + 2;")
	require.Nil(t, err)
	p, err := compiler.Compile(tokens)
	require.Nil(t, err)
	stats, err := Optimize(p, WithMaxPasses(1))
	require.Nil(t, err)
	require.Equal(t, 1, stats.Passes)
	require.Greater(t, stats.After, 4)
}
