package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(Mov)
	require.Equal(t, "mov", info.Name)
	require.Equal(t, 2, info.OperandCount)
	require.Equal(t, Mov, info.Code)
	require.True(t, info.WritesOperand(0))
	require.False(t, info.ReadsOperand(0))
	require.True(t, info.ReadsOperand(1))
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
	}{
		{Label, "label", 0},
		{DebugLine, "debug", 0},
		{Call, "call", 0},
		{ExCall, "excall", 0},
		{Ret, "ret", 0},
		{Exit, "exit", 1},
		{Jmp, "jmp", 0},
		{Je, "je", 0},
		{Jbe, "jbe", 0},
		{Cmp, "cmp", 2},
		{Test, "test", 1},
		{Sa, "sa", 1},
		{Push, "push", 1},
		{Pop, "pop", 1},
		{Add, "add", 2},
		{Neg, "neg", 1},
		{Concat, "concat", 2},
		{PushScope, "pushscope", 0},
		{AllocDouble, "double", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.OperandCount)
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestBranchAndPseudoFlags(t *testing.T) {
	for _, c := range []Code{Jmp, Je, Jne, Ja, Jae, Jb, Jbe, Call} {
		require.True(t, GetInfo(c).Branch, c.String())
	}
	require.False(t, GetInfo(ExCall).Branch)
	require.True(t, GetInfo(Label).Pseudo)
	require.True(t, GetInfo(DebugLine).Pseudo)
	require.False(t, GetInfo(Mov).Pseudo)
}

func TestJumpForSet(t *testing.T) {
	require.Equal(t, Je, JumpForSet(Se))
	require.Equal(t, Jne, JumpForSet(Sne))
	require.Equal(t, Ja, JumpForSet(Sa))
	require.Equal(t, Jae, JumpForSet(Sae))
	require.Equal(t, Jb, JumpForSet(Sb))
	require.Equal(t, Jbe, JumpForSet(Sbe))
	require.Equal(t, Invalid, JumpForSet(Mov))
}

func TestInvalidOpcode(t *testing.T) {
	require.Equal(t, "invalid", Code(999).String())
	require.Equal(t, "invalid", Invalid.String())
}
