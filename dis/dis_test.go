package dis

import (
	"strings"
	"testing"

	"github.com/danielteel/gpdsl-sub000/bytecode"
	"github.com/danielteel/gpdsl-sub000/compiler"
	"github.com/danielteel/gpdsl-sub000/internal/lexer"
	"github.com/danielteel/gpdsl-sub000/linker"
	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/danielteel/gpdsl-sub000/optimizer"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source string) *bytecode.Program {
	t.Helper()
	tokens, err := lexer.Tokenize(source)
	require.Nil(t, err)
	program, err := compiler.Compile(tokens)
	require.Nil(t, err)
	return program
}

func TestDisassembleUnlinked(t *testing.T) {
	p := compile(t, "double a = 5;\na = a;")
	expected := strings.Join([]string{
		"; building program: 8 instructions",
		"0\t\tscopedepth 2",
		"1\t\tpushscope 1 1",
		"-1-\tdouble a = 5;",
		"3\t\tdouble a(double@1:0)",
		"4\t\tmov eax, 5",
		"5\t\tmov a(double@1:0), eax",
		"-2-\ta = a;",
		"7\t\tmov eax, a(double@1:0)",
		"8\t\tmov a(double@1:0), eax",
		"9\t\texit null",
		"; 8 instructions",
		"",
	}, "\n")
	require.Equal(t, expected, Disassemble(p))
}

func TestDisassembleLinked(t *testing.T) {
	p := compile(t, "double i = 0;\nwhile (i < 3) i = i + 1;")
	require.Nil(t, linker.Link(p))
	listing := Disassemble(p)
	require.True(t, strings.HasPrefix(listing, "; ready program: "))
	require.NotContains(t, listing, "L0")
	for _, ins := range p.Instructions() {
		if ins.Code == op.Jmp {
			require.Contains(t, listing, ins.LinkedString())
		}
	}
}

func TestDisassembleShowsLabels(t *testing.T) {
	p := compile(t, "if (true) exit 1;")
	require.Contains(t, Disassemble(p), "\t\tL0:")
	require.Contains(t, Disassemble(p), "\t\tje L0")
}

func TestOptimizedListingIsShorter(t *testing.T) {
	plain := compile(t, "double a = 5;\na = a;")
	optimized := compile(t, "double a = 5;\na = a;")
	_, err := optimizer.Optimize(optimized)
	require.Nil(t, err)
	require.Less(t, optimized.CodeCount(), plain.CodeCount())
	require.Less(t,
		strings.Count(Disassemble(optimized), "\n"),
		strings.Count(Disassemble(plain), "\n"))
}

func TestPrintWithColor(t *testing.T) {
	p := compile(t, "exit 1;")
	var buf strings.Builder
	require.Nil(t, Print(p, &buf, true))
	require.Contains(t, buf.String(), "\x1b[")
	require.NotContains(t, Disassemble(p), "\x1b[")
}
