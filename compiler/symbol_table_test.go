package compiler

import (
	"testing"

	"github.com/danielteel/gpdsl-sub000/object"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	table := NewSymbolTable()
	require.Nil(t, table.Parent())
	require.Equal(t, 0, table.Count())
	require.Equal(t, 0, table.Depth())

	a, err := table.InsertVariable("a", object.DOUBLE)
	require.Nil(t, err)
	require.Equal(t, 0, a.Index())
	require.Equal(t, "a", a.Name())
	require.True(t, a.IsExternal())

	f, err := table.InsertExternalFunction("print", []object.Type{object.STRING}, object.NULL)
	require.Nil(t, err)
	require.Equal(t, 1, f.Index())
	require.True(t, f.IsFunction())

	require.Equal(t, 2, table.Count())
	require.True(t, table.IsDefined("a"))
	require.False(t, table.IsDefined("b"))

	_, err = table.InsertVariable("a", object.STRING)
	require.NotNil(t, err)
	require.Equal(t, 2, table.Count())
}

func TestBlockSharesFrame(t *testing.T) {
	table := NewSymbolTable().NewChild()
	_, err := table.InsertVariable("a", object.DOUBLE)
	require.Nil(t, err)

	block := table.NewBlock()
	require.Equal(t, table.Depth(), block.Depth())
	b, err := block.InsertVariable("a", object.STRING)
	require.Nil(t, err, "shadowing in a nested block is allowed")
	require.Equal(t, 1, b.Index())
	require.Equal(t, 2, table.Count())
	require.Equal(t, 2, block.Count())

	sym, ok := block.Resolve("a")
	require.True(t, ok)
	require.Equal(t, object.STRING, sym.Type())

	sym, ok = table.Resolve("a")
	require.True(t, ok)
	require.Equal(t, object.DOUBLE, sym.Type())
}

func TestChildStartsNewFrame(t *testing.T) {
	root := NewSymbolTable()
	top := root.NewChild()
	require.Equal(t, 1, top.Depth())
	_, err := top.InsertVariable("x", object.BOOL)
	require.Nil(t, err)

	fn, err := top.InsertFunction("f", 7, []object.Type{object.DOUBLE}, object.DOUBLE)
	require.Nil(t, err)
	require.Equal(t, -1, fn.Index())
	require.Equal(t, 7, fn.BranchID())
	require.Equal(t, 1, top.Count(), "functions take no slot")

	body := top.NewChild()
	require.Equal(t, 2, body.Depth())
	y, err := body.InsertVariable("y", object.DOUBLE)
	require.Nil(t, err)
	require.Equal(t, 0, y.Index())
	require.Equal(t, 2, y.Depth())

	inner := body.NewBlock().NewChild()
	require.Equal(t, 3, inner.Depth())
	require.Equal(t, 3, root.MaxDepth())

	_, ok := inner.Resolve("x")
	require.True(t, ok)
	_, ok = top.Resolve("y")
	require.False(t, ok)
}

func TestExternalFunctionRequiresRoot(t *testing.T) {
	_, err := NewSymbolTable().NewChild().InsertExternalFunction("f", nil, object.NULL)
	require.NotNil(t, err)
}

func TestInsertVariableRejectsNonScalar(t *testing.T) {
	_, err := NewSymbolTable().InsertVariable("f", object.FUNCTION)
	require.NotNil(t, err)
}

func TestAllNames(t *testing.T) {
	root := NewSymbolTable()
	root.InsertVariable("zeta", object.DOUBLE)
	child := root.NewChild()
	child.InsertVariable("alpha", object.DOUBLE)
	child.InsertVariable("zeta", object.STRING)
	require.Equal(t, []string{"alpha", "zeta"}, child.AllNames())
}

func TestReserveHidesNameUntilDefined(t *testing.T) {
	root := NewSymbolTable()
	outer, err := root.InsertVariable("x", object.DOUBLE)
	require.Nil(t, err)
	block := root.NewBlock()

	inner, err := block.ReserveVariable("x", object.DOUBLE)
	require.Nil(t, err)
	require.Equal(t, 1, inner.Index())
	resolved, ok := block.Resolve("x")
	require.True(t, ok)
	require.Equal(t, outer, resolved)

	require.Nil(t, block.Define(inner))
	resolved, ok = block.Resolve("x")
	require.True(t, ok)
	require.Equal(t, inner, resolved)

	_, err = block.ReserveVariable("x", object.DOUBLE)
	require.NotNil(t, err)
}
