package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{"bool": BOOL, "double": DOUBLE, "string": STRING} {
		got, err := ParseType(name)
		require.Nil(t, err)
		require.Equal(t, want, got)
		require.Equal(t, name, got.String())
	}
	_, err := ParseType("int")
	require.NotNil(t, err)
	_, err = ParseType("")
	require.NotNil(t, err)
}

func TestMatch(t *testing.T) {
	require.True(t, Match(DOUBLE, DOUBLE, true))
	require.True(t, Match(DOUBLE, NULL, false))
	require.True(t, Match(NULL, STRING, false))
	require.False(t, Match(DOUBLE, NULL, true))
	require.False(t, Match(NULL, DOUBLE, true))
	require.False(t, Match(BOOL, STRING, false))
}

func TestTypeNeverChanges(t *testing.T) {
	n := NewNumber(3)
	require.Nil(t, n.Set(Nil))
	require.Equal(t, DOUBLE, n.Type())
	require.True(t, n.IsNull())
	require.Nil(t, n.Set(NewNumber(4)))
	require.Equal(t, 4.0, n.Value())

	err := n.Set(NewString("x"))
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	require.Equal(t, DOUBLE, n.Type())
}

func TestConstantRejectsAssignment(t *testing.T) {
	values := []Value{
		NewConstantBool(true),
		NewConstantNumber(1),
		NewConstantString("a"),
		Nil,
	}
	for _, v := range values {
		err := v.Set(NewNumber(2))
		require.ErrorIs(t, err, ErrConstant, v.Inspect())
		require.True(t, v.IsConstant())
	}
}

func TestCopyIsMutableAndIndependent(t *testing.T) {
	orig := NewConstantString("hi")
	cp := orig.Copy()
	require.False(t, cp.IsConstant())
	require.Nil(t, cp.Set(NewString("bye")))
	require.Equal(t, "hi", orig.Value())
	require.Equal(t, "bye", cp.(*String).Value())
}

func TestNullEquality(t *testing.T) {
	require.True(t, Nil.Equals(NullNumber()))
	require.True(t, NullNumber().Equals(NullString()))
	require.True(t, NullBool().Equals(Nil))
	require.False(t, Nil.Equals(NewNumber(0)))
	require.False(t, NewString("").Equals(Nil))
	require.False(t, Nil.Less(NewNumber(1)))
	require.False(t, Nil.Greater(NewNumber(1)))
	require.False(t, NewNumber(1).Greater(NullNumber()))
}

func TestEquality(t *testing.T) {
	require.True(t, NewNumber(2).Equals(NewNumber(2)))
	require.False(t, NewNumber(2).Equals(NewNumber(3)))
	require.True(t, NewString("a").Equals(NewString("a")))
	require.True(t, NewBool(true).Equals(NewBool(true)))
	require.False(t, NewBool(true).Equals(NewNumber(1)))
	require.True(t, NewNumber(1).Less(NewNumber(2)))
	require.True(t, NewNumber(3).Greater(NewNumber(2)))
	require.False(t, NewString("a").Less(NewString("b")))
}

func TestRegister(t *testing.T) {
	r := NewRegister("eax")
	require.Equal(t, NULL, r.Type())
	require.True(t, r.IsNull())

	src := NewNumber(5)
	require.Nil(t, r.Set(src))
	require.Equal(t, DOUBLE, r.Type())
	require.True(t, r.Equals(NewNumber(5)))
	require.True(t, r.Greater(NewNumber(4)))
	require.True(t, IsNumeric(r))

	// The register holds a copy, not a reference.
	require.Nil(t, src.Set(NewNumber(6)))
	require.True(t, r.Equals(NewNumber(5)))

	require.Nil(t, r.Set(NewString("s")))
	require.Equal(t, STRING, r.Type())
	require.False(t, IsNumeric(r))

	other := NewRegister("ebx")
	require.Nil(t, other.Set(r))
	require.Equal(t, "s", other.Interface())

	cp := r.Copy()
	_, isReg := cp.(*Register)
	require.False(t, isReg)
	require.Equal(t, "eax", r.String())
}

func TestNonFiniteNumberIsNull(t *testing.T) {
	require.True(t, NewNumber(posInf()).IsNull())
}

func TestNewNullOf(t *testing.T) {
	require.Equal(t, BOOL, NewNullOf(BOOL).Type())
	require.Equal(t, DOUBLE, NewNullOf(DOUBLE).Type())
	require.Equal(t, STRING, NewNullOf(STRING).Type())
	require.Equal(t, NULL, NewNullOf(FUNCTION).Type())
	require.True(t, NewNullOf(STRING).IsNull())
}

func TestInspect(t *testing.T) {
	require.Equal(t, "1.5", NewNumber(1.5).Inspect())
	require.Equal(t, `"x"`, NewString("x").Inspect())
	require.Equal(t, "true", NewBool(true).Inspect())
	require.Equal(t, "null", NullString().Inspect())
	require.Nil(t, NullBool().Interface())
}

func posInf() float64 {
	x := 1e308
	return x * 10
}
