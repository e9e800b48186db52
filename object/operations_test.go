package object

import (
	"errors"
	"testing"

	"github.com/danielteel/gpdsl-sub000/op"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		code op.Code
		a, b float64
		want float64
	}{
		{op.Add, 1, 2, 3},
		{op.Sub, 1, 2, -1},
		{op.Mul, 3, 4, 12},
		{op.Div, 9, 3, 3},
		{op.Mod, 7, 3, 1},
		{op.Mod, -7, 3, -1},
		{op.Pow, 2, 10, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			result, err := BinaryOp(tt.code, NewNumber(tt.a), NewNumber(tt.b))
			require.Nil(t, err)
			require.Equal(t, tt.want, result.(*Number).Value())
		})
	}
}

func TestDivideByAboutZeroIsNull(t *testing.T) {
	for _, code := range []op.Code{op.Div, op.Mod} {
		for _, divisor := range []float64{0, 1e-8, -5e-8} {
			result, err := BinaryOp(code, NewNumber(1), NewNumber(divisor))
			require.Nil(t, err)
			require.True(t, result.IsNull())
		}
	}
	result, err := BinaryOp(op.Div, NewNumber(1), NewNumber(1e-6))
	require.Nil(t, err)
	require.False(t, result.IsNull())
}

func TestOverflowIsNull(t *testing.T) {
	result, err := BinaryOp(op.Mul, NewNumber(1e308), NewNumber(10))
	require.Nil(t, err)
	require.True(t, result.IsNull())

	result, err = BinaryOp(op.Pow, NewNumber(-1), NewNumber(0.5))
	require.Nil(t, err)
	require.True(t, result.IsNull())
}

func TestNullOperandsRejected(t *testing.T) {
	for _, code := range []op.Code{op.Add, op.Sub, op.Div, op.Mod, op.And, op.Concat} {
		_, err := BinaryOp(code, Nil, NewNumber(1))
		require.True(t, errors.Is(err, ErrNullOperand), code.String())
	}
	_, err := Negate(NullNumber())
	require.ErrorIs(t, err, ErrNullOperand)
	_, err = Not(NullBool())
	require.ErrorIs(t, err, ErrNullOperand)
	_, err = Truthy(Nil)
	require.ErrorIs(t, err, ErrNullOperand)
}

func TestLogicAndConcat(t *testing.T) {
	result, err := BinaryOp(op.And, NewBool(true), NewBool(false))
	require.Nil(t, err)
	require.Equal(t, false, result.Interface())

	result, err = BinaryOp(op.Or, NewBool(true), NewBool(false))
	require.Nil(t, err)
	require.Equal(t, true, result.Interface())

	reg := NewRegister("eax")
	require.Nil(t, reg.Set(NewString("foo")))
	result, err = BinaryOp(op.Concat, reg, NewString("bar"))
	require.Nil(t, err)
	require.Equal(t, "foobar", result.Interface())
}

func TestTypeMismatch(t *testing.T) {
	_, err := BinaryOp(op.Add, NewString("a"), NewNumber(1))
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))

	_, err = Negate(NewBool(true))
	require.True(t, errors.As(err, &typeErr))
}

func TestNegateNotTruthy(t *testing.T) {
	v, err := Negate(NewNumber(2))
	require.Nil(t, err)
	require.Equal(t, -2.0, v.Interface())

	v, err = Not(NewBool(false))
	require.Nil(t, err)
	require.Equal(t, true, v.Interface())

	ok, err := Truthy(NewBool(true))
	require.Nil(t, err)
	require.True(t, ok)
}
