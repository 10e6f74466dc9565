package arith_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/arith"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/value"
)

func newCtx(t *testing.T) heap.AllocContext {
	t.Helper()
	h := heap.NewHeap()
	return h.Context(heap.GenHatchery)
}

func intBox(t *testing.T, v int64) value.Box {
	t.Helper()
	b, ok := value.FromInt64(v)
	require.True(t, ok)
	return b
}

func TestAddWithinInt32StaysInteger(t *testing.T) {
	ctx := newCtx(t)
	r, err := arith.Add(ctx, intBox(t, 1), intBox(t, 2))
	require.NoError(t, err)
	iv, ok := value.Int64(r)
	require.True(t, ok)
	require.EqualValues(t, 3, iv)
}

func TestAddOverflowPromotesToFloat(t *testing.T) {
	ctx := newCtx(t)
	r, err := arith.Add(ctx, intBox(t, math.MaxInt32), intBox(t, 1))
	require.NoError(t, err)
	require.Equal(t, value.KindPointer, value.Classify(r))
	ref, _ := value.Pointer(r)
	f, err := arith.ReadDouble(ctx.Heap(), ref)
	require.NoError(t, err)
	require.Equal(t, float64(2147483648.0), f)
}

func TestSubUnderflowPromotesToFloat(t *testing.T) {
	ctx := newCtx(t)
	r, err := arith.Sub(ctx, intBox(t, math.MinInt32), intBox(t, 1))
	require.NoError(t, err)
	ref, _ := value.Pointer(r)
	f, err := arith.ReadDouble(ctx.Heap(), ref)
	require.NoError(t, err)
	require.Equal(t, float64(-2147483649.0), f)
}

func TestDivExactStaysInteger(t *testing.T) {
	ctx := newCtx(t)
	r, err := arith.Div(ctx, intBox(t, 8), intBox(t, 4))
	require.NoError(t, err)
	iv, ok := value.Int64(r)
	require.True(t, ok)
	require.EqualValues(t, 2, iv)
}

func TestDivInexactPromotes(t *testing.T) {
	ctx := newCtx(t)
	r, err := arith.Div(ctx, intBox(t, 10), intBox(t, 4))
	require.NoError(t, err)
	ref, _ := value.Pointer(r)
	f, err := arith.ReadDouble(ctx.Heap(), ref)
	require.NoError(t, err)
	require.Equal(t, 2.5, f)
}

func TestDivByZeroSigns(t *testing.T) {
	ctx := newCtx(t)

	pos, err := arith.Div(ctx, intBox(t, 1), intBox(t, 0))
	require.NoError(t, err)
	ref, _ := value.Pointer(pos)
	f, _ := arith.ReadDouble(ctx.Heap(), ref)
	require.True(t, math.IsInf(f, 1))

	neg, err := arith.Div(ctx, intBox(t, -1), intBox(t, 0))
	require.NoError(t, err)
	ref, _ = value.Pointer(neg)
	f, _ = arith.ReadDouble(ctx.Heap(), ref)
	require.True(t, math.IsInf(f, -1))

	zero, err := arith.Div(ctx, intBox(t, 0), intBox(t, 0))
	require.NoError(t, err)
	ref, _ = value.Pointer(zero)
	f, _ = arith.ReadDouble(ctx.Heap(), ref)
	require.True(t, math.IsNaN(f))
}

func TestAddRejectsNonNumeric(t *testing.T) {
	ctx := newCtx(t)
	_, err := arith.Add(ctx, intBox(t, 1), value.FromBool(true))
	require.ErrorIs(t, err, arith.ErrNotNumeric)
}

func TestNegPromotesOnIntMin(t *testing.T) {
	ctx := newCtx(t)
	r, err := arith.Neg(ctx, intBox(t, math.MinInt32))
	require.NoError(t, err)
	require.Equal(t, value.KindPointer, value.Classify(r))
}
