package function_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/function"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/value"
)

func newCtx(t *testing.T) heap.AllocContext {
	t.Helper()
	h := heap.NewHeap()
	return h.Context(heap.GenHatchery)
}

func TestNativeApplicativeCallsThrough(t *testing.T) {
	ctx := newCtx(t)
	ref, err := function.NewNativeApplicative(ctx, func(ctx heap.AllocContext, args []value.Box) (function.NativeResult, error) {
		sum := int64(0)
		for _, a := range args {
			v, _ := value.Int64(a)
			sum += v
		}
		box, _ := value.FromInt64(sum)
		return function.NativeResult{Value: box}, nil
	})
	require.NoError(t, err)

	require.True(t, function.Is(ctx.Heap(), ref))
	require.False(t, function.IsOperative(ctx.Heap(), ref))

	one, _ := value.FromInt64(1)
	two, _ := value.FromInt64(2)
	res, err := function.CallNative(ctx.Heap(), ctx, ref, []value.Box{one, two})
	require.NoError(t, err)
	require.False(t, res.IsException)
	iv, _ := value.Int64(res.Value)
	require.EqualValues(t, 3, iv)
}

func TestNativeOperativeCarriesOp(t *testing.T) {
	ctx := newCtx(t)
	ref, err := function.NewNativeOperative(ctx, syntax.KindCallExpr)
	require.NoError(t, err)

	require.True(t, function.IsOperative(ctx.Heap(), ref))
	op, ok := function.NativeOp(ctx.Heap(), ref)
	require.True(t, ok)
	require.Equal(t, syntax.KindCallExpr, op)
}

func TestApplicativeCarriesParamsAndClosure(t *testing.T) {
	ctx := newCtx(t)
	paramName := value.FromPointer(heap.NilRef)
	closure := value.FromPointer(heap.NilRef)
	bodyTree := value.FromPointer(heap.NilRef)

	ref, err := function.NewApplicative(ctx, []value.Box{paramName}, bodyTree, 7, closure)
	require.NoError(t, err)

	k, ok := function.KindOf(ctx.Heap(), ref)
	require.True(t, ok)
	require.Equal(t, function.KindApplicative, k)

	params := function.Params(ctx.Heap(), ref)
	require.Len(t, params, 1)

	tree, node, ok := function.Body(ctx.Heap(), ref)
	require.True(t, ok)
	require.Equal(t, 7, node)
	require.Equal(t, bodyTree, tree)
	require.Equal(t, closure, function.Closure(ctx.Heap(), ref))
}
