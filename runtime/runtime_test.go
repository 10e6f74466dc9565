package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/arith"
	"github.com/wisplang/wisp/frame"
	"github.com/wisplang/wisp/runtime"
	"github.com/wisplang/wisp/syntax/packtest"
	"github.com/wisplang/wisp/value"
)

func newThreadContext(t *testing.T) *runtime.ThreadContext {
	t.Helper()
	tc, err := runtime.New().NewThreadContext()
	require.NoError(t, err)
	return tc
}

func TestOnePlusTwo(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	call := b.Call(b.Identifier("+"), b.Integer(1), b.Integer(2))
	b.File(call)
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultValue, res.Kind)
	iv, ok := value.Int64(res.Value)
	require.True(t, ok)
	require.EqualValues(t, 3, iv)
	require.Equal(t, "3", tc.FormatResult(res, 256))
}

func TestTenDividedByFourPromotesToFloat(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	call := b.Call(b.Identifier("/"), b.Integer(10), b.Integer(4))
	b.File(call)
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultValue, res.Kind)
	ref, ok := value.Pointer(res.Value)
	require.True(t, ok)
	f, err := arith.ReadDouble(tc.Heap(), ref)
	require.NoError(t, err)
	require.InDelta(t, 2.5, f, 1e-9)
}

func TestVarBindingThenUse(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	varStmt := b.Var(packtest.Binding{Name: "x", Value: b.Integer(2)})
	xPlusX := b.Call(b.Identifier("+"), b.Identifier("x"), b.Identifier("x"))
	b.File(varStmt, xPlusX)
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultValue, res.Kind)
	iv, ok := value.Int64(res.Value)
	require.True(t, ok)
	require.EqualValues(t, 4, iv)
}

func TestUnboundCallRaisesNameLookupFailed(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	b.File(b.Call(b.Identifier("f")))
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultException, res.Kind)
	require.Contains(t, tc.FormatResult(res, 256), "f")
	require.Contains(t, tc.FormatResult(res, 256), "name lookup failed")
}

func TestAddNonNumericRaisesException(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	b.File(b.Call(b.Identifier("+"), b.Integer(1), b.Boolean(true)))
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultException, res.Kind)
}

func TestWrongArityRaisesException(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	b.File(b.Call(b.Identifier("+"), b.Integer(1)))
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultException, res.Kind)
}

func TestNegUnaryOperator(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	b.File(b.Call(b.Identifier("neg"), b.Integer(5)))
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultValue, res.Kind)
	iv, ok := value.Int64(res.Value)
	require.True(t, ok)
	require.EqualValues(t, -5, iv)
}

func TestTwoThreadContextsDoNotShareHeaps(t *testing.T) {
	r := runtime.New()
	a, err := r.NewThreadContext()
	require.NoError(t, err)
	b, err := r.NewThreadContext()
	require.NoError(t, err)
	require.NotSame(t, a.Heap(), b.Heap())
}

func TestEmptyFileYieldsVoid(t *testing.T) {
	tc := newThreadContext(t)

	b := packtest.NewBuilder()
	b.File()
	tree := b.Build()

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultVoid, res.Kind)
	require.Equal(t, "<void>", tc.FormatResult(res, 256))
}
