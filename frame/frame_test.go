package frame_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/arith"
	"github.com/wisplang/wisp/except"
	"github.com/wisplang/wisp/frame"
	"github.com/wisplang/wisp/function"
	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/object"
	"github.com/wisplang/wisp/propdict"
	"github.com/wisplang/wisp/strtab"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/syntax/packtest"
	"github.com/wisplang/wisp/value"
)

func newEnv(t *testing.T) frame.Env {
	t.Helper()
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)
	return frame.Env{Ctx: ctx, Strings: strtab.NewTable(h)}
}

// arithApplicative wraps an arith binary op as a native applicative
// function, turning arith.ErrNotNumeric into a genuine exception value
// rather than a Go error (this module scenario 5: "1 + true" must raise, not
// crash the evaluator).
func arithApplicative(ctx heap.AllocContext, op func(heap.AllocContext, value.Box, value.Box) (value.Box, error)) (heap.Ref, error) {
	return function.NewNativeApplicative(ctx, func(ctx heap.AllocContext, args []value.Box) (function.NativeResult, error) {
		if len(args) != 2 {
			argc, _ := value.FromInt64(int64(len(args)))
			excRef, err := except.NewInternal(ctx, "operator expects 2 arguments, got %v", argc)
			if err != nil {
				return function.NativeResult{}, err
			}
			return function.NativeResult{IsException: true, Value: value.FromPointer(excRef)}, nil
		}
		v, err := op(ctx, args[0], args[1])
		if err != nil {
			excRef, err2 := except.NewInternal(ctx, "operand is not numeric")
			if err2 != nil {
				return function.NativeResult{}, err2
			}
			return function.NativeResult{IsException: true, Value: value.FromPointer(excRef)}, nil
		}
		return function.NativeResult{Value: v}, nil
	})
}

// bootstrapGlobalScope builds a global scope with the four structural
// syntax handlers and the "+"/"/" arithmetic operators bound, standing in
// for the full builtin registration the runtime package will eventually
// own.
func bootstrapGlobalScope(t *testing.T, env frame.Env) value.Box {
	t.Helper()
	globalRef, err := object.NewGlobalScope(env.Ctx)
	require.NoError(t, err)

	bindHandler := func(name string, kind syntax.Kind) {
		fnRef, err := function.NewNativeOperative(env.Ctx, kind)
		require.NoError(t, err)
		bindName(t, env, globalRef, name, propdict.Descriptor{
			Kind:   propdict.KindMethod,
			Method: value.FromPointer(fnRef),
		})
	}
	bindHandler("%file", syntax.KindFile)
	bindHandler("%block", syntax.KindBlock)
	bindHandler("%var", syntax.KindVarStmt)
	bindHandler("%call", syntax.KindCallExpr)

	addRef, err := arithApplicative(env.Ctx, arith.Add)
	require.NoError(t, err)
	bindName(t, env, globalRef, "+", propdict.Descriptor{Kind: propdict.KindValue, Value: value.FromPointer(addRef), Writable: true})

	divRef, err := arithApplicative(env.Ctx, arith.Div)
	require.NoError(t, err)
	bindName(t, env, globalRef, "/", propdict.Descriptor{Kind: propdict.KindValue, Value: value.FromPointer(divRef), Writable: true})

	return value.FromPointer(globalRef)
}

func bindName(t *testing.T, env frame.Env, scopeRef heap.Ref, name string, desc propdict.Descriptor) {
	t.Helper()
	nameRef, err := env.Strings.Intern(env.Ctx, name)
	require.NoError(t, err)
	require.NoError(t, object.DefineOwn(env.Ctx, scopeRef, value.FromPointer(nameRef), desc))
}

func storeTree(t *testing.T, env frame.Env, b *packtest.Builder) value.Box {
	t.Helper()
	ref, err := syntax.Store(env.Ctx, b.Build())
	require.NoError(t, err)
	return value.FromPointer(ref)
}

func TestOnePlusTwo(t *testing.T) {
	env := newEnv(t)
	scope := bootstrapGlobalScope(t, env)

	b := packtest.NewBuilder()
	one := b.Integer(1)
	two := b.Integer(2)
	call := b.Call(b.Identifier("+"), one, two)
	b.File(call)
	tree := storeTree(t, env, b)

	res, err := frame.Run(env, scope, tree, b.Build().Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultValue, res.Kind)
	iv, ok := value.Int64(res.Value)
	require.True(t, ok)
	require.EqualValues(t, 3, iv)
}

func TestTenDividedByFour(t *testing.T) {
	env := newEnv(t)
	scope := bootstrapGlobalScope(t, env)

	b := packtest.NewBuilder()
	ten := b.Integer(10)
	four := b.Integer(4)
	call := b.Call(b.Identifier("/"), ten, four)
	b.File(call)
	tree := storeTree(t, env, b)

	res, err := frame.Run(env, scope, tree, b.Build().Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultValue, res.Kind)
	ref, ok := value.Pointer(res.Value)
	require.True(t, ok)
	f, err := arith.ReadDouble(env.Ctx.Heap(), ref)
	require.NoError(t, err)
	require.InDelta(t, 2.5, f, 1e-9)
}

func TestVarBindingThenUse(t *testing.T) {
	env := newEnv(t)
	scope := bootstrapGlobalScope(t, env)

	b := packtest.NewBuilder()
	varStmt := b.Var(packtest.Binding{Name: "x", Value: b.Integer(2)})
	xPlusX := b.Call(b.Identifier("+"), b.Identifier("x"), b.Identifier("x"))
	b.File(varStmt, xPlusX)
	tree := storeTree(t, env, b)

	res, err := frame.Run(env, scope, tree, b.Build().Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultValue, res.Kind)
	iv, ok := value.Int64(res.Value)
	require.True(t, ok)
	require.EqualValues(t, 4, iv)
}

func TestUnboundCallRaisesNameLookupFailed(t *testing.T) {
	env := newEnv(t)
	scope := bootstrapGlobalScope(t, env)

	b := packtest.NewBuilder()
	call := b.Call(b.Identifier("f"))
	b.File(call)
	tree := storeTree(t, env, b)

	res, err := frame.Run(env, scope, tree, b.Build().Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultException, res.Kind)
	excRef, ok := value.Pointer(res.Exception)
	require.True(t, ok)
	msg := except.Format(env.Ctx.Heap(), excRef, 256)
	require.Contains(t, msg, "f")
	require.Contains(t, msg, "name lookup failed")
}

func TestAddNonNumericRaisesException(t *testing.T) {
	env := newEnv(t)
	scope := bootstrapGlobalScope(t, env)

	b := packtest.NewBuilder()
	one := b.Integer(1)
	trueLit := b.Boolean(true)
	call := b.Call(b.Identifier("+"), one, trueLit)
	b.File(call)
	tree := storeTree(t, env, b)

	res, err := frame.Run(env, scope, tree, b.Build().Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultException, res.Kind)
}

func TestEmptyFileYieldsVoid(t *testing.T) {
	env := newEnv(t)
	scope := bootstrapGlobalScope(t, env)

	b := packtest.NewBuilder()
	b.File()
	tree := storeTree(t, env, b)

	res, err := frame.Run(env, scope, tree, b.Build().Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultVoid, res.Kind)
}
