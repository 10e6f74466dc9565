package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/syntax/packtest"
)

func TestBuildAndReadCallExpr(t *testing.T) {
	b := packtest.NewBuilder()
	one := b.Integer(1)
	two := b.Integer(2)
	plus := b.Identifier("+")
	call := b.Call(plus, one, two)
	b.File(call)
	tree := b.Build()

	require.Equal(t, syntax.KindFile, tree.Kind(tree.Root))
	require.Equal(t, 1, tree.StatementCount(tree.Root))

	stmt, err := tree.Statement(tree.Root, 0)
	require.NoError(t, err)
	require.Equal(t, call, stmt)
	require.Equal(t, syntax.KindCallExpr, tree.Kind(stmt))
	require.Equal(t, 2, tree.ArgCount(stmt))

	calleePos, err := tree.Callee(stmt)
	require.NoError(t, err)
	name, err := tree.Ident(calleePos)
	require.NoError(t, err)
	require.Equal(t, "+", name)

	arg0, err := tree.Arg(stmt, 0)
	require.NoError(t, err)
	v, err := tree.Int(arg0)
	require.NoError(t, err)
	require.EqualValues(t, 1, v)

	arg1, err := tree.Arg(stmt, 1)
	require.NoError(t, err)
	v, err = tree.Int(arg1)
	require.NoError(t, err)
	require.EqualValues(t, 2, v)
}

func TestBuildAndReadVarAndBlock(t *testing.T) {
	b := packtest.NewBuilder()
	lit := b.Integer(42)
	varStmt := b.Var(packtest.Binding{Name: "x", Value: lit})
	ref := b.Identifier("x")
	block := b.Block(varStmt, ref)
	b.File(block)
	tree := b.Build()

	stmt, err := tree.Statement(tree.Root, 0)
	require.NoError(t, err)
	require.Equal(t, syntax.KindBlock, tree.Kind(stmt))
	require.Equal(t, 2, tree.StatementCount(stmt))

	s0, err := tree.Statement(stmt, 0)
	require.NoError(t, err)
	require.Equal(t, syntax.KindVarStmt, tree.Kind(s0))
	require.Equal(t, 1, tree.BindingCount(s0))

	name, valPos, err := tree.Binding(s0, 0)
	require.NoError(t, err)
	require.Equal(t, "x", name)
	n, err := tree.Int(valPos)
	require.NoError(t, err)
	require.EqualValues(t, 42, n)

	s1, err := tree.Statement(stmt, 1)
	require.NoError(t, err)
	require.Equal(t, syntax.KindIdentifierRef, tree.Kind(s1))
}

func TestStoreAndLoadRoundTrips(t *testing.T) {
	b := packtest.NewBuilder()
	lit := b.Boolean(true)
	b.File(lit)
	tree := b.Build()

	h := heap.NewHeap()
	ctx := h.Context(heap.GenTenured)

	ref, err := syntax.Store(ctx, tree)
	require.NoError(t, err)

	loaded, err := syntax.Load(h, ref)
	require.NoError(t, err)
	require.Equal(t, tree.Root, loaded.Root)

	stmt, err := loaded.Statement(loaded.Root, 0)
	require.NoError(t, err)
	v, err := loaded.Bool(stmt)
	require.NoError(t, err)
	require.True(t, v)
}
