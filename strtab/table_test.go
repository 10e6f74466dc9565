package strtab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/strtab"
)

func newTestTable(t *testing.T) (*heap.Heap, heap.AllocContext, *strtab.Table) {
	t.Helper()
	h := heap.NewHeap()
	ctx := h.Context(heap.GenHatchery)
	return h, ctx, strtab.NewTable(h)
}

func TestInternTwiceReturnsIdenticalRef(t *testing.T) {
	_, ctx, table := newTestTable(t)

	a, err := table.Intern(ctx, "hello")
	require.NoError(t, err)
	b, err := table.Intern(ctx, "hello")
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, 1, table.Size())
}

func TestInternDistinctStringsGrowsSizeByOne(t *testing.T) {
	_, ctx, table := newTestTable(t)

	_, err := table.Intern(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, 1, table.Size())

	_, err = table.Intern(ctx, "beta")
	require.NoError(t, err)
	require.Equal(t, 2, table.Size())

	_, err = table.Intern(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, 2, table.Size())
}

func TestLookupNeverAllocates(t *testing.T) {
	h, ctx, table := newTestTable(t)

	before := h.Stats()
	_, ok := table.Lookup("never-interned")
	require.False(t, ok)
	require.Equal(t, before, h.Stats())

	ref, err := table.Intern(ctx, "present")
	require.NoError(t, err)

	before = h.Stats()
	got, ok := table.Lookup("present")
	require.True(t, ok)
	require.Equal(t, ref, got)
	require.Equal(t, before, h.Stats())

	content, err := strtab.Read(h, got)
	require.NoError(t, err)
	require.Equal(t, "present", content)
}

func TestInternGrowsPastDefaultFillRatio(t *testing.T) {
	_, ctx, table := newTestTable(t)

	const n = 64
	strs := make([]string, n)
	for i := 0; i < n; i++ {
		strs[i] = "key-" + string(rune('A'+i%26)) + string(rune('0'+i/26))
		_, err := table.Intern(ctx, strs[i])
		require.NoError(t, err)
	}
	require.Equal(t, n, table.Size())

	for _, s := range strs {
		_, ok := table.Lookup(s)
		require.True(t, ok, "lookup of %q should still succeed after growth", s)
	}
}

func TestRemoveDropsEntryAndSizeDecreases(t *testing.T) {
	_, ctx, table := newTestTable(t)

	_, err := table.Intern(ctx, "transient")
	require.NoError(t, err)
	require.Equal(t, 1, table.Size())

	require.True(t, table.Remove("transient"))
	require.Equal(t, 0, table.Size())

	_, ok := table.Lookup("transient")
	require.False(t, ok)
}

func TestRemoveUnknownStringReturnsFalse(t *testing.T) {
	_, _, table := newTestTable(t)
	require.False(t, table.Remove("nope"))
}

func TestWideStringRoundTripsThroughIntern(t *testing.T) {
	h, ctx, table := newTestTable(t)

	s := "café 中文" // forces the UTF-16LE (wide) encoding
	ref, err := table.Intern(ctx, s)
	require.NoError(t, err)

	w, err := strtab.WidthOf(h, ref)
	require.NoError(t, err)
	require.Equal(t, strtab.WidthWide, w)

	got, err := strtab.Read(h, ref)
	require.NoError(t, err)
	require.Equal(t, s, got)

	again, err := table.Intern(ctx, s)
	require.NoError(t, err)
	require.Equal(t, ref, again)
}

func TestNarrowStringStaysNarrow(t *testing.T) {
	h, ctx, table := newTestTable(t)

	ref, err := table.Intern(ctx, "plain ascii")
	require.NoError(t, err)

	w, err := strtab.WidthOf(h, ref)
	require.NoError(t, err)
	require.Equal(t, strtab.WidthNarrow, w)

	n, err := strtab.Len(h, ref)
	require.NoError(t, err)
	require.Equal(t, len("plain ascii"), n)
}
