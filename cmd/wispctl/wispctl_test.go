package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/frame"
	"github.com/wisplang/wisp/runtime"
	"github.com/wisplang/wisp/value"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestGenFixtureThenRun(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "onepulstwo.wtree")

	require.NoError(t, runGenFixture("(+ 1 2)", fixture))

	out := captureStdout(t, func() {
		require.NoError(t, runRun(fixture))
	})
	require.Contains(t, out, "3")
}

func TestRunVarBinding(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "varuse.wtree")

	require.NoError(t, runGenFixture("(var (x 2)) (+ x x)", fixture))

	out := captureStdout(t, func() {
		require.NoError(t, runRun(fixture))
	})
	require.Contains(t, out, "4")
}

func TestRunUnboundNameRaisesException(t *testing.T) {
	// runRun calls os.Exit(1) on an exception result, so this exercises the
	// same path runRun takes (load, new thread context, Evaluate,
	// FormatResult) without going through the command itself.
	dir := t.TempDir()
	fixture := filepath.Join(dir, "unbound.wtree")
	require.NoError(t, runGenFixture("(f)", fixture))

	tree, err := loadFixture(fixture)
	require.NoError(t, err)

	tc, err := runtime.New().NewThreadContext()
	require.NoError(t, err)

	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	require.NoError(t, err)
	require.Equal(t, frame.ResultException, res.Kind)
	require.Contains(t, tc.FormatResult(res, defaultExceptionMessageLen), "f")
}

func TestHeapStatsReportsHatcherySlab(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "onepulstwo.wtree")
	require.NoError(t, runGenFixture("(+ 1 2)", fixture))

	out := captureStdout(t, func() {
		require.NoError(t, runHeapStats(fixture))
	})
	require.Contains(t, out, "hatchery:")
}

func TestCompileProgramRejectsUnterminatedList(t *testing.T) {
	_, err := compileProgram("(+ 1 2")
	require.Error(t, err)
}
