package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wisplang/wisp/frame"
	"github.com/wisplang/wisp/runtime"
	"github.com/wisplang/wisp/syntax"
	"github.com/wisplang/wisp/value"
)

const defaultExceptionMessageLen = 512

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <fixture>",
		Short: "Evaluate a packed-tree fixture and print the terminal result",
		Long: `run loads a packed syntax tree fixture (produced by gen-fixture),
creates a fresh runtime thread context with every built-in bound, drives
the Step/Resolve trampoline to completion, and prints the terminal
frame's result or exception, the way any driver program is expected to
format it.

Exit status is 1 when evaluation settles on an exception or an internal
error, 0 on a value or void result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args[0])
		},
	}
}

func loadFixture(path string) (*syntax.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wispctl: read fixture: %w", err)
	}
	tree, err := syntax.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("wispctl: decode fixture: %w", err)
	}
	return tree, nil
}

func runRun(path string) error {
	tree, err := loadFixture(path)
	if err != nil {
		return err
	}

	tc, err := runtime.New().NewThreadContext()
	if err != nil {
		return fmt.Errorf("wispctl: create thread context: %w", err)
	}

	trace.Printf("evaluating %s, root node %d", path, tree.Root)
	res, err := tc.Evaluate(tree, value.Undefined, tree.Root)
	if err != nil {
		return fmt.Errorf("wispctl: evaluate: %w", err)
	}

	msg := tc.FormatResult(res, defaultExceptionMessageLen)
	if jsonOut {
		if err := printJSON(map[string]any{"kind": res.Kind.String(), "result": msg}); err != nil {
			return err
		}
	} else {
		fmt.Println(msg)
	}

	if res.Kind == frame.ResultException || res.Kind == frame.ResultError {
		os.Exit(1)
	}
	return nil
}
