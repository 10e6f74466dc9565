package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wisplang/wisp/syntax"
)

func init() {
	rootCmd.AddCommand(newGenFixtureCmd())
}

func newGenFixtureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-fixture <program> <outfile>",
		Short: "Compile a tiny s-expression program into a packed-tree fixture file",
		Long: `gen-fixture compiles a small s-expression surface syntax (space-separated
top-level forms; see cmd/wispctl/sexpr.go) into wisp's packed syntax tree
wire format and writes it to outfile, for later use by run/heap-stats.
This module has no tokenizer or parser of its own; gen-fixture
exists purely to fabricate fixtures without one.

Example:
  wispctl gen-fixture '(+ 1 2)' onepulstwo.wtree
  wispctl gen-fixture '(var (x 2)) (+ x x)' varuse.wtree`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenFixture(args[0], args[1])
		},
	}
}

func runGenFixture(program, outPath string) error {
	b, err := compileProgram(program)
	if err != nil {
		return fmt.Errorf("wispctl: compile: %w", err)
	}
	tree := b.Build()
	encoded := syntax.Encode(tree)
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("wispctl: write fixture: %w", err)
	}
	printVerbose("wrote %d bytes to %s\n", len(encoded), outPath)
	return nil
}
