package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags. wispctl has no config file parser; every option is a
// persistent flag.
var (
	verbose  bool
	jsonOut  bool
	traceLog string
)

var rootCmd = &cobra.Command{
	Use:   "wispctl",
	Short: "Evaluate and inspect wisp packed-syntax-tree fixtures",
	Long: `wispctl is a thin driver over the wisp runtime core: it evaluates
packed-syntax-tree fixtures (produced by gen-fixture, since this module
does not include a tokenizer or parser) and reports the terminal frame's
result or exception, and inspects heap occupancy after a run.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initTrace(traceLog)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&traceLog, "trace", "", "Write a trampoline trace log to this path")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs v as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
