package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wisplang/wisp/heap"
	"github.com/wisplang/wisp/runtime"
	"github.com/wisplang/wisp/value"
)

func init() {
	rootCmd.AddCommand(newHeapStatsCmd())
}

func newHeapStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heap-stats <fixture>",
		Short: "Evaluate a fixture and report per-generation slab occupancy",
		Long: `heap-stats loads and evaluates a packed-tree fixture the same way run
does, then prints how many cards each generation's slabs spent
(heap.Stats), exercising the allocator's introspection surface rather
than the trampoline's result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeapStats(args[0])
		},
	}
}

var generationOrder = []heap.Generation{heap.GenHatchery, heap.GenLocalHeap, heap.GenTenured}

func runHeapStats(path string) error {
	tree, err := loadFixture(path)
	if err != nil {
		return err
	}

	tc, err := runtime.New().NewThreadContext()
	if err != nil {
		return fmt.Errorf("wispctl: create thread context: %w", err)
	}
	if _, err := tc.Evaluate(tree, value.Undefined, tree.Root); err != nil {
		return fmt.Errorf("wispctl: evaluate: %w", err)
	}

	stats := tc.Heap().Stats()
	if jsonOut {
		return printJSON(stats)
	}
	for _, gen := range generationOrder {
		slabs := stats[gen]
		fmt.Printf("%s: %d slab(s)\n", gen, len(slabs))
		for _, s := range slabs {
			fmt.Printf("  slab %d: %d/%d cards used, %d head objects\n", s.ID, s.CardsUsed, s.Cards, s.HeadSlots)
		}
	}
	return nil
}
