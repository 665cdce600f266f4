package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/memkit/memkit/heap"
	"github.com/memkit/memkit/internal/arena"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	var (
		size   int
		rounds int
		useMap bool
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a randomized allocation scenario and report heap statistics",
		Long: `The demo command builds a heap over a fresh region, performs a randomized
mix of allocations and frees, then drains everything and prints the
allocator counters.

Example:
  memctl demo --size 1048576 --rounds 10000
  memctl demo --mmap`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(size, rounds, useMap, seed)
		},
	}
	cmd.Flags().IntVar(&size, "size", 1<<20, "Region size in bytes")
	cmd.Flags().IntVar(&rounds, "rounds", 10000, "Number of allocate/free rounds")
	cmd.Flags().BoolVar(&useMap, "mmap", false, "Back the region with an anonymous mapping")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed for the scenario")
	return cmd
}

type demoBlock struct {
	addr, size, align uint64
}

func runDemo(size, rounds int, useMap bool, seed int64) error {
	var (
		a   *arena.Arena
		err error
	)
	if useMap {
		a, err = arena.Map(0, size)
		printVerbose("region backed by anonymous mapping\n")
	} else {
		a, err = arena.New(0, size)
	}
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := heap.New(a, a.Base(), a.End())
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	var live []demoBlock
	for i := 0; i < rounds; i++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			sz := uint64(1 + rng.Intn(4096))
			align := uint64(1) << rng.Intn(7)
			addr, err := h.Allocate(sz, align)
			if err != nil {
				continue // exhausted this round; frees will catch up
			}
			live = append(live, demoBlock{addr, sz, align})
		} else {
			j := rng.Intn(len(live))
			b := live[j]
			h.Deallocate(b.addr, b.size, b.align)
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}
	for _, b := range live {
		h.Deallocate(b.addr, b.size, b.align)
	}

	st := h.Stats()
	printInfo("region: %d bytes, %d rounds\n", size, rounds)
	printInfo("allocs: %d (%d failed)\n", st.AllocCalls, st.FailedAllocs)
	printInfo("frees: %d\n", st.FreeCalls)
	printInfo("splits: %d, merges: %d\n", st.Splits, st.Merges)
	printInfo("bytes: %d allocated, %d freed\n", st.BytesAllocated, st.BytesFreed)
	printInfo("free now: %d bytes\n", h.FreeBytes())
	if verbose {
		fmt.Print(h.String())
	}
	return nil
}
