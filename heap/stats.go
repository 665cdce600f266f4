package heap

import (
	"fmt"
	"strings"
)

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls     int   // Total Allocate() calls
	FreeCalls      int   // Deallocate() calls naming a nonzero size
	FailedAllocs   int   // Allocate() calls that returned an error
	Splits         int   // Block splits performed while allocating
	Merges         int   // Buddy merges performed while freeing
	BytesAllocated int64 // Total block bytes handed out
	BytesFreed     int64 // Total block bytes returned
}

// Stats returns a snapshot of the allocator counters.
func (h *Heap) Stats() Stats { return h.stats }

// BinCounts returns the number of free blocks in each size class.
func (h *Heap) BinCounts() [NumBins]int {
	var counts [NumBins]int
	for i := range h.bins {
		counts[i] = h.bins[i].count
	}
	return counts
}

// FreeBytes returns the total bytes currently sitting on free lists.
func (h *Heap) FreeBytes() uint64 {
	var total uint64
	for i := range h.bins {
		total += uint64(h.bins[i].count) * binSize(i)
	}
	return total
}

// String renders the non-empty bins, one per line.
func (h *Heap) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "heap [0x%x, 0x%x): %d bytes free\n", h.start, h.end, h.FreeBytes())
	for i := range h.bins {
		if h.bins[i].count == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  bin %2d (%d bytes):", i, binSize(i))
		for addr := h.bins[i].head; addr != nilRef; addr = h.arena.LoadLink(addr) {
			fmt.Fprintf(&sb, " 0x%x", addr)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
