//go:build memkitdebug

package heap

import "fmt"

// assertBlock panics when a freed block falls outside the managed region or
// is misaligned for its claimed size class.
func (h *Heap) assertBlock(addr uint64, bin int) {
	size := binSize(bin)
	if addr < h.start || addr+size > h.end {
		panic(fmt.Sprintf("heap: free of 0x%x (class %d) outside region [0x%x, 0x%x)",
			addr, bin, h.start, h.end))
	}
	if addr&(size-1) != 0 {
		panic(fmt.Sprintf("heap: free of 0x%x not aligned to its class size %d", addr, size))
	}
}
