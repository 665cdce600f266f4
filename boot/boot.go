// Package boot wires together the pieces that run before a kernel has a
// working heap: carving the physical memory layout, constructing the
// buddy allocator over the free range, and receiving a binary image over
// a serial console.
package boot

import (
	"fmt"

	"github.com/memkit/memkit/console"
	"github.com/memkit/memkit/heap"
	"github.com/memkit/memkit/internal/arena"
	"github.com/memkit/memkit/xmodem"
)

// Layout describes how a contiguous memory range is split between the heap
// and the region reserved for a subsequently loaded binary image.
type Layout struct {
	HeapStart   uint64
	HeapEnd     uint64
	BinaryStart uint64
	BinaryEnd   uint64
}

// NewLayout splits [base, base+total) into a heap region followed by
// binaryReserve bytes kept free at the top for a loaded image.
func NewLayout(base uint64, total, binaryReserve int) (Layout, error) {
	if total <= 0 {
		return Layout{}, fmt.Errorf("boot: total size must be positive, got %d", total)
	}
	if binaryReserve < 0 || binaryReserve > total {
		return Layout{}, fmt.Errorf("boot: binary reserve %d outside [0, %d]", binaryReserve, total)
	}
	split := base + uint64(total-binaryReserve)
	return Layout{
		HeapStart:   base,
		HeapEnd:     split,
		BinaryStart: split,
		BinaryEnd:   base + uint64(total),
	}, nil
}

// Bootstrap constructs the heap over the layout's heap region and wraps it
// for concurrent callers. The arena must cover the full layout.
func Bootstrap(a *arena.Arena, l Layout) (*heap.LockedHeap, error) {
	h, err := heap.New(a, l.HeapStart, l.HeapEnd)
	if err != nil {
		return nil, err
	}
	return heap.NewLocked(h), nil
}

// BootstrapGlobal is Bootstrap plus one-time installation of the heap as
// the process-wide allocator.
func BootstrapGlobal(a *arena.Arena, l Layout) (*heap.LockedHeap, error) {
	h, err := heap.New(a, l.HeapStart, l.HeapEnd)
	if err != nil {
		return nil, err
	}
	return heap.Install(h)
}

// LoadBinary receives a binary image over con into dst, retrying failed
// transfers up to attempts times. It returns the image length, which is
// packet-granular per the XMODEM protocol.
func LoadBinary(con *console.Console, dst []byte, attempts int) (int, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for try := 0; try < attempts; try++ {
		var n int
		n, err = xmodem.Receive(con, dst)
		if err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("boot: image transfer failed after %d attempts: %w", attempts, err)
}
