package heap

import (
	"fmt"
	"math/bits"
	"os"

	"github.com/memkit/memkit/internal/arena"
)

// Runtime flag for allocation logging - controlled by MEMKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

const (
	// NumBins is the number of size classes. Class i holds blocks of
	// 2^(i+3) bytes.
	NumBins = 32

	// minShift is the exponent of the smallest block size (8 bytes), the
	// space an intrusive free-list link needs.
	minShift = 3

	// MinBlock is the smallest block size the heap tracks. Region fragments
	// smaller than this are dropped at initialization, wasting at most
	// MinBlock-1 bytes per boundary.
	MinBlock = 1 << minShift

	// maxShift is the exponent of the largest size class (2^34).
	maxShift = minShift + NumBins - 1
)

// maxBlock is the block size of the largest size class.
const maxBlock = uint64(1) << maxShift

// Heap is a buddy-system allocator over a fixed region of an arena.
// Not safe for concurrent use; see LockedHeap.
type Heap struct {
	arena      *arena.Arena
	start, end uint64
	bins       [NumBins]freeList
	stats      Stats
}

// New constructs a heap managing [start, end), which must lie within a. The
// region is carved into maximal naturally-aligned power-of-two blocks and
// each block is seeded into its size class.
func New(a *arena.Arena, start, end uint64) (*Heap, error) {
	if start > end {
		return nil, fmt.Errorf("heap: invalid region [0x%x, 0x%x)", start, end)
	}
	if end > start && !a.Contains(start, int(end-start)) {
		return nil, fmt.Errorf("heap: region [0x%x, 0x%x) outside arena [0x%x, 0x%x)",
			start, end, a.Base(), a.End())
	}
	h := &Heap{arena: a, start: start, end: end}
	for i := range h.bins {
		h.bins[i] = freeList{arena: a, head: nilRef}
	}
	h.seed()
	return h, nil
}

// Region returns the managed address range.
func (h *Heap) Region() (start, end uint64) { return h.start, h.end }

// seed partitions [start, end) into the largest blocks that are power-of-two
// sized, no larger than the remaining range, and naturally aligned at the
// cursor. Fragments below MinBlock are dropped.
func (h *Heap) seed() {
	cur := h.start
	for cur < h.end {
		sz := maxBlock
		if cur != 0 {
			if a := uint64(1) << bits.TrailingZeros64(cur); a < sz {
				sz = a
			}
		}
		if r := largestPow2(h.end - cur); r < sz {
			sz = r
		}
		if sz >= MinBlock {
			h.bins[binFor(sz)].push(cur)
		}
		cur += sz
	}
}

// Allocate returns the address of a free block of at least size bytes,
// aligned to align. align must be a nonzero power of two. Failure leaves
// every bin unchanged.
func (h *Heap) Allocate(size, align uint64) (uint64, error) {
	h.stats.AllocCalls++
	if size == 0 {
		h.stats.FailedAllocs++
		return 0, fmt.Errorf("%w: zero size", ErrUnsupported)
	}
	if align == 0 || align&(align-1) != 0 {
		h.stats.FailedAllocs++
		return 0, fmt.Errorf("%w: alignment %d is not a power of two", ErrUnsupported, align)
	}

	bin := binFor(size)
	addr, err := h.allocBin(bin, align)
	if err != nil {
		h.stats.FailedAllocs++
		if logAlloc {
			fmt.Fprintf(os.Stderr, "[HEAP] Allocate(%d, %d): exhausted\n", size, align)
		}
		return 0, fmt.Errorf("%w: size=%d align=%d", ErrExhausted, size, align)
	}
	h.stats.BytesAllocated += int64(binSize(bin))
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[HEAP] Allocate(%d, %d) = 0x%x (class %d)\n", size, align, addr, bin)
	}
	return addr, nil
}

// allocBin serves a request for one block of size class bin, aligned to
// align. When the class has no aligned block, a block from the class above
// is split in half: the lower half is returned and the upper half becomes a
// new free block of this class. Recursion ends at NumBins with ErrExhausted.
func (h *Heap) allocBin(bin int, align uint64) (uint64, error) {
	if bin >= NumBins {
		return 0, ErrExhausted
	}
	if addr, ok := h.bins[bin].remove(func(a uint64) bool { return a&(align-1) == 0 }); ok {
		return addr, nil
	}
	addr, err := h.allocBin(bin+1, align)
	if err != nil {
		return 0, err
	}
	h.bins[bin].push(addr + binSize(bin))
	h.stats.Splits++
	return addr, nil
}

// Deallocate returns the block at addr to the pool. size and align must be
// exactly the values passed to the Allocate call that produced addr; this is
// an unchecked precondition (memkitdebug builds assert region membership and
// class alignment). A zero size is a no-op that leaves the counters
// untouched; a size too large for any class is silently dropped.
func (h *Heap) Deallocate(addr, size, align uint64) {
	if size == 0 {
		return
	}
	h.stats.FreeCalls++
	bin := binFor(size)
	if bin >= NumBins {
		if logAlloc {
			fmt.Fprintf(os.Stderr, "[HEAP] Deallocate(0x%x, %d, %d): dropped, no size class\n", addr, size, align)
		}
		return
	}
	h.assertBlock(addr, bin)
	h.stats.BytesFreed += int64(binSize(bin))
	h.freeBin(addr, bin)
}

// freeBin frees one block of size class bin, eagerly coalescing it with its
// buddy whenever the buddy is also free. Blocks of the top class have no
// parent class to merge into and are pushed directly.
func (h *Heap) freeBin(addr uint64, bin int) {
	if bin+1 < NumBins {
		buddy := addr ^ binSize(bin)
		if _, ok := h.bins[bin].remove(func(a uint64) bool { return a == buddy }); ok {
			h.stats.Merges++
			h.freeBin(min(addr, buddy), bin+1)
			return
		}
	}
	h.bins[bin].push(addr)
}

// binFor returns the size class whose blocks hold size bytes: the exponent
// of size rounded up to a power of two, clamped to the minimum class.
// Sizes above the top class map to NumBins and beyond.
func binFor(size uint64) int {
	k := bits.Len64(size - 1)
	if k < minShift {
		k = minShift
	}
	return k - minShift
}

// binSize returns the block size of size class bin.
func binSize(bin int) uint64 {
	return uint64(1) << (bin + minShift)
}

// largestPow2 returns the largest power of two no greater than x (x > 0).
func largestPow2(x uint64) uint64 {
	return uint64(1) << (bits.Len64(x) - 1)
}
