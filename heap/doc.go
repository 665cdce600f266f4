// Package heap implements a binary buddy-system allocator for a fixed
// memory region.
//
// # Overview
//
// The heap manages a single contiguous address range [start, end) handed to
// it once at construction. Memory is carved into power-of-two blocks
// organized into 32 size classes; class i holds blocks of exactly 2^(i+3)
// bytes, each aligned to its own size. The smallest block is 8 bytes and the
// largest is 16 GiB (2^34).
//
// # Free lists
//
// Each size class keeps an intrusive LIFO free list: a free block stores the
// address of the next free block in the first eight bytes of its own memory,
// so the allocator needs no bookkeeping storage beyond the region itself.
//
// # Allocation
//
//	addr, err := h.Allocate(size, align)
//
// The requested size is rounded up to the next power of two and served from
// the matching size class. When that class holds no suitably aligned block,
// a block from the next class up is split in half: the lower half satisfies
// the request and the upper half joins the lower class's free list. Splitting
// recurses at most 32 levels, so worst-case latency is proportional to the
// number of size classes, not the region size.
//
// # Deallocation
//
//	h.Deallocate(addr, size, align)
//
// Callers must pass the same size and alignment used to allocate the block;
// this precondition is not checked in normal builds. Freed blocks are eagerly
// coalesced: a block whose buddy (the sibling at addr XOR blocksize) is also
// free is merged into the parent block of twice the size, repeatedly, so no
// two free buddies ever coexist. Deallocation has no error channel; a size
// too large for any class is silently dropped.
//
// Building with the "memkitdebug" tag turns contract violations (frees
// outside the region or misaligned for their class) into panics.
//
// # Thread safety
//
// Heap is not synchronized. Wrap it in a LockedHeap, installed once via
// Install, to expose it as a process-wide allocator:
//
//	h, err := heap.New(a, start, end)
//	if err != nil {
//	    return err
//	}
//	lh, err := heap.Install(h)
//
// # Errors
//
//   - ErrUnsupported: zero size, zero alignment, or non-power-of-two
//     alignment. Detected before any state changes.
//   - ErrExhausted: no block of sufficient size exists in the region. The
//     returned error carries the original size and alignment.
package heap
