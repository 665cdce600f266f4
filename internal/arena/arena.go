// Package arena provides the raw byte region a heap manages.
//
// An Arena models a contiguous address range [base, base+size) as an opaque
// byte store addressed by absolute integer addresses. The heap writes its
// free-list links directly into arena memory, so the arena carries no
// bookkeeping beyond its bounds.
//
// Link loads and stores are unchecked in normal builds. Building with the
// "memkitdebug" tag enables bounds checks that panic on any out-of-range
// access, turning silent corruption into an immediate failure during testing.
package arena

import (
	"fmt"

	"github.com/memkit/memkit/internal/buf"
)

// linkSize is the number of bytes a free-list link occupies (one uint64).
const linkSize = 8

// Arena is a contiguous byte region addressed by absolute addresses.
// The zero value is not usable; construct with New or Map.
type Arena struct {
	base  uint64
	data  []byte
	unmap func() error
}

// New returns a heap-backed arena covering [base, base+size).
func New(base uint64, size int) (*Arena, error) {
	if err := validate(base, size); err != nil {
		return nil, err
	}
	return &Arena{base: base, data: make([]byte, size)}, nil
}

// validate rejects degenerate or overflowing region bounds.
func validate(base uint64, size int) error {
	if size <= 0 {
		return fmt.Errorf("arena: size must be positive, got %d", size)
	}
	if base+uint64(size) < base {
		return fmt.Errorf("arena: region [0x%x, 0x%x+%d) overflows the address space", base, base, size)
	}
	return nil
}

// Base returns the first address of the arena.
func (a *Arena) Base() uint64 { return a.base }

// End returns one past the last address of the arena.
func (a *Arena) End() uint64 { return a.base + uint64(len(a.data)) }

// Size returns the arena length in bytes.
func (a *Arena) Size() int { return len(a.data) }

// Contains reports whether [addr, addr+n) lies within the arena.
func (a *Arena) Contains(addr uint64, n int) bool {
	if addr < a.base {
		return false
	}
	off := addr - a.base
	if off > uint64(len(a.data)) {
		return false
	}
	return buf.Has(a.data, int(off), n)
}

// Slice returns the n bytes starting at addr, or ok = false when the range
// falls outside the arena.
func (a *Arena) Slice(addr uint64, n int) ([]byte, bool) {
	if addr < a.base {
		return nil, false
	}
	off := addr - a.base
	if off > uint64(len(a.data)) {
		return nil, false
	}
	return buf.Slice(a.data, int(off), n)
}

// LoadLink reads the free-list link word stored at addr.
func (a *Arena) LoadLink(addr uint64) uint64 {
	a.checkLink(addr)
	return buf.U64LE(a.data[addr-a.base:])
}

// StoreLink writes the free-list link word v at addr.
func (a *Arena) StoreLink(addr, v uint64) {
	a.checkLink(addr)
	buf.PutU64LE(a.data[addr-a.base:], v)
}

// Close releases any backing mapping. The arena must not be used afterwards.
// Closing a heap-backed arena is a no-op.
func (a *Arena) Close() error {
	if a.unmap == nil {
		a.data = nil
		return nil
	}
	unmap := a.unmap
	a.unmap = nil
	a.data = nil
	return unmap()
}
