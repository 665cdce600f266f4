package heap

import "errors"

var (
	// ErrUnsupported indicates a degenerate size or an alignment that is zero
	// or not a power of two. The heap is left untouched.
	ErrUnsupported = errors.New("heap: unsupported size or alignment")

	// ErrExhausted indicates that no block of sufficient size exists anywhere
	// in the managed region. Allocate wraps it with the failing request.
	ErrExhausted = errors.New("heap: out of memory")

	// ErrInstalled indicates that a global allocator was already installed.
	ErrInstalled = errors.New("heap: global allocator already installed")
)
