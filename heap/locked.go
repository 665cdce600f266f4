package heap

import "sync"

// LockedHeap serializes access to a Heap with a mutex. The core allocator
// assumes single-threaded access; any environment with concurrent callers
// must go through this wrapper (or provide its own exclusion).
type LockedHeap struct {
	mu sync.Mutex
	h  *Heap
}

// NewLocked wraps h in a mutex.
func NewLocked(h *Heap) *LockedHeap {
	return &LockedHeap{h: h}
}

// Allocate is Heap.Allocate under the lock.
func (l *LockedHeap) Allocate(size, align uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Allocate(size, align)
}

// Deallocate is Heap.Deallocate under the lock.
func (l *LockedHeap) Deallocate(addr, size, align uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.h.Deallocate(addr, size, align)
}

// Stats is Heap.Stats under the lock.
func (l *LockedHeap) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Stats()
}

// FreeBytes is Heap.FreeBytes under the lock.
func (l *LockedHeap) FreeBytes() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.FreeBytes()
}

// String is Heap.String under the lock.
func (l *LockedHeap) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.String()
}

var (
	globalMu sync.Mutex
	global   *LockedHeap
)

// Install registers h as the process-wide allocator behind a LockedHeap.
// The global allocator is constructed once at process start and never
// reconstructed; a second Install returns ErrInstalled.
func Install(h *Heap) (*LockedHeap, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return nil, ErrInstalled
	}
	global = NewLocked(h)
	return global, nil
}

// Global returns the installed process-wide allocator, or nil before Install.
func Global() *LockedHeap {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}
