package heap

import "github.com/memkit/memkit/internal/arena"

// nilRef terminates a free list. Address zero is a legal block address, so
// the sentinel is the all-ones word instead.
const nilRef = ^uint64(0)

// freeList is an intrusive LIFO list over the free blocks of one size class.
// Each free block stores the address of the next free block in its own first
// eight bytes; the list consumes no memory beyond the blocks themselves.
type freeList struct {
	arena *arena.Arena
	head  uint64
	count int
}

// push inserts addr at the head. The caller guarantees addr denotes a free
// block of this class's size that is not already listed.
func (l *freeList) push(addr uint64) {
	l.arena.StoreLink(addr, l.head)
	l.head = addr
	l.count++
}

// pop removes and returns the head block.
func (l *freeList) pop() (uint64, bool) {
	if l.head == nilRef {
		return 0, false
	}
	addr := l.head
	l.head = l.arena.LoadLink(addr)
	l.count--
	return addr, true
}

// remove unlinks and returns the first block whose address satisfies match.
func (l *freeList) remove(match func(addr uint64) bool) (uint64, bool) {
	prev := nilRef
	for cur := l.head; cur != nilRef; cur = l.arena.LoadLink(cur) {
		if match(cur) {
			next := l.arena.LoadLink(cur)
			if prev == nilRef {
				l.head = next
			} else {
				l.arena.StoreLink(prev, next)
			}
			l.count--
			return cur, true
		}
		prev = cur
	}
	return 0, false
}
