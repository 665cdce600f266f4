package heap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LockedHeap_Serializes(t *testing.T) {
	h := newTestHeap(t, 0, 1<<20)
	l := NewLocked(h)

	const (
		workers = 8
		rounds  = 200
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				addr, err := l.Allocate(64, 8)
				if err != nil {
					continue
				}
				l.Deallocate(addr, 64, 8)
			}
		}()
	}
	wg.Wait()

	// Everything returned: the region coalesces back to a single block.
	assert.Equal(t, uint64(1<<20), l.FreeBytes())
	st := l.Stats()
	assert.Equal(t, st.AllocCalls-st.FailedAllocs, st.FreeCalls)
}

func Test_Install_Once(t *testing.T) {
	h := newTestHeap(t, 0, 1024)

	l, err := Install(h)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, Global())

	// The global allocator is never reconstructed.
	_, err = Install(h)
	require.ErrorIs(t, err, ErrInstalled)
	assert.Same(t, l, Global())
}
