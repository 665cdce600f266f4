package boot

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/memkit/console"
	"github.com/memkit/memkit/internal/arena"
	"github.com/memkit/memkit/xmodem"
)

func Test_NewLayout_Carving(t *testing.T) {
	l, err := NewLayout(0x80000, 1<<20, 1<<16)
	require.NoError(t, err)

	assert.Equal(t, uint64(0x80000), l.HeapStart)
	assert.Equal(t, l.HeapEnd, l.BinaryStart)
	assert.Equal(t, uint64(0x80000+1<<20), l.BinaryEnd)
	assert.Equal(t, uint64(1<<20-1<<16), l.HeapEnd-l.HeapStart)
}

func Test_NewLayout_Rejects(t *testing.T) {
	_, err := NewLayout(0, 0, 0)
	require.Error(t, err)

	_, err = NewLayout(0, 100, 101)
	require.Error(t, err)

	_, err = NewLayout(0, 100, -1)
	require.Error(t, err)
}

func Test_NewLayout_NoReserve(t *testing.T) {
	l, err := NewLayout(0, 4096, 0)
	require.NoError(t, err)
	assert.Equal(t, l.BinaryStart, l.BinaryEnd)
}

func Test_Bootstrap_AllocatesFromHeapRegion(t *testing.T) {
	const total = 1 << 16
	l, err := NewLayout(0, total, 1<<12)
	require.NoError(t, err)

	a, err := arena.New(0, total)
	require.NoError(t, err)

	lh, err := Bootstrap(a, l)
	require.NoError(t, err)

	addr, err := lh.Allocate(64, 8)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, addr, l.HeapStart)
	assert.Less(t, addr, l.HeapEnd)

	// The reserved binary region is never handed out.
	assert.Equal(t, l.HeapEnd-l.HeapStart, lh.FreeBytes()+64)
}

type rw struct {
	io.Reader
	io.Writer
}

func Test_LoadBinary(t *testing.T) {
	image := bytes.Repeat([]byte{0xEB}, 256)

	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	go func() {
		_ = xmodem.Transmit(rw{Reader: br, Writer: bw}, bytes.NewReader(image))
	}()

	con := console.New(rw{Reader: ar, Writer: aw})
	dst := make([]byte, 1<<12)
	n, err := LoadBinary(con, dst, 3)
	require.NoError(t, err)
	assert.Equal(t, 256, n)
	assert.Equal(t, image, dst[:n])
}

func Test_LoadBinary_GivesUp(t *testing.T) {
	// A peer that cancels every attempt.
	script := bytes.NewReader(bytes.Repeat([]byte{0x18}, 3)) // CAN per attempt

	con := console.New(rw{Reader: script, Writer: io.Discard})
	_, err := LoadBinary(con, make([]byte, 128), 3)
	require.ErrorIs(t, err, xmodem.ErrCanceled)
}
