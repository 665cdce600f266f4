package xmodem

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rw glues a reader and a writer into one stream.
type rw struct {
	io.Reader
	io.Writer
}

// link returns two connected streams, one per endpoint.
func link() (a, b io.ReadWriter) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return rw{Reader: ar, Writer: aw}, rw{Reader: br, Writer: bw}
}

func transferOver(t *testing.T, data []byte, dstSize int) (int, []byte, error) {
	t.Helper()
	sender, receiver := link()

	sendErr := make(chan error, 1)
	go func() {
		sendErr <- Transmit(sender, bytes.NewReader(data))
	}()

	dst := make([]byte, dstSize)
	n, err := Receive(receiver, dst)
	if err == nil {
		require.NoError(t, <-sendErr)
	} else {
		<-sendErr
	}
	return n, dst, err
}

func Test_Transfer_WholePackets(t *testing.T) {
	data := bytes.Repeat([]byte{0xA5, 0x5A, 0x00, 0xFF}, 64) // 256 bytes
	n, dst, err := transferOver(t, data, 512)
	require.NoError(t, err)
	assert.Equal(t, 256, n)
	assert.Equal(t, data, dst[:n])
}

func Test_Transfer_PadsFinalPacket(t *testing.T) {
	data := bytes.Repeat([]byte{0x42}, 100)
	n, dst, err := transferOver(t, data, 512)
	require.NoError(t, err)
	assert.Equal(t, PacketSize, n, "image length is packet-granular")
	assert.Equal(t, data, dst[:100])
	for i := 100; i < PacketSize; i++ {
		assert.Equalf(t, byte(pad), dst[i], "byte %d", i)
	}
}

func Test_Transfer_Empty(t *testing.T) {
	n, _, err := transferOver(t, nil, 128)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func Test_Receive_TooLarge(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 256)
	sender, receiver := link()

	sendErr := make(chan error, 1)
	go func() {
		sendErr <- Transmit(sender, bytes.NewReader(data))
	}()

	dst := make([]byte, 128)
	_, err := Receive(receiver, dst)
	require.ErrorIs(t, err, ErrTooLarge)

	// The receiver cancels the sender.
	require.ErrorIs(t, <-sendErr, ErrCanceled)
}

func Test_Receive_PeerCancel(t *testing.T) {
	// Scripted conversation: the sender aborts immediately.
	input := bytes.NewReader([]byte{can})
	var out bytes.Buffer

	_, err := Receive(rw{Reader: input, Writer: &out}, make([]byte, 128))
	require.ErrorIs(t, err, ErrCanceled)
	assert.Equal(t, []byte{nak}, out.Bytes(), "handshake NAK precedes the abort")
}

func Test_Receive_BadChecksumThenGood(t *testing.T) {
	payload := bytes.Repeat([]byte{0x10}, PacketSize)

	var script bytes.Buffer
	// Packet 1 with a corrupted checksum.
	script.WriteByte(soh)
	script.WriteByte(1)
	script.WriteByte(^byte(1))
	script.Write(payload)
	script.WriteByte(checksum(payload) + 1)
	// Packet 1 again, intact.
	script.WriteByte(soh)
	script.WriteByte(1)
	script.WriteByte(^byte(1))
	script.Write(payload)
	script.WriteByte(checksum(payload))
	// Close.
	script.Write([]byte{eot, eot})

	var out bytes.Buffer
	dst := make([]byte, 256)
	n, err := Receive(rw{Reader: &script, Writer: &out}, dst)
	require.NoError(t, err)
	assert.Equal(t, PacketSize, n)
	assert.Equal(t, payload, dst[:n])

	// NAK (handshake), NAK (bad packet), ACK, NAK (first EOT), ACK.
	assert.Equal(t, []byte{nak, nak, ack, nak, ack}, out.Bytes())
}

func Test_Receive_DuplicatePacketAcked(t *testing.T) {
	payload := bytes.Repeat([]byte{0x77}, PacketSize)

	var script bytes.Buffer
	for n := 0; n < 2; n++ { // same packet twice: the second is a retransmit
		script.WriteByte(soh)
		script.WriteByte(1)
		script.WriteByte(^byte(1))
		script.Write(payload)
		script.WriteByte(checksum(payload))
	}
	script.Write([]byte{eot, eot})

	dst := make([]byte, 256)
	n, err := Receive(rw{Reader: &script, Writer: io.Discard}, dst)
	require.NoError(t, err)
	assert.Equal(t, PacketSize, n, "retransmit must not be stored twice")
}

func Test_Checksum(t *testing.T) {
	assert.Equal(t, byte(0), checksum(nil))
	assert.Equal(t, byte(3), checksum([]byte{1, 2}))
	assert.Equal(t, byte(254), checksum([]byte{0xFF, 0xFF})) // wraps mod 256
}
