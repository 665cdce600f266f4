// Package console provides blocking byte-level I/O over a serial-style
// stream. It is the only interface the shell, the boot loader, and the
// XMODEM transfer consume.
package console

import (
	"io"
	"time"
)

// deadliner is satisfied by streams with read deadlines (net.Conn, os.File
// for character devices).
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Console wraps an io.ReadWriter with byte-at-a-time blocking reads and an
// optional read timeout.
type Console struct {
	rw      io.ReadWriter
	timeout time.Duration
}

// New returns a console over rw. Reads never time out by default; use
// SetReadTimeout to bound them.
func New(rw io.ReadWriter) *Console {
	return &Console{rw: rw}
}

// SetReadTimeout bounds how long a read blocks. It takes effect only when
// the underlying stream supports read deadlines; timed-out reads fail with
// os.ErrDeadlineExceeded. A zero duration disables the timeout.
func (c *Console) SetReadTimeout(d time.Duration) {
	c.timeout = d
}

// Read reads from the underlying stream, arming the read deadline first
// when a timeout is configured.
func (c *Console) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		if d, ok := c.rw.(deadliner); ok {
			if err := d.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
				return 0, err
			}
		}
	}
	return c.rw.Read(p)
}

// Write writes to the underlying stream.
func (c *Console) Write(p []byte) (int, error) {
	return c.rw.Write(p)
}

// ReadByte blocks until one byte is available.
func (c *Console) ReadByte() (byte, error) {
	var b [1]byte
	for {
		n, err := c.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// WriteByte writes a single byte.
func (c *Console) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}

// WriteString writes s in full.
func (c *Console) WriteString(s string) error {
	_, err := io.WriteString(c.rw, s)
	return err
}
