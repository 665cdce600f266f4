// Package xmodem implements the original XMODEM transfer protocol: 128-byte
// packets protected by a one-byte additive checksum. It is the boot-time
// transfer mechanism that loads a binary image over a serial line before
// the kernel heap exists, so it consumes nothing but blocking byte I/O.
//
// Transfers move whole packets; a received image is always a multiple of
// 128 bytes, with the final packet padded by SUB (0x1A) bytes.
package xmodem

import (
	"errors"
	"fmt"
	"io"
)

// PacketSize is the fixed payload length of every packet.
const PacketSize = 128

// Protocol control bytes.
const (
	soh = 0x01 // start of a packet
	eot = 0x04 // end of transmission
	ack = 0x06 // packet accepted
	nak = 0x15 // packet rejected / start handshake
	can = 0x18 // abort
	pad = 0x1A // SUB, pads the final packet
)

// maxRetries bounds consecutive rejected packets before giving up.
const maxRetries = 10

var (
	// ErrCanceled indicates the peer aborted the transfer.
	ErrCanceled = errors.New("xmodem: transfer canceled by peer")

	// ErrTooLarge indicates the incoming image exceeds the destination buffer.
	ErrTooLarge = errors.New("xmodem: image exceeds destination buffer")

	// ErrRetries indicates too many consecutive bad packets.
	ErrRetries = errors.New("xmodem: too many bad packets")
)

// checksum is the additive packet checksum.
func checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// Receive reads an image from rw into dst and returns its length, a
// multiple of PacketSize. The handshake starts with a NAK; every verified
// packet is ACKed and the double-EOT close completes the transfer. A peer
// CAN aborts with ErrCanceled; an image larger than dst cancels the sender
// and fails with ErrTooLarge.
func Receive(rw io.ReadWriter, dst []byte) (int, error) {
	if err := writeByte(rw, nak); err != nil {
		return 0, err
	}

	var (
		n     int
		seq   byte = 1
		tries int
	)
	for {
		b, err := readByte(rw)
		if err != nil {
			return n, err
		}
		switch b {
		case can:
			return n, ErrCanceled

		case eot:
			// First EOT is NAKed, the repeat is ACKed.
			if err := writeByte(rw, nak); err != nil {
				return n, err
			}
			b, err := readByte(rw)
			if err != nil {
				return n, err
			}
			if b != eot {
				return n, fmt.Errorf("xmodem: expected repeated EOT, got 0x%02x", b)
			}
			return n, writeByte(rw, ack)

		case soh:
			var pkt [PacketSize + 3]byte
			if _, err := io.ReadFull(rw, pkt[:]); err != nil {
				return n, err
			}
			num, cmpl := pkt[0], pkt[1]
			payload := pkt[2 : 2+PacketSize]
			sum := pkt[PacketSize+2]

			switch {
			case num == seq && cmpl == ^seq && sum == checksum(payload):
				if n+PacketSize > len(dst) {
					writeByte(rw, can)
					return n, ErrTooLarge
				}
				copy(dst[n:], payload)
				n += PacketSize
				seq++
				tries = 0
				if err := writeByte(rw, ack); err != nil {
					return n, err
				}

			case num == seq-1 && cmpl == ^num && sum == checksum(payload):
				// Retransmit of the packet we already have; the sender
				// missed our ACK.
				if err := writeByte(rw, ack); err != nil {
					return n, err
				}

			default:
				tries++
				if tries > maxRetries {
					writeByte(rw, can)
					return n, ErrRetries
				}
				if err := writeByte(rw, nak); err != nil {
					return n, err
				}
			}

		default:
			// Desynchronized; ask for a resend.
			tries++
			if tries > maxRetries {
				writeByte(rw, can)
				return n, ErrRetries
			}
			if err := writeByte(rw, nak); err != nil {
				return n, err
			}
		}
	}
}

// Transmit sends src over rw. It waits for the receiver's opening NAK,
// sends each packet until it is ACKed, and closes with the double-EOT
// handshake.
func Transmit(rw io.ReadWriter, src io.Reader) error {
	b, err := readByte(rw)
	if err != nil {
		return err
	}
	switch b {
	case nak:
	case can:
		return ErrCanceled
	default:
		return fmt.Errorf("xmodem: expected opening NAK, got 0x%02x", b)
	}

	seq := byte(1)
	var payload [PacketSize]byte
	for {
		m, err := io.ReadFull(src, payload[:])
		if m == 0 {
			if err == io.EOF {
				break
			}
			return err
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return err
		}
		for i := m; i < PacketSize; i++ {
			payload[i] = pad
		}

		if err := sendPacket(rw, seq, payload[:]); err != nil {
			return err
		}
		seq++

		if m < PacketSize {
			break
		}
	}

	// Close: EOT, expect NAK, EOT again, expect ACK.
	if err := writeByte(rw, eot); err != nil {
		return err
	}
	if b, err := readByte(rw); err != nil {
		return err
	} else if b != nak {
		return fmt.Errorf("xmodem: expected NAK after EOT, got 0x%02x", b)
	}
	if err := writeByte(rw, eot); err != nil {
		return err
	}
	if b, err := readByte(rw); err != nil {
		return err
	} else if b != ack {
		return fmt.Errorf("xmodem: expected final ACK, got 0x%02x", b)
	}
	return nil
}

// sendPacket writes one packet and retries until the receiver ACKs it.
func sendPacket(rw io.ReadWriter, seq byte, payload []byte) error {
	pkt := make([]byte, 0, PacketSize+4)
	pkt = append(pkt, soh, seq, ^seq)
	pkt = append(pkt, payload...)
	pkt = append(pkt, checksum(payload))

	for tries := 0; ; tries++ {
		if _, err := rw.Write(pkt); err != nil {
			return err
		}
		b, err := readByte(rw)
		if err != nil {
			return err
		}
		switch b {
		case ack:
			return nil
		case can:
			return ErrCanceled
		case nak:
			if tries >= maxRetries {
				return ErrRetries
			}
		default:
			return fmt.Errorf("xmodem: unexpected reply 0x%02x", b)
		}
	}
}
