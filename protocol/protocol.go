// Package protocol implements the frame-level transport rule shared by
// both bindings of the runtime: a logical message is always wrapped as a
// 32-bit big-endian byte length followed by exactly that many bytes.
//
// The stream binding (EncodeFrame/DecodeFrame) treats the connection as a
// continuous byte stream and reads the length prefix and body as two
// separate io.ReadFull calls. The datagram binding (EncodeDatagram/
// DecodeDatagram) treats one datagram as one frame and duplicates the
// length inside the payload so a receiver can validate it against the
// physical size of the packet it actually received — a transport that
// silently truncated or padded the datagram is caught here rather than
// downstream in the type layer.
package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxFrameSize bounds the length prefix accepted on decode. Larger
// frames are rejected as malformed rather than attempting to allocate
// and read them; this matches the 65536-byte receive buffer the runtime
// is sized around (spec.md §6's configuration surface).
const MaxFrameSize = 65536

// LengthPrefixSize is the width, in bytes, of the frame length field.
const LengthPrefixSize = 4

var (
	// ErrFrameTooLarge is returned when a decoded length prefix exceeds
	// MaxFrameSize.
	ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum size")
	// ErrMalformedFrame is returned when a datagram's length prefix does
	// not match the number of bytes actually received.
	ErrMalformedFrame = errors.New("protocol: length prefix does not match payload size")
	// ErrDatagramTooShort is returned when a datagram is smaller than
	// the length prefix itself.
	ErrDatagramTooShort = errors.New("protocol: datagram shorter than length prefix")
)

// EncodeFrame writes the length-prefixed frame for the stream binding:
// a 32-bit big-endian byte count followed by message, in one or two
// Write calls on w.
func EncodeFrame(w io.Writer, message []byte) error {
	var lenBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(message)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(message) == 0 {
		return nil
	}
	_, err := w.Write(message)
	return err
}

// DecodeFrame reads one length-prefixed frame from r: the length prefix
// first, then exactly that many bytes. io.ReadFull guarantees a partial
// read never silently desynchronizes the stream.
func DecodeFrame(r io.Reader) ([]byte, error) {
	var lenBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	if n == 0 {
		return []byte{}, nil
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// EncodeDatagram builds a single self-contained datagram: the length
// prefix (duplicating the payload's own size) followed by message. The
// caller sends the returned slice as one atomic packet.
func EncodeDatagram(message []byte) []byte {
	out := make([]byte, LengthPrefixSize+len(message))
	binary.BigEndian.PutUint32(out[:LengthPrefixSize], uint32(len(message)))
	copy(out[LengthPrefixSize:], message)
	return out
}

// DecodeDatagram validates the length prefix of a received packet
// against the packet's actual size and returns the message bytes. A
// datagram binding assumes one message per datagram; any mismatch means
// the packet was truncated, padded, or is not a frame at all.
func DecodeDatagram(packet []byte) ([]byte, error) {
	if len(packet) < LengthPrefixSize {
		return nil, ErrDatagramTooShort
	}
	n := binary.BigEndian.Uint32(packet[:LengthPrefixSize])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	if int(n) != len(packet)-LengthPrefixSize {
		return nil, ErrMalformedFrame
	}
	return packet[LengthPrefixSize:], nil
}
