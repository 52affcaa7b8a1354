// Package client implements the generic client engine spec.md §4.4
// describes: a send-serializing mutex, a listener goroutine that
// demultiplexes RPC responses from push notifications, and a bounded
// per-call wait. Generated per-service Client types (see package
// typetest) compose an *Engine rather than reimplementing any of this.
package client

import (
	"net"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/protocol"
)

// pollInterval is the listener's receive timeout — the cadence at which
// it re-checks the shutdown signal, per spec.md §5's "1-second poll
// timeout (liveness tick)".
const pollInterval = 1 * time.Second

// Transport abstracts the two wire bindings (spec.md §4.3) behind one
// shape the Engine can drive uniformly: send a fully framed message,
// and receive the next one with a bounded wait that distinguishes "no
// data yet" (a liveness tick) from "the endpoint is dead".
type Transport interface {
	// Send writes one message, applying whatever framing the binding
	// requires.
	Send(message []byte) error
	// Receive waits up to timeout for the next message. timedOut is
	// true when the wait elapsed with no data — callers must treat
	// that as a liveness tick, not a failure. A non-nil err means the
	// transport is dead and the listener should exit.
	Receive(timeout time.Duration) (message []byte, timedOut bool, err error)
	// Close releases the underlying connection.
	Close() error
}

// streamTransport implements Transport over a net.Conn using the
// length-prefixed stream frame. A zero or negative read is teardown, not
// a liveness tick — the connection is gone.
type streamTransport struct {
	conn net.Conn
}

// NewStreamTransport wraps conn for the stream binding.
func NewStreamTransport(conn net.Conn) Transport {
	return &streamTransport{conn: conn}
}

func (t *streamTransport) Send(message []byte) error {
	return protocol.EncodeFrame(t.conn, message)
}

func (t *streamTransport) Receive(timeout time.Duration) ([]byte, bool, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, false, err
	}
	msg, err := protocol.DecodeFrame(t.conn)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, true, nil
		}
		return nil, false, err
	}
	return msg, false, nil
}

func (t *streamTransport) Close() error {
	return t.conn.Close()
}

// datagramTransport implements Transport over a connected net.PacketConn
// using the length-duplicated datagram frame. A receive timeout is a
// liveness tick, per spec.md §4.4 — the datagram binding has no notion
// of end-of-stream.
type datagramTransport struct {
	conn net.PacketConn
	addr net.Addr
}

// NewDatagramTransport wraps conn for the datagram binding, sending every
// message to addr and accepting responses from it.
func NewDatagramTransport(conn net.PacketConn, addr net.Addr) Transport {
	return &datagramTransport{conn: conn, addr: addr}
}

func (t *datagramTransport) Send(message []byte) error {
	packet := protocol.EncodeDatagram(message)
	_, err := t.conn.WriteTo(packet, t.addr)
	return err
}

func (t *datagramTransport) Receive(timeout time.Duration) ([]byte, bool, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, false, err
	}
	buf := make([]byte, protocol.MaxFrameSize+protocol.LengthPrefixSize)
	n, _, err := t.conn.ReadFrom(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, true, nil
		}
		return nil, false, err
	}
	msg, err := protocol.DecodeDatagram(buf[:n])
	if err != nil {
		// A malformed datagram is dropped, not fatal — the binding
		// just waits for the next packet.
		return nil, true, nil
	}
	return msg, false, nil
}

func (t *datagramTransport) Close() error {
	return t.conn.Close()
}
