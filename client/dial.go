package client

import (
	"fmt"
	"net"
	"time"
)

// DialStream connects to a stream-binding server at host:port and
// returns a ready Engine. This is the runtime surface spec.md §6 names
// "connect(host, port)" for the stream transport. callTimeout <= 0 uses
// DefaultCallTimeout.
func DialStream(host string, port int, pushHandlers map[uint32]PushHandler, callTimeout time.Duration) (*Engine, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewEngine(NewStreamTransport(conn), pushHandlers, callTimeout), nil
}

// DialDatagram connects to a datagram-binding server at host:port and
// returns a ready Engine. callTimeout <= 0 uses DefaultCallTimeout.
func DialDatagram(host string, port int, pushHandlers map[uint32]PushHandler, callTimeout time.Duration) (*Engine, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	return NewEngine(NewDatagramTransport(conn, raddr), pushHandlers, callTimeout), nil
}
