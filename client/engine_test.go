package client

import (
	"encoding/binary"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/protocol"
)

func encodeIDMessage(id uint32, rest ...byte) []byte {
	buf := make([]byte, 4+len(rest))
	binary.BigEndian.PutUint32(buf[:4], id)
	copy(buf[4:], rest)
	return buf
}

// fakeStreamServer accepts one stream connection and lets the test script its
// responses, mirroring server_test.go's raw-socket style in the teacher.
func fakeStreamServer(t *testing.T) (addr string, acceptedConn chan net.Conn, stop func()) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ch := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		ch <- conn
	}()
	return ln.Addr().String(), ch, func() { ln.Close() }
}

func TestEngineCallRoundTrip(t *testing.T) {
	addr, accepted, stop := fakeStreamServer(t)
	defer stop()

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	engine, err := DialStream(host, port, nil, time.Second)
	if err != nil {
		t.Fatalf("DialStream: %v", err)
	}
	defer engine.Close()

	serverConn := <-accepted
	defer serverConn.Close()

	go func() {
		req, err := protocol.DecodeFrame(serverConn)
		if err != nil {
			return
		}
		if gotReqID := binary.BigEndian.Uint32(req[:4]); gotReqID != 1000 {
			t.Errorf("server saw request id %d, want 1000", gotReqID)
		}
		resp := encodeIDMessage(1001, 0, 0, 0, 0, 0x2A)
		protocol.EncodeFrame(serverConn, resp)
	}()

	req := encodeIDMessage(1000, 1, 2, 3)
	resp, err := engine.Call(1001, req)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	gotID := binary.BigEndian.Uint32(resp[:4])
	if gotID != 1001 {
		t.Fatalf("got response id %d, want 1001", gotID)
	}
}

func TestEngineCallTimeout(t *testing.T) {
	addr, accepted, stop := fakeStreamServer(t)
	defer stop()

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	engine, err := DialStream(host, port, nil, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("DialStream: %v", err)
	}
	defer engine.Close()

	serverConn := <-accepted
	defer serverConn.Close()

	req := encodeIDMessage(1000, 1)
	_, err = engine.Call(1001, req)
	if err != ErrCallTimeout {
		t.Fatalf("got %v, want ErrCallTimeout", err)
	}
}

func TestEngineDispatchesPushSynchronously(t *testing.T) {
	addr, accepted, stop := fakeStreamServer(t)
	defer stop()

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	received := make(chan []byte, 1)
	handlers := map[uint32]PushHandler{
		2000: func(msg []byte) { received <- msg },
	}

	engine, err := DialStream(host, port, handlers, time.Second)
	if err != nil {
		t.Fatalf("DialStream: %v", err)
	}
	defer engine.Close()

	serverConn := <-accepted
	defer serverConn.Close()

	push := encodeIDMessage(2000, 9, 9, 9)
	if err := protocol.EncodeFrame(serverConn, push); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	select {
	case msg := <-received:
		if binary.BigEndian.Uint32(msg[:4]) != 2000 {
			t.Fatalf("got id %d, want 2000", binary.BigEndian.Uint32(msg[:4]))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("push handler was not invoked")
	}
}

func TestEngineCloseJoinsListener(t *testing.T) {
	addr, accepted, stop := fakeStreamServer(t)
	defer stop()

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	engine, err := DialStream(host, port, nil, time.Second)
	if err != nil {
		t.Fatalf("DialStream: %v", err)
	}
	serverConn := <-accepted
	defer serverConn.Close()

	done := make(chan struct{})
	go func() {
		engine.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(pollInterval + 2*time.Second):
		t.Fatal("Close did not return within poll interval + epsilon")
	}
}
