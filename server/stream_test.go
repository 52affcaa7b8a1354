package server

import (
	"context"
	"encoding/binary"
	"net"
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

func echoDispatch() DispatchTable {
	return DispatchTable{
		1000: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			return encodeIDMessage(1001, requestMessage[4:]...), nil
		},
	}
}

func TestServerDispatchesRequest(t *testing.T) {
	srv := NewServer(echoDispatch())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn)
		}
	}()
	defer ln.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := encodeIDMessage(1000, 7, 8, 9)
	if err := protocol.EncodeFrame(conn, req); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := protocol.DecodeFrame(conn)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if binary.BigEndian.Uint32(resp[:4]) != 1001 {
		t.Fatalf("got response id %d, want 1001", binary.BigEndian.Uint32(resp[:4]))
	}
	if string(resp[4:]) != string([]byte{7, 8, 9}) {
		t.Fatalf("got payload %v, want [7 8 9]", resp[4:])
	}
}

func TestServerConnectDisconnectHooks(t *testing.T) {
	srv := NewServer(echoDispatch())
	connected := make(chan struct{}, 1)
	disconnected := make(chan struct{}, 1)
	srv.OnClientConnected(func(c Client) { connected <- struct{}{} })
	srv.OnClientDisconnected(func(c Client) { disconnected <- struct{}{} })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn)
		}
	}()
	defer ln.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClientConnected was not called")
	}

	if got := srv.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}

	conn.Close()

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClientDisconnected was not called")
	}

	if got := srv.ClientCount(); got != 0 {
		t.Fatalf("ClientCount = %d, want 0", got)
	}
}

// TestServerBroadcastReachesEveryConnection asserts that an
// unexcluded Broadcast (exclude == nil) reaches every connected
// client. Exclusion itself is covered separately by
// TestServerBroadcastExcludesSender below.
func TestServerBroadcastReachesEveryConnection(t *testing.T) {
	srv := NewServer(DispatchTable{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn)
		}
	}()
	defer ln.Close()

	connA, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close()
	connB, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	// Give the accept loop time to register both clients.
	time.Sleep(100 * time.Millisecond)

	srv.Broadcast(encodeIDMessage(2000), nil)

	connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	connB.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := protocol.DecodeFrame(connA); err != nil {
		t.Fatalf("A did not receive broadcast: %v", err)
	}
	if _, err := protocol.DecodeFrame(connB); err != nil {
		t.Fatalf("B did not receive broadcast: %v", err)
	}
}

// TestServerBroadcastExcludesSender asserts that passing a Client to
// Broadcast's exclude parameter skips exactly that client: the sender
// gets nothing while every other connection still receives the
// message, mirroring TestDatagramServerBroadcastExcludesSender.
func TestServerBroadcastExcludesSender(t *testing.T) {
	srv := NewServer(DispatchTable{})

	clients := make(chan Client, 2)
	srv.OnClientConnected(func(c Client) { clients <- c })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn)
		}
	}()
	defer ln.Close()

	connA, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close()
	connB, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	// Match each accepted Client back to its local dial by remote
	// address: the server's view of a connection's RemoteAddr is the
	// client's own LocalAddr.
	var clientA, clientB Client
	for i := 0; i < 2; i++ {
		select {
		case c := <-clients:
			switch c.RemoteAddr() {
			case connA.LocalAddr().String():
				clientA = c
			case connB.LocalAddr().String():
				clientB = c
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for both clients to connect")
		}
	}
	if clientA == nil || clientB == nil {
		t.Fatalf("failed to identify both clients: A=%v B=%v", clientA, clientB)
	}

	srv.Broadcast(encodeIDMessage(2000), clientA)

	connB.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := protocol.DecodeFrame(connB); err != nil {
		t.Fatalf("B did not receive broadcast: %v", err)
	}

	connA.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, err := protocol.DecodeFrame(connA); err == nil {
		t.Fatal("A (the excluded sender) unexpectedly received the broadcast")
	}
}

func TestServerShutdownWaitsForInFlight(t *testing.T) {
	release := make(chan struct{})
	dispatch := DispatchTable{
		1000: func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			<-release
			return encodeIDMessage(1001), nil
		},
	}
	srv := NewServer(dispatch)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv.listener = ln
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn)
		}
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := protocol.EncodeFrame(conn, encodeIDMessage(1000)); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	time.Sleep(100 * time.Millisecond) // let handleRequest start and wg.Add(1)

	shutdownDone := make(chan error, 1)
	go func() { shutdownDone <- srv.Shutdown(2 * time.Second) }()

	select {
	case <-shutdownDone:
		t.Fatal("Shutdown returned before in-flight request finished")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-shutdownDone:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return after in-flight request finished")
	}
}
