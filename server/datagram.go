package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/message"
	"github.com/hujiansuntec-arch/IDL-tools/middleware"
	"github.com/hujiansuntec-arch/IDL-tools/protocol"
)

// datagramClient identifies a peer by its source address; the
// datagram binding has no connection object to hang identity off, so
// the server keeps one of these per address it has heard from.
type datagramClient struct {
	conn net.PacketConn
	addr net.Addr
}

func (c *datagramClient) Send(msg []byte) error {
	packet := protocol.EncodeDatagram(msg)
	_, err := c.conn.WriteTo(packet, c.addr)
	return err
}

func (c *datagramClient) RemoteAddr() string {
	return c.addr.String()
}

// trackedDatagramClient is a registered peer. The datagram binding has
// no connection teardown signal, so per spec.md §4.5 the set only ever
// grows until Shutdown — there is no eviction path.
type trackedDatagramClient struct {
	client *datagramClient
}

// DatagramServer is the datagram-binding server engine spec.md §4.5
// describes: a single receive loop (one UDP socket, no per-peer
// connection) that registers each source address the first time it
// hears from it and keeps it registered until Shutdown, so broadcasts
// reach every peer that has sent at least one datagram.
type DatagramServer struct {
	conn     net.PacketConn
	dispatch DispatchTable

	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc
	handlerOnce sync.Once

	clientsMu sync.Mutex
	clients   map[string]*trackedDatagramClient

	onConnect    func(Client)
	onDisconnect func(Client)

	wg   sync.WaitGroup
	done chan struct{}
}

// NewDatagramServer builds a DatagramServer that dispatches requests
// through table.
func NewDatagramServer(dispatch DispatchTable) *DatagramServer {
	return &DatagramServer{
		dispatch: dispatch,
		clients:  make(map[string]*trackedDatagramClient),
		done:     make(chan struct{}),
	}
}

// Use registers a middleware, same semantics as Server.Use.
func (s *DatagramServer) Use(mw middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw)
}

// OnClientConnected registers a hook run the first time a source
// address is heard from.
func (s *DatagramServer) OnClientConnected(fn func(Client)) {
	s.onConnect = fn
}

// OnClientDisconnected registers a hook for parity with Server; the
// datagram binding never evicts a registered peer on its own (spec.md
// §4.5 — the set only shrinks on Shutdown), so this hook never fires.
func (s *DatagramServer) OnClientDisconnected(fn func(Client)) {
	s.onDisconnect = fn
}

// Serve listens on address and runs the single receive loop until
// Shutdown closes the socket. One datagram carries exactly one
// message, per spec.md §4.3's datagram framing.
func (s *DatagramServer) Serve(address string) error {
	conn, err := net.ListenPacket("udp", address)
	if err != nil {
		return err
	}
	s.conn = conn
	s.ensureHandler()

	buf := make([]byte, protocol.MaxFrameSize+protocol.LengthPrefixSize)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				return err
			}
		}

		requestMessage, err := protocol.DecodeDatagram(buf[:n])
		if err != nil {
			log.Printf("server: dropping malformed datagram from %s: %v", addr, err)
			continue
		}

		client := s.registerClient(addr)
		s.wg.Add(1)
		go s.handleRequest(client, requestMessage)
	}
}

func (s *DatagramServer) registerClient(addr net.Addr) *datagramClient {
	key := addr.String()
	s.clientsMu.Lock()
	tracked, existed := s.clients[key]
	if !existed {
		tracked = &trackedDatagramClient{client: &datagramClient{conn: s.conn, addr: addr}}
		s.clients[key] = tracked
	}
	s.clientsMu.Unlock()

	if !existed && s.onConnect != nil {
		s.onConnect(tracked.client)
	}
	return tracked.client
}

// ClientCount reports how many distinct source addresses are
// currently registered.
func (s *DatagramServer) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// ensureHandler builds the middleware chain around the dispatch table
// lookup exactly once.
func (s *DatagramServer) ensureHandler() {
	s.handlerOnce.Do(func() {
		s.handler = middleware.Chain(s.middlewares...)(s.lookupHandler)
	})
}

func (s *DatagramServer) lookupHandler(ctx context.Context, requestMessage []byte) ([]byte, error) {
	id, err := message.PeekID(requestMessage)
	if err != nil {
		return nil, err
	}
	handler, ok := s.dispatch[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoHandler, id)
	}
	return handler(ctx, requestMessage)
}

func (s *DatagramServer) handleRequest(client *datagramClient, requestMessage []byte) {
	defer s.wg.Done()
	s.ensureHandler()

	ctx := ContextWithClient(context.Background(), client)
	responseMessage, err := s.handler(ctx, requestMessage)
	if err != nil {
		log.Printf("server: request from %s failed: %v", client.RemoteAddr(), err)
		return
	}
	if err := client.Send(responseMessage); err != nil {
		log.Printf("server: failed to write response to %s: %v", client.RemoteAddr(), err)
	}
}

// Broadcast sends message to every registered peer except exclude, if
// exclude is non-nil.
func (s *DatagramServer) Broadcast(msg []byte, exclude Client) {
	s.clientsMu.Lock()
	targets := make([]*datagramClient, 0, len(s.clients))
	for _, tracked := range s.clients {
		if exclude != nil && tracked.client == exclude {
			continue
		}
		targets = append(targets, tracked.client)
	}
	s.clientsMu.Unlock()

	for _, c := range targets {
		if err := c.Send(msg); err != nil {
			log.Printf("server: broadcast to %s failed: %v", c.RemoteAddr(), err)
		}
	}
}

// Shutdown closes the socket, empties the registered client set, and
// waits up to timeout for in-flight requests to finish.
func (s *DatagramServer) Shutdown(timeout time.Duration) error {
	close(s.done)
	s.conn.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	s.clientsMu.Lock()
	s.clients = make(map[string]*trackedDatagramClient)
	s.clientsMu.Unlock()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
