package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/message"
	"github.com/hujiansuntec-arch/IDL-tools/middleware"
	"github.com/hujiansuntec-arch/IDL-tools/protocol"
)

// streamClient is the Server's Client implementation: one net.Conn,
// guarded by a write mutex that every Send takes, so a pushed message
// and a response being written concurrently don't interleave their
// frames.
type streamClient struct {
	conn    net.Conn
	writeMu sync.Mutex
}

func (c *streamClient) Send(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.EncodeFrame(c.conn, msg)
}

func (c *streamClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Server is the stream-binding server engine spec.md §4.5 describes:
// an accept loop handing each connection its own read goroutine, a
// tracked set of connected clients for broadcast, and graceful
// shutdown that waits for in-flight requests before returning.
type Server struct {
	dispatch    DispatchTable
	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc
	handlerOnce sync.Once

	listener net.Listener

	clientsMu sync.Mutex
	clients   map[*streamClient]struct{}

	onConnect    func(Client)
	onDisconnect func(Client)

	wg       sync.WaitGroup
	shutdown atomic.Bool
}

// NewServer builds a Server that dispatches requests through table.
func NewServer(dispatch DispatchTable) *Server {
	return &Server{
		dispatch: dispatch,
		clients:  make(map[*streamClient]struct{}),
	}
}

// Use registers a middleware. Middlewares run in the order added,
// wrapping the dispatch table lookup innermost.
func (s *Server) Use(mw middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw)
}

// OnClientConnected registers a hook run once a connection is accepted
// and tracked, before its read loop starts.
func (s *Server) OnClientConnected(fn func(Client)) {
	s.onConnect = fn
}

// OnClientDisconnected registers a hook run once a connection's read
// loop exits and it has been untracked.
func (s *Server) OnClientDisconnected(fn func(Client)) {
	s.onDisconnect = fn
}

// Serve listens on address and runs the accept loop until the listener
// is closed by Shutdown.
func (s *Server) Serve(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	s.listener = listener
	s.ensureHandler()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// ensureHandler builds the middleware chain around the dispatch table
// lookup exactly once, so Use calls after the first request has no
// effect — the same "built once at startup" contract the teacher's
// server follows.
func (s *Server) ensureHandler() {
	s.handlerOnce.Do(func() {
		s.handler = middleware.Chain(s.middlewares...)(s.lookupHandler)
	})
}

// lookupHandler is the innermost handler: it resolves the request's
// message id against the dispatch table and invokes the generated
// handler, returning ErrNoHandler for an id nothing registered.
func (s *Server) lookupHandler(ctx context.Context, requestMessage []byte) ([]byte, error) {
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

// ClientCount reports how many connections are currently tracked.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// handleConn runs the per-connection read loop: reads must stay
// sequential to parse frame boundaries, but each decoded request is
// handed to its own goroutine so a slow handler never blocks the next
// request on the same connection.
func (s *Server) handleConn(conn net.Conn) {
	s.ensureHandler()
	client := &streamClient{conn: conn}
	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	s.clientsMu.Unlock()

	if s.onConnect != nil {
		s.onConnect(client)
	}

	defer func() {
		conn.Close()
		s.clientsMu.Lock()
		delete(s.clients, client)
		s.clientsMu.Unlock()
		if s.onDisconnect != nil {
			s.onDisconnect(client)
		}
	}()

	for {
		requestMessage, err := protocol.DecodeFrame(conn)
		if err != nil {
			return
		}
		go s.handleRequest(client, requestMessage)
	}
}

func (s *Server) handleRequest(client *streamClient, requestMessage []byte) {
	s.wg.Add(1)
	defer s.wg.Done()

	ctx := ContextWithClient(context.Background(), client)
	responseMessage, err := s.handler(ctx, requestMessage)
	if err != nil {
		log.Printf("server: request failed: %v", err)
		return
	}
	if err := client.Send(responseMessage); err != nil {
		log.Printf("server: failed to write response: %v", err)
	}
}

// Broadcast sends message to every connected client except exclude, if
// exclude is non-nil. It is how a push channel's generated helper
// fans a notification out to the tracked client set.
func (s *Server) Broadcast(msg []byte, exclude Client) {
	s.clientsMu.Lock()
	targets := make([]*streamClient, 0, len(s.clients))
	for c := range s.clients {
		if exclude != nil && c == exclude {
			continue
		}
		targets = append(targets, c)
	}
	s.clientsMu.Unlock()

	for _, c := range targets {
		if err := c.Send(msg); err != nil {
			log.Printf("server: broadcast to %s failed: %v", c.RemoteAddr(), err)
		}
	}
}

// Shutdown stops accepting new connections and waits up to timeout for
// in-flight requests to finish.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.shutdown.Store(true)
	s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
