package client

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/message"
)

// DefaultCallTimeout is the bounded wait for a matching response,
// spec.md §5's "default 5 seconds".
const DefaultCallTimeout = 5 * time.Second

// PushHandler is invoked synchronously on the listener goroutine when a
// push-channel message arrives, with the full encoded message (id +
// payload) so the generated wrapper can decode its own typed shape.
type PushHandler func(message []byte)

type pendingCall struct {
	result []byte
	err    error
}

// Engine is the transport-agnostic core spec.md §4.4 describes. One
// Engine owns one Transport, one listener goroutine, one send mutex, and
// one response-correlation map keyed by message id — exactly one
// in-flight call per method id, per spec.md §4.4's documented
// correlation rule (see SPEC_FULL.md "Open Questions" for why this
// fragility is kept rather than silently redesigned).
type Engine struct {
	transport   Transport
	callTimeout time.Duration

	sendMu sync.Mutex

	pending sync.Map // map[uint32]chan pendingCall, keyed by response message id

	pushHandlers map[uint32]PushHandler

	closing chan struct{}
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// NewEngine starts the listener goroutine and returns a ready Engine.
// pushHandlers maps a push channel's message id to the handler that
// should run when it arrives; it may be nil if the service declares no
// push channels. callTimeout <= 0 uses DefaultCallTimeout.
func NewEngine(t Transport, pushHandlers map[uint32]PushHandler, callTimeout time.Duration) *Engine {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	if pushHandlers == nil {
		pushHandlers = map[uint32]PushHandler{}
	}
	e := &Engine{
		transport:    t,
		callTimeout:  callTimeout,
		pushHandlers: pushHandlers,
		closing:      make(chan struct{}),
	}
	e.wg.Add(1)
	go e.listen()
	return e
}

// listen is the dedicated goroutine that reads frames from the transport
// in a loop, demultiplexing push notifications from RPC responses by
// message id. It is the only reader of the transport — reads must stay
// sequential for stream binding to parse frame boundaries correctly.
func (e *Engine) listen() {
	defer e.wg.Done()
	for {
		select {
		case <-e.closing:
			return
		default:
		}

		msg, timedOut, err := e.transport.Receive(pollInterval)
		if err != nil {
			e.teardown(err)
			return
		}
		if timedOut {
			continue // liveness tick; re-check the shutdown signal
		}

		id, err := message.PeekID(msg)
		if err != nil {
			log.Printf("client: dropping malformed frame: %v", err)
			continue
		}

		if handler, ok := e.pushHandlers[id]; ok {
			// Dispatched synchronously on the listener goroutine, per
			// spec.md §4.4 — a slow push handler delays subsequent
			// frames on this connection, by design.
			handler(msg)
			continue
		}

		if ch, ok := e.pending.LoadAndDelete(id); ok {
			ch.(chan pendingCall) <- pendingCall{result: msg}
		}
		// An id that matches neither a push channel nor a pending call
		// is an orphaned or unknown response; it is dropped.
	}
}

// Call serializes under the send mutex, registers the pending channel
// before sending to avoid a race with the listener, sends, and waits up
// to the call timeout for a response bearing respMsgID. It returns the
// full encoded response message (id + status + payload) for the
// generated wrapper to decode, or an error describing why no response
// arrived.
func (e *Engine) Call(respMsgID uint32, requestMessage []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrDisconnected
	}

	respCh := make(chan pendingCall, 1)
	e.pending.Store(respMsgID, respCh)
	defer e.pending.Delete(respMsgID)

	e.sendMu.Lock()
	err := e.transport.Send(requestMessage)
	e.sendMu.Unlock()
	if err != nil {
		return nil, err
	}

	select {
	case result := <-respCh:
		return result.result, result.err
	case <-time.After(e.callTimeout):
		return nil, ErrCallTimeout
	case <-e.closing:
		return nil, ErrDisconnected
	}
}

// teardown marks the engine closed, releases the transport, and fails
// every pending call with ErrDisconnected so no caller blocks forever on
// a connection that is already dead.
func (e *Engine) teardown(err error) {
	if e.closed.Swap(true) {
		return
	}
	log.Printf("client: listener stopped: %v", err)
	e.transport.Close()
	e.pending.Range(func(key, value any) bool {
		value.(chan pendingCall) <- pendingCall{err: ErrDisconnected}
		return true
	})
}

// Close stops the listener and releases the transport. It is safe to
// call more than once. Any call still in flight observes ErrDisconnected.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	close(e.closing)
	err := e.transport.Close()
	e.wg.Wait()
	e.pending.Range(func(key, value any) bool {
		value.(chan pendingCall) <- pendingCall{err: ErrDisconnected}
		return true
	})
	return err
}

// Closed reports whether the engine has stopped accepting calls.
func (e *Engine) Closed() bool {
	return e.closed.Load()
}
