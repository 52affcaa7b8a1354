package server

import "errors"

var (
	// ErrShutdownTimeout is returned by Shutdown when in-flight
	// requests do not finish within the given timeout.
	ErrShutdownTimeout = errors.New("server: shutdown timed out waiting for in-flight requests")
	// ErrNoHandler is returned when a request's message id matches no
	// entry in the dispatch table. spec.md §4.5 treats this as "drop
	// and continue", not fatal to the connection — the caller logs it
	// and moves on rather than tearing anything down.
	ErrNoHandler = errors.New("server: no handler registered for message id")
)
