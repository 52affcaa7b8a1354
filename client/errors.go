package client

import "errors"

var (
	// ErrCallTimeout is returned when no matching response arrives
	// within the call timeout (spec.md §7, "call timeout").
	ErrCallTimeout = errors.New("client: call timed out waiting for response")
	// ErrDisconnected is returned when a call is made on a client whose
	// listener has already terminated, or when the listener terminates
	// while a call is in flight (spec.md §7, "disconnected call").
	ErrDisconnected = errors.New("client: not connected")
	// ErrMalformedResponse names a response frame that the generated
	// type layer cannot decode. Neither Engine nor the typetest clients
	// return it: they report a decode failure by wrapping the wire
	// package's error instead.
	ErrMalformedResponse = errors.New("client: malformed response")
)
