// Package server implements the two server engines spec.md §4.5
// describes: a stream-binding Server (accept loop, one goroutine per
// connection, tracked client set) and a datagram-binding DatagramServer
// (single receive loop, ephemeral client registration). Both dispatch
// by message id through a static DispatchTable instead of the
// reflect-based service lookup older RPC frameworks use — the
// generated per-service code (see package typetest) builds the table.
package server

import "context"

// HandlerFunc decodes a request payload, runs the business logic, and
// returns the encoded response message. Its shape matches
// middleware.HandlerFunc so a DispatchTable lookup can sit directly at
// the bottom of a middleware chain. The calling Client is reached
// through ctx via ClientFromContext, not a dedicated parameter, so
// this type stays exactly what the middleware chain expects.
type HandlerFunc func(ctx context.Context, requestMessage []byte) (responseMessage []byte, err error)

// DispatchTable maps a request message id to the handler that answers
// it. Generated code builds one of these per service; both Server and
// DatagramServer drive it identically.
type DispatchTable map[uint32]HandlerFunc

type clientContextKey struct{}

// ContextWithClient attaches the originating Client to ctx, so a
// handler deep in the middleware chain can recover which connection or
// datagram peer made the request — most commonly, to target a push
// notification back at the same client.
func ContextWithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientContextKey{}, c)
}

// ClientFromContext recovers the Client attached by ContextWithClient.
func ClientFromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(clientContextKey{}).(Client)
	return c, ok
}
