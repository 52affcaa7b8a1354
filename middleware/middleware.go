// Package middleware implements the onion-model request chain the
// server engine wraps its dispatch table in: each middleware sees the
// raw request message before the next layer, and its response after.
// The HandlerFunc shape matches server.HandlerFunc exactly, so a
// DispatchTable lookup can sit directly at the bottom of a chain.
package middleware

import "context"

// HandlerFunc answers one request message with a response message.
type HandlerFunc func(ctx context.Context, requestMessage []byte) ([]byte, error)

// Middleware wraps a HandlerFunc with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one, applied in the order given:
// Chain(A, B, C)(handler) runs A's before-logic, then B's, then C's,
// then handler, then C's after-logic, then B's, then A's.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
