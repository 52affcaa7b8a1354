package middleware

import (
	"context"
	"errors"
	"time"
)

// ErrHandlerTimeout is returned when a handler does not finish within
// the timeout TimeoutMiddleware enforces.
var ErrHandlerTimeout = errors.New("middleware: handler timed out")

type timeoutResult struct {
	resp []byte
	err  error
}

// TimeoutMiddleware bounds how long the rest of the chain may take to
// answer a request. The handler goroutine is not killed on timeout —
// it keeps running and its result, if any, is discarded.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan timeoutResult, 1)
			go func() {
				resp, err := next(ctx, requestMessage)
				done <- timeoutResult{resp: resp, err: err}
			}()

			select {
			case result := <-done:
				return result.resp, result.err
			case <-ctx.Done():
				return nil, ErrHandlerTimeout
			}
		}
	}
}
