package middleware

import (
	"context"
	"log"
	"time"

	"github.com/hujiansuntec-arch/IDL-tools/message"
)

// LoggingMiddleware logs the message id and processing time of every
// request, and the error if the handler returned one.
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			start := time.Now()
			resp, err := next(ctx, requestMessage)
			duration := time.Since(start)

			id, peekErr := message.PeekID(requestMessage)
			if peekErr != nil {
				log.Printf("request: malformed message, duration=%s", duration)
				return resp, err
			}
			if err != nil {
				log.Printf("request: id=%d duration=%s error=%v", id, duration, err)
			} else {
				log.Printf("request: id=%d duration=%s", id, duration)
			}
			return resp, err
		}
	}
}
