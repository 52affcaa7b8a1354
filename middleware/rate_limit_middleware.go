package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a request is rejected by
// RateLimitMiddleware.
var ErrRateLimited = errors.New("middleware: rate limit exceeded")

// RateLimitMiddleware rejects requests once the token bucket (rate r
// per second, burst capacity burst) is exhausted.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, requestMessage []byte) ([]byte, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, requestMessage)
		}
	}
}
