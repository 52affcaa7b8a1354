package middleware

import (
	"context"
	"encoding/binary"
	"testing"
	"time"
)

func encodeIDMessage(id uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, id)
	return buf
}

func echoHandler(ctx context.Context, requestMessage []byte) ([]byte, error) {
	return []byte("ok"), nil
}

func slowHandler(ctx context.Context, requestMessage []byte) ([]byte, error) {
	time.Sleep(200 * time.Millisecond)
	return []byte("ok"), nil
}

func TestLogging(t *testing.T) {
	handler := LoggingMiddleware()(echoHandler)

	resp, err := handler(context.Background(), encodeIDMessage(1))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if string(resp) != "ok" {
		t.Fatalf("expect payload 'ok', got '%s'", string(resp))
	}
}

func TestTimeoutPass(t *testing.T) {
	handler := TimeoutMiddleware(500 * time.Millisecond)(echoHandler)

	_, err := handler(context.Background(), encodeIDMessage(1))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
}

func TestTimeoutExceeded(t *testing.T) {
	handler := TimeoutMiddleware(50 * time.Millisecond)(slowHandler)

	_, err := handler(context.Background(), encodeIDMessage(1))
	if err != ErrHandlerTimeout {
		t.Fatalf("expect ErrHandlerTimeout, got %v", err)
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimitMiddleware(1, 2)(echoHandler)
	req := encodeIDMessage(1)

	for i := 0; i < 2; i++ {
		_, err := handler(context.Background(), req)
		if err != nil {
			t.Fatalf("request %d should pass, got error: %v", i, err)
		}
	}

	_, err := handler(context.Background(), req)
	if err != ErrRateLimited {
		t.Fatalf("request 3 should be rate limited, got: %v", err)
	}
}

func TestChain(t *testing.T) {
	chained := Chain(LoggingMiddleware(), TimeoutMiddleware(500*time.Millisecond))
	handler := chained(echoHandler)

	resp, err := handler(context.Background(), encodeIDMessage(1))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if string(resp) != "ok" {
		t.Fatalf("expect payload 'ok', got '%s'", string(resp))
	}
}
