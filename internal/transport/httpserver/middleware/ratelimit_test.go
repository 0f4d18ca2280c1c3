package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterPerClient(t *testing.T) {
	limiter := NewRateLimiter(1, 2, time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatalf("expected burst of 2 to pass")
	}
	if limiter.Allow("a") {
		t.Fatalf("expected third request to be limited")
	}
	if !limiter.Allow("b") {
		t.Fatalf("expected other clients to have their own bucket")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("a") {
		t.Fatalf("expected a token to refill after a second")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1, time.Minute)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for _, method := range []string{http.MethodPost, http.MethodPost, http.MethodOptions} {
		req := httptest.NewRequest(method, "/functions/v1/delete-user", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusOK {
		t.Fatalf("unexpected status codes %v", codes)
	}
}
