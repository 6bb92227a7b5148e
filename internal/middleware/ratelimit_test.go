package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, "login", limit, window), mr
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := testLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("request %d: ok=%v err=%v", i+1, ok, err)
		}
	}

	if ok, _ := rl.Allow(ctx, "10.0.0.1"); ok {
		t.Error("4th request should be rate-limited")
	}
	if ok, _ := rl.Allow(ctx, "10.0.0.2"); !ok {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl, mr := testLimiter(t, 1, time.Minute)
	ctx := context.Background()

	rl.Allow(ctx, "10.0.0.1")
	if ok, _ := rl.Allow(ctx, "10.0.0.1"); ok {
		t.Fatal("should be rate-limited")
	}

	mr.FastForward(time.Minute + time.Second)

	if ok, _ := rl.Allow(ctx, "10.0.0.1"); !ok {
		t.Error("should be allowed after window expires")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := testLimiter(t, 1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login/", nil)
		req.RemoteAddr = "192.168.1.5:4000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := post(); code != http.StatusOK {
		t.Fatalf("first POST: got %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("second POST: got %d, want 429", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/login/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("GET should not be limited, got %d", rr.Code)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl, mr := testLimiter(t, 1, time.Minute)
	mr.Close()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/register/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200 when valkey is down", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "remote addr", remote: "10.1.1.1:5555", want: "10.1.1.1"},
		{name: "ipv6 remote", remote: "[::1]:5555", want: "::1"},
		{name: "forwarded for", header: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, remote: "10.0.0.1:1", want: "1.2.3.4"},
		{name: "real ip", header: map[string]string{"X-Real-IP": " 5.6.7.8 "}, remote: "10.0.0.1:1", want: "5.6.7.8"},
		{name: "no port", remote: "10.9.9.9", want: "10.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
