package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counts: make(map[string]int64)}
}

func (s *memoryStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			http.Error(w, "empty body", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func loginRequestWith(email, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(`{"email":"`+email+`","password":"pw"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ip + ":51234"
	return req
}

func TestAuthRateLimitPerEmail(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, store, middlewareLogger())(okHandler())

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.1"))
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.1"))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}

	// Another address is unaffected.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequestWith("other@example.com", "10.0.0.1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for different email got %d", resp.Code)
	}
}

func TestAuthRateLimitEmailCaseInsensitive(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, store, middlewareLogger())(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequestWith("User@Example.com", "10.0.0.1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.1"))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same email in different case got %d", resp.Code)
	}
}

func TestAuthRateLimitPerIP(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)
	handler := AuthRateLimit(policy, store, middlewareLogger())(okHandler())

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.1"))
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.1"))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.2"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for different ip got %d", resp.Code)
	}
}

func TestAuthRateLimitBodyStaysReadable(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 5)
	handler := AuthRateLimit(policy, store, middlewareLogger())(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("downstream handler lost the body, got %d", resp.Code)
	}
}

func TestAuthRateLimitHonorsForwardedFor(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, middlewareLogger())(okHandler())

	req := loginRequestWith("user@example.com", "10.0.0.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	for key := range store.counts {
		if !strings.Contains(key, "203.0.113.9") {
			t.Fatalf("expected counter keyed on forwarded ip, got %q", key)
		}
	}
}

func TestAuthRateLimitDisabledPolicy(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", 0, 10, 10)
	handler := AuthRateLimit(policy, store, middlewareLogger())(okHandler())

	for i := 0; i < 30; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, loginRequestWith("user@example.com", "10.0.0.1"))
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, resp.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("expected no counters for a disabled policy, got %d", len(store.counts))
	}
}
