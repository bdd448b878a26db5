package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		Attempts:    attempts,
		BackoffBase: time.Millisecond,
		Label:       "test",
	}
}

func upstreamReq(url string) *UpstreamRequest {
	return &UpstreamRequest{URL: url, Headers: http.Header{}, Body: []byte(`{}`)}
}

func TestFetch_SucceedsFirstAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := Fetch(context.Background(), srv.Client(), upstreamReq(srv.URL), fastPolicy(3), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := Fetch(context.Background(), srv.Client(), upstreamReq(srv.URL), fastPolicy(3), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestFetch_NeverExceedsAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := Fetch(context.Background(), srv.Client(), upstreamReq(srv.URL), fastPolicy(3), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	// Exhausted retries still return the last response for inspection.
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want exactly 3", got)
	}
}

func TestFetch_NoRetryOutsideRetryStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"bad request", http.StatusBadRequest},
		{"payment required", http.StatusPaymentRequired},
		{"rate limited", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			resp, err := Fetch(context.Background(), srv.Client(), upstreamReq(srv.URL), fastPolicy(5), testLogger())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := atomic.LoadInt32(&calls); got != 1 {
				t.Errorf("calls = %d, want exactly 1", got)
			}
		})
	}
}

func TestFetch_NetworkErrorPropagatesOnFinalAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	_, err := Fetch(context.Background(), http.DefaultClient, upstreamReq(srv.URL), fastPolicy(2), testLogger())
	if err == nil {
		t.Fatal("expected network error after final attempt")
	}
}

func TestFetch_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := RetryPolicy{Attempts: 3, BackoffBase: time.Hour, Label: "test"}
	_, err := Fetch(ctx, srv.Client(), upstreamReq(srv.URL), policy, testLogger())
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
