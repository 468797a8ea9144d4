package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	drepo "StockScout/internal/domain/repository"
	"StockScout/internal/service/ratelimit"
)

func testClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()
	return New(Config{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		RequestDelay:   time.Millisecond,
		RequestTimeout: time.Second,
		MaxRetries:     maxRetries,
	}, ratelimit.New(2), nil, nil)
}

func TestFetchSuccess(t *testing.T) {
	var tokens int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") == "test-key" {
			atomic.AddInt32(&tokens, 1)
		}
		w.Write([]byte(`{"c":123.4}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2)
	body, err := c.Fetch(context.Background(), drepo.EndpointQuote, "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != `{"c":123.4}` {
		t.Fatalf("unexpected body %q", body)
	}
	if atomic.LoadInt32(&tokens) != 1 {
		t.Fatalf("expected authenticated request")
	}
}

func TestFetchRateLimitedExhaustsRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2)
	_, err := c.Fetch(context.Background(), drepo.EndpointProfile, "ZZZ")
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if rl.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", rl.Attempts)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 requests, got %d", hits)
	}
}

func TestFetchUpstreamErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2)
	_, err := c.Fetch(context.Background(), drepo.EndpointQuote, "AAPL")
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusForbidden {
		t.Fatalf("unexpected status %d", ue.Status)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("fatal status must not be retried, got %d requests", hits)
	}
}

func TestFetchTransientExhaustsRetries(t *testing.T) {
	// closed server: every attempt fails at the transport layer
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := testClient(t, srv.URL, 1)
	_, err := c.Fetch(context.Background(), drepo.EndpointFundamentals, "AAPL")
	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if ue.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", ue.Attempts)
	}
	if ue.Unwrap() == nil {
		t.Fatalf("expected wrapped transport error")
	}
}

func TestFetchRecoversWithinRetryBudget(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2)
	body, err := c.Fetch(context.Background(), drepo.EndpointProfile, "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != `{"name":"ok"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchHoldsSlotAcrossRetries(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	pool := ratelimit.New(1)
	c := New(Config{
		APIKey:         "k",
		BaseURL:        srv.URL,
		RequestDelay:   time.Millisecond,
		RequestTimeout: time.Second,
		MaxRetries:     0,
	}, pool, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), drepo.EndpointQuote, "AAPL")
	}()

	// wait until the in-flight fetch owns the only slot
	deadline := time.Now().Add(time.Second)
	for pool.InUse() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("fetch never acquired slot")
		}
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Acquire(ctx); err == nil {
		t.Fatalf("slot should be held while request is in flight")
	}

	close(release)
	<-done
}
