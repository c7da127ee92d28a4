// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package annict

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/island/internal/config"
)

func testConfig(baseURL string) *config.AnnictConfig {
	return &config.AnnictConfig{
		BaseURL:           baseURL,
		Token:             "test-token",
		PerPage:           50,
		Timeout:           5 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testConfig(server.URL),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithRateLimitBackoff(time.Millisecond),
	)
}

func TestClientGetAddsTokenAndParams(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"works":[{"id":1,"title":"A"}],"total_count":1}`))
	})

	var out map[string]any
	params := url.Values{"fields": {"id,title"}, "page": {"2"}}
	if err := client.Get(context.Background(), "/v1/works", params, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if gotPath != "/v1/works" {
		t.Errorf("path = %q, want /v1/works", gotPath)
	}
	if gotQuery.Get("access_token") != "test-token" {
		t.Errorf("access_token = %q", gotQuery.Get("access_token"))
	}
	if gotQuery.Get("fields") != "id,title" || gotQuery.Get("page") != "2" {
		t.Errorf("query = %v", gotQuery)
	}
	if params.Get("access_token") != "" {
		t.Error("Get() mutated the caller's params")
	}
	if _, ok := out["works"]; !ok {
		t.Errorf("decoded body = %v", out)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"staffs":[]}`))
	})

	var out map[string]any
	if err := client.Get(context.Background(), "/v1/staffs", nil, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClientRetriesDecodeErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"works": [`))
			return
		}
		_, _ = w.Write([]byte(`{"works":[]}`))
	})

	var out map[string]any
	if err := client.Get(context.Background(), "/v1/works", nil, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClientGivesUpAfterAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	err := client.Get(context.Background(), "/v1/works", nil, &map[string]any{})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("Get() error = %v, want ErrAPI", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Get() error = %v, want StatusError 503", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3 (retry_attempts)", got)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"errors":[{"type":"invalid_token"}]}`, http.StatusUnauthorized)
	})

	err := client.Get(context.Background(), "/v1/works", nil, &map[string]any{})
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Get() error = %v, want StatusError 401", err)
	}
	if !strings.Contains(se.Body, "invalid_token") {
		t.Errorf("StatusError.Body = %q", se.Body)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestClientNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	err := client.Get(context.Background(), "/v1/nope", nil, &map[string]any{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if errors.Is(&StatusError{StatusCode: http.StatusForbidden}, ErrNotFound) {
		t.Error("403 should not match ErrNotFound")
	}
}

func TestClientHonoursRetryAfter(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"reviews":[]}`))
	})

	if err := client.Get(context.Background(), "/v1/reviews", nil, &map[string]any{}); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClientRateLimitExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	cfg.RetryAttempts = 1
	client := NewClient(cfg, WithLimiter(rate.NewLimiter(rate.Inf, 1)), WithRateLimitBackoff(time.Microsecond))

	err := client.Get(context.Background(), "/v1/works", nil, &map[string]any{})
	if !errors.Is(err, ErrRateLimited) || !errors.Is(err, ErrAPI) {
		t.Fatalf("Get() error = %v, want ErrRateLimited", err)
	}
	if got := calls.Load(); got != maxRateLimitRetries+1 {
		t.Errorf("calls = %d, want %d", got, maxRateLimitRetries+1)
	}
}

func TestClientContextCanceled(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Get(ctx, "/v1/works", nil, &map[string]any{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

func TestClientCircuitOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	})

	// 4 Gets x 3 attempts = 12 failures, enough to trip at 10 requests.
	for i := 0; i < 4; i++ {
		_ = client.Get(context.Background(), "/v1/works", nil, &map[string]any{})
	}
	before := calls.Load()

	err := client.Get(context.Background(), "/v1/works", nil, &map[string]any{})
	if !errors.Is(err, ErrAPI) || !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Get() error = %v, want ErrCircuitOpen", err)
	}
	if calls.Load() != before {
		t.Errorf("request reached the server while the circuit was open")
	}
}

func TestRedactToken(t *testing.T) {
	t.Parallel()

	cause := context.DeadlineExceeded
	err := redactToken(&url.Error{Op: "Get", URL: "https://api.annict.com/v1/works?access_token=s3cret", Err: cause}, "s3cret")
	if strings.Contains(err.Error(), "s3cret") {
		t.Errorf("redacted error still contains token: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("redactToken lost the wrapped cause")
	}
}
