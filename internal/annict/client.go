// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package annict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/metrics"
)

var (
	// ErrAPI wraps every error returned by Client.Get.
	ErrAPI = errors.New("annict api request failed")

	// ErrNotFound matches a StatusError for HTTP 404.
	ErrNotFound = errors.New("annict resource not found")

	// ErrRateLimited is returned when HTTP 429 persists through every backoff.
	ErrRateLimited = errors.New("annict api rate limit exceeded")

	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("annict api circuit breaker open")
)

// maxRateLimitRetries bounds consecutive HTTP 429 responses within one attempt.
const maxRateLimitRetries = 5

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 512

// StatusError is returned for non-2xx responses other than 429.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// retryable reports whether another attempt may succeed. Client errors such
// as an invalid token never recover by retrying.
func (e *StatusError) retryable() bool {
	return e.StatusCode >= 500
}

// Client is a rate-limited, retrying Annict REST v1 client guarded by a
// circuit breaker. It is safe for concurrent use.
type Client struct {
	baseURL       string
	token         string
	httpClient    *http.Client
	limiter       *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
	rateLimitBase time.Duration
	cb            *gobreaker.CircuitBreaker[[]byte]
	cbName        string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithLimiter replaces the request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRateLimitBackoff sets the first 429 backoff when no Retry-After header is sent.
func WithRateLimitBackoff(d time.Duration) Option {
	return func(c *Client) { c.rateLimitBase = d }
}

// NewClient builds a Client from cfg.
//
// Circuit breaker configuration:
//   - Max 1 probe request in half-open state
//   - 1 minute measurement window
//   - 1 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewClient(cfg *config.AnnictConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		token:         cfg.Token,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retryAttempts: max(cfg.RetryAttempts, 1),
		retryDelay:    cfg.RetryDelay,
		rateLimitBase: time.Second,
		cbName:        "annict-api",
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics.CircuitBreakerState.WithLabelValues(c.cbName).Set(0)
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        c.cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		// Client errors mean the request was wrong, not that the API is down.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return !se.retryable()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
	return c
}

// Get requests path with params plus the access token and decodes the JSON
// response into out. Transport errors, 5xx responses and undecodable bodies
// are retried up to the configured attempts with a fixed delay.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.buildURL(path, params)

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: GET %s: %w", ErrAPI, path, ctx.Err())
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: GET %s: rate limiter: %w", ErrAPI, path, err)
		}

		body, err := c.execute(func() ([]byte, error) {
			return c.doRequestWithRateLimit(ctx, path, reqURL)
		})
		if err == nil {
			if err = json.Unmarshal(body, out); err == nil {
				return nil
			}
			err = fmt.Errorf("decode response: %w", err)
			metrics.RecordAPIRetry(path, "decode")
		}
		lastErr = err

		if !shouldRetry(ctx, err) {
			break
		}
		if attempt < c.retryAttempts-1 {
			logging.Ctx(ctx).Warn().Err(err).Str("path", path).Int("attempt", attempt+1).Int("max_attempts", c.retryAttempts).Dur("delay", c.retryDelay).Msg("Annict request failed, retrying")
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return fmt.Errorf("%w: GET %s: %w", ErrAPI, path, ctx.Err())
			}
		}
	}

	return fmt.Errorf("%w: GET %s: %w", ErrAPI, path, lastErr)
}

func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return true
}

// execute wraps an API call with circuit breaker protection
func (c *Client) execute(fn func() ([]byte, error)) ([]byte, error) {
	body, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.cbName, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.cbName, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.cbName, "success").Inc()
	return body, nil
}

// doRequestWithRateLimit performs one GET, waiting out HTTP 429 responses
// with exponential backoff (1s, 2s, 4s, ...) or the Retry-After header.
func (c *Client) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	for attempt := 0; attempt <= maxRateLimitRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordAPIRequest(endpoint, "error", time.Since(start))
			metrics.RecordAPIRetry(endpoint, "transport")
			return nil, fmt.Errorf("HTTP request failed: %w", redactToken(err, c.token))
		}
		metrics.RecordAPIRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

		if resp.StatusCode != http.StatusTooManyRequests {
			return readBody(resp, endpoint)
		}

		_ = resp.Body.Close() // Explicitly ignore error - will retry anyway
		metrics.RecordAPIRetry(endpoint, "rate_limited")

		if attempt == maxRateLimitRetries {
			break
		}

		delay := c.rateLimitBase * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		logging.Ctx(ctx).Warn().Dur("retry_delay", delay).Int("attempt", attempt+1).Int("max_retries", maxRateLimitRetries).Msg("Annict API rate limited (HTTP 429), retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("%w after %d retries (HTTP 429)", ErrRateLimited, maxRateLimitRetries)
}

func readBody(resp *http.Response, endpoint string) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode >= 500 {
			metrics.RecordAPIRetry(endpoint, "server")
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func (c *Client) buildURL(path string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("access_token", c.token)
	return c.baseURL + "/" + strings.TrimPrefix(path, "/") + "?" + q.Encode()
}

// redactToken removes the access token from transport errors, which embed
// the request URL. The wrapped cause is kept so errors.Is still works.
func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(token), "REDACTED")
		ue.URL = strings.ReplaceAll(ue.URL, token, "REDACTED")
	}
	return err
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
