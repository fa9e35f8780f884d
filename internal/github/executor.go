package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"githarvest/internal/logger"
)

const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"

	// ProactiveRate is the default proactive throttle (~1.2 req/sec = 4320/hr),
	// shared across all workers.
	ProactiveRate = 1.2

	// DefaultBaseDelay seeds the exponential backoff for transient failures.
	DefaultBaseDelay = 200 * time.Millisecond

	// DefaultMaxAttempts caps attempts at a single request for transient failures.
	DefaultMaxAttempts = 5

	// DefaultPoolRetries caps the number of full-pool waits per request.
	DefaultPoolRetries = 3

	acceptHeader = "application/vnd.github+json"
)

// RetryPolicy configures the executor's retry behaviour.
type RetryPolicy struct {
	// BaseDelay seeds the backoff: the n-th retry of a transient failure
	// waits BaseDelay * 2^(n-1).
	BaseDelay time.Duration

	// MaxAttempts is the attempt ceiling for one request.
	MaxAttempts int

	// PoolRetries is how many times one request will wait out a pool-wide
	// exhaustion before failing with a RateLimitError.
	PoolRetries int

	// Throttle is the proactive requests-per-second shared by all callers.
	Throttle float64
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   DefaultBaseDelay,
		MaxAttempts: DefaultMaxAttempts,
		PoolRetries: DefaultPoolRetries,
		Throttle:    ProactiveRate,
	}
}

// Page is one raw response from the API: the undecoded body plus the
// pagination and rate-limit metadata callers need.
type Page struct {
	Body    []byte
	Header  http.Header
	Status  int
	NextURL string
}

// Executor issues every outbound request of the harvest pipeline. It
// acquires a credential per attempt, classifies the response, retries
// transient failures with exponential backoff, and rotates credentials
// on rate-limit responses. Safe for concurrent use.
type Executor struct {
	pool    *Pool
	baseURL string
	policy  RetryPolicy
	bucket  *rate.Limiter
}

// NewExecutor wires an executor to a credential pool. Zero-valued
// policy fields fall back to the defaults.
func NewExecutor(pool *Pool, baseURL string, policy RetryPolicy) *Executor {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	def := DefaultRetryPolicy()
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = def.BaseDelay
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.PoolRetries <= 0 {
		policy.PoolRetries = def.PoolRetries
	}
	if policy.Throttle <= 0 {
		policy.Throttle = def.Throttle
	}
	return &Executor{
		pool:    pool,
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
		bucket:  rate.NewLimiter(rate.Limit(policy.Throttle), 1),
	}
}

// URL joins an API path with query values. Absolute URLs (pagination
// links) pass through untouched.
func (e *Executor) URL(path string, query url.Values) string {
	raw := path
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = e.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) == 0 {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + query.Encode()
}

// Get fetches one resource, absorbing rate limits and transient
// failures. It returns the page on 2xx, a RateLimitError once the pool
// retries run out, a TransientError once the attempt ceiling is hit,
// and an APIError for any other 4xx.
func (e *Executor) Get(ctx context.Context, rawurl string) (*Page, error) {
	attempts := 0
	poolWaits := 0
	limited := 0
	for {
		cred, resetAt := e.pool.Acquire()
		if cred == nil {
			poolWaits++
			if poolWaits > e.policy.PoolRetries {
				return nil, &RateLimitError{ResetAt: resetAt}
			}
			logger.Warn("All credentials exhausted, waiting until %s", resetAt.Format(time.RFC3339))
			if err := sleepUntil(ctx, resetAt); err != nil {
				return nil, err
			}
			continue
		}

		if err := e.bucket.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", rawurl, err)
		}
		req.Header.Set("Accept", acceptHeader)

		resp, err := cred.Client().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			attempts++
			if attempts >= e.policy.MaxAttempts {
				return nil, &TransientError{Attempts: attempts, Err: err}
			}
			logger.Debug("Request failed (attempt %d/%d): %v", attempts, e.policy.MaxAttempts, err)
			if err := e.backoff(ctx, attempts); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		e.pool.Report(cred, resp.Header)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300 && readErr == nil:
			return &Page{
				Body:    body,
				Header:  resp.Header,
				Status:  resp.StatusCode,
				NextURL: NextLink(resp.Header),
			}, nil

		case isRateLimited(resp):
			logger.Debug("Credential %s rate limited", cred.ID())
			e.pool.MarkExhausted(cred, retryAfter(resp.Header))
			limited++
			if limited > e.policy.PoolRetries*e.pool.Size() {
				return nil, &RateLimitError{ResetAt: resetTime(resp.Header)}
			}
			// Back to acquisition; a different credential may have quota.
			continue

		case resp.StatusCode >= 500 || readErr != nil:
			attempts++
			if attempts >= e.policy.MaxAttempts {
				return nil, &TransientError{StatusCode: resp.StatusCode, Attempts: attempts, Err: readErr}
			}
			logger.Debug("Server error %d (attempt %d/%d)", resp.StatusCode, attempts, e.policy.MaxAttempts)
			if err := e.backoff(ctx, attempts); err != nil {
				return nil, err
			}
			continue

		default:
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    apiMessage(body),
				URL:        rawurl,
			}
		}
	}
}

// GetJSON fetches a resource and decodes its payload into v.
func (e *Executor) GetJSON(ctx context.Context, rawurl string, v any) error {
	page, err := e.Get(ctx, rawurl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(page.Body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawurl, err)
	}
	return nil
}

// backoff sleeps for BaseDelay * 2^(attempt-1), honouring cancellation.
func (e *Executor) backoff(ctx context.Context, attempt int) error {
	delay := e.policy.BaseDelay << (attempt - 1)
	return sleepFor(ctx, delay)
}

// isRateLimited reports whether a response is a definitive rate-limit
// signal: 429, or 403 with a drained quota or an explicit Retry-After.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	return resp.Header.Get(HeaderRateRemaining) == "0" || resp.Header.Get(HeaderRetryAfter) != ""
}

// retryAfter parses a Retry-After header in seconds; zero when absent.
func retryAfter(header http.Header) time.Duration {
	v := header.Get(HeaderRetryAfter)
	if v == "" {
		return 0
	}
	sec, err := strconv.Atoi(v)
	if err != nil || sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}

// resetTime derives the moment a limited credential recovers, from the
// Retry-After or reset headers, falling back to a minute out.
func resetTime(header http.Header) time.Time {
	if d := retryAfter(header); d > 0 {
		return time.Now().Add(d)
	}
	if v := header.Get(HeaderRateReset); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(sec, 0)
		}
	}
	return time.Now().Add(time.Minute)
}

// apiMessage extracts the "message" field from an error payload.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

func sleepUntil(ctx context.Context, t time.Time) error {
	return sleepFor(ctx, time.Until(t))
}

func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
