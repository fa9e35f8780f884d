package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"githarvest/internal/core/domain"
)

const (
	// FullQuota is the authenticated per-credential rate limit (5000/hour).
	FullQuota = 5000

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// Credential is one bearer token with its own rate-limit quota.
// Quota fields are owned by the Pool and guarded by its mutex; callers
// hold a credential only for the duration of a single request.
type Credential struct {
	id     string
	client *http.Client

	remaining int
	resetAt   time.Time
	exhausted bool
}

// ID returns the credential's stable identifier, used in logs.
func (c *Credential) ID() string { return c.id }

// Client returns the HTTP client that attaches this credential's token.
func (c *Credential) Client() *http.Client { return c.client }

// Pool holds the process's credentials and their live quota state.
// All methods are safe for concurrent use.
type Pool struct {
	mu    sync.Mutex
	creds []*Credential
}

// NewPool builds a pool from an ordered list of bearer tokens. Each
// credential gets its own HTTP client via an oauth2 static token
// source, so attaching a credential to a request is just picking the
// client. Quotas start at the full limit until the first response
// reports the real numbers.
func NewPool(ctx context.Context, tokens []string, timeout time.Duration) (*Pool, error) {
	if len(tokens) == 0 {
		return nil, domain.ErrNoCredentials
	}

	p := &Pool{}
	for i, token := range tokens {
		if token == "" {
			return nil, fmt.Errorf("credential %d: %w: empty token", i+1, domain.ErrInvalidInput)
		}
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client := oauth2.NewClient(ctx, src)
		client.Timeout = timeout
		p.creds = append(p.creds, &Credential{
			id:        fmt.Sprintf("credential-%d", i+1),
			client:    client,
			remaining: FullQuota,
		})
	}
	return p, nil
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

// Acquire returns a credential that still has quota, preferring the one
// with the most remaining requests so load spreads evenly. When every
// credential is exhausted it returns nil and the earliest time at which
// one resets; the caller suspends until then and tries again.
func (p *Pool) Acquire() (*Credential, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	var best *Credential
	var earliest time.Time
	for _, c := range p.creds {
		// A passed reset re-arms the credential.
		if (c.exhausted || c.remaining <= 0) && !c.resetAt.IsZero() && now.After(c.resetAt) {
			c.remaining = FullQuota
			c.exhausted = false
		}
		if !c.exhausted && c.remaining > 0 {
			if best == nil || c.remaining > best.remaining {
				best = c
			}
			continue
		}
		if !c.resetAt.IsZero() && (earliest.IsZero() || c.resetAt.Before(earliest)) {
			earliest = c.resetAt
		}
	}
	if best != nil {
		return best, time.Time{}
	}
	if earliest.IsZero() {
		// No credential reported a reset yet; back off for a minute.
		earliest = now.Add(time.Minute)
	}
	return nil, earliest
}

// Report updates a credential's quota from response headers. GitHub
// reports the current window on every response, success or failure, so
// this runs on every completed request.
func (p *Pool) Report(cred *Credential, header http.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rolled := false
	if v := header.Get(HeaderRateReset); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			reset := time.Unix(sec, 0)
			// A later reset timestamp means the server opened a new window.
			rolled = reset.After(cred.resetAt)
			cred.resetAt = reset
		}
	}
	if v := header.Get(HeaderRateRemaining); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			// Inside a window the count only goes down; it may jump back up
			// only across a window boundary.
			if n < cred.remaining || rolled {
				cred.remaining = n
			}
			if rolled && n > 0 {
				cred.exhausted = false
			}
		}
	}
}

// MarkExhausted force-zeroes a credential's quota after a definitive
// rate-limit response, even when the headers did not report zero. A
// positive retryAfter overrides the credential's reset time.
func (p *Pool) MarkExhausted(cred *Credential, retryAfter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred.remaining = 0
	cred.exhausted = true
	if retryAfter > 0 {
		cred.resetAt = time.Now().Add(retryAfter)
	}
}

// Snapshot returns each credential's remaining quota by id, for status
// output and tests.
func (p *Pool) Snapshot() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.creds))
	for _, c := range p.creds {
		out[c.id] = c.remaining
	}
	return out
}
