package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"githarvest/internal/core/domain"
)

// RateLimitError reports that every credential in the pool was
// exhausted and the bounded pool retries ran out. ResetAt is the
// earliest time a credential comes back.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: all credentials rate limited, earliest reset at %s", e.ResetAt.Format(time.RFC3339))
}

// Is lets errors.Is treat a RateLimitError as the domain sentinel.
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimitExceeded
}

// APIError represents a non-retryable GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Is maps the well-known status codes onto the domain sentinels so
// callers can branch with errors.Is instead of inspecting codes.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return target == domain.ErrNotFound
	case http.StatusUnauthorized:
		return target == domain.ErrAuthInvalid
	}
	return false
}

// TransientError reports a request that kept failing with server or
// network errors until the attempt ceiling was reached.
type TransientError struct {
	StatusCode int // zero for network failures
	Attempts   int
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github: request failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("github: request failed after %d attempts: status %d", e.Attempts, e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Is lets errors.Is treat a TransientError as the domain sentinel.
func (e *TransientError) Is(target error) bool {
	return target == domain.ErrUnavailable
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error indicates pool-wide rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimitExceeded)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrAuthInvalid)
}

// IsUnavailable checks if the error indicates a transient failure that
// outlived its retries.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrUnavailable)
}
