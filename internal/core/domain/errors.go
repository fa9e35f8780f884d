package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// For a sub-fetch this is fatal for that field only: the aggregator
	// records the field as unavailable and keeps the rest of the profile.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthInvalid indicates the credentials are invalid or revoked.
	// No credential can make progress, so this aborts the whole job.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimitExceeded indicates every credential in the pool stayed
	// exhausted beyond the bounded number of acquisition retries.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrUnavailable indicates a sub-resource could not be fetched after
	// retries and has been degraded to an explicit unavailable marker.
	ErrUnavailable = errors.New("unavailable")

	// ErrNoCredentials indicates the pool was constructed without any
	// credentials.
	ErrNoCredentials = errors.New("no credentials configured")
)
