package domain

import "errors"

// Failure kinds surfaced by the synthesis pipeline and persistence layer.
// Callers match with errors.Is; handlers translate kinds to HTTP statuses.
var (
	// ErrUpstreamUnavailable means the identity source errored or returned a
	// malformed payload.
	ErrUpstreamUnavailable = errors.New("upstream identity source unavailable")

	// ErrRetryExhausted means the age bounds could not be satisfied within the
	// configured attempt cap.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrInvalidInput means filters or a base identity failed validation
	// before any persistence attempt.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound covers both unknown IDs and ownership mismatches so that
	// existence never leaks to a non-owner.
	ErrNotFound = errors.New("not found")

	// ErrPersistenceFailed means a store write failed; the transaction was
	// rolled back and no partial bundle remains visible.
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrDuplicate means a unique constraint rejected the write (email or
	// matricule already registered).
	ErrDuplicate = errors.New("already exists")

	// ErrInvalidCredentials means login failed. Wrong email and wrong
	// password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
