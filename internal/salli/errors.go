package salli

import (
	"errors"
	"fmt"
)

var (
	// ErrDigestTooShort is returned when a digest cannot supply both
	// directory prefixes of a content path.
	ErrDigestTooShort = errors.New("digest too short")

	// ErrInvalidDigest is returned for digests that are not lowercase hex.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrMissingSourceID is returned when a remote lookup URL needs a
	// source identifier the manual does not have.
	ErrMissingSourceID = errors.New("manual has no source id")

	// ErrCircuitOpen marks a bulk run aborted by the circuit breaker.
	ErrCircuitOpen = errors.New("circuit open")
)

// CircuitOpenError is returned when consecutive per-item failures reach the
// breaker threshold. It matches ErrCircuitOpen with errors.Is and unwraps to
// the failure that tripped it.
type CircuitOpenError struct {
	Failures int
	Last     error
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open after %d consecutive failures: %v", e.Failures, e.Last)
}

func (e *CircuitOpenError) Is(target error) bool { return target == ErrCircuitOpen }

func (e *CircuitOpenError) Unwrap() error { return e.Last }
