package salli

// DefaultFailureThreshold is the number of consecutive per-item failures
// that aborts a bulk download.
const DefaultFailureThreshold = 3

// CircuitBreaker counts consecutive failures within one bulk run.
type CircuitBreaker struct {
	threshold int
	failures  int
}

// NewCircuitBreaker creates a breaker that opens after threshold
// consecutive failures. A non-positive threshold uses the default.
func NewCircuitBreaker(threshold int) *CircuitBreaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	return &CircuitBreaker{threshold: threshold}
}

// RecordSuccess resets the consecutive-failure count.
func (b *CircuitBreaker) RecordSuccess() {
	b.failures = 0
}

// RecordFailure counts err. It returns a *CircuitOpenError once the count
// reaches the threshold; callers must return it rather than continue.
func (b *CircuitBreaker) RecordFailure(err error) error {
	b.failures++
	if b.failures >= b.threshold {
		return &CircuitOpenError{Failures: b.failures, Last: err}
	}
	return nil
}

// Failures returns the current consecutive-failure count.
func (b *CircuitBreaker) Failures() int {
	return b.failures
}
