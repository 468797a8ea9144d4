package finnhub

import "fmt"

// RateLimitedError means upstream throttling outlasted the retry budget.
type RateLimitedError struct {
	Attempts int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts", e.Attempts)
}

// UnavailableError means a timeout or transport failure outlasted the retry
// budget. It wraps the last underlying error for diagnostics.
type UnavailableError struct {
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// UpstreamError is a non-retryable HTTP failure (non-200, non-429).
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Status)
}
