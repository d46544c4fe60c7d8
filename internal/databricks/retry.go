package databricks

import (
	"net/http"
	"time"
)

// Retry configuration for workspace API calls.
const (
	maxRetryAttempts  = 3
	initialBackoff    = 500 * time.Millisecond
	maxBackoff        = 5 * time.Second
	backoffMultiplier = 2.0
)

// retryableStatus reports whether a response status is worth retrying.
// Rate limits and transient server errors are; everything else is not.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoffFor returns the wait before retry number attempt (starting at 1).
func backoffFor(attempt int, base time.Duration) time.Duration {
	backoff := base
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * backoffMultiplier)
		if backoff > maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
