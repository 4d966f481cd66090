package dex

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError reports a rate-limit rejection from an upstream provider.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration // zero when the upstream gave no hint
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (status %d, retry after %s)", e.Provider, e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited (status %d)", e.Provider, e.StatusCode)
}

// IsRateLimited reports whether err carries a rate-limit signal.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
