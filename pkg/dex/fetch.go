package dex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// FetchPayload issues a GET request and returns the raw response body. A 429
// response maps to RateLimitError carrying the upstream Retry-After hint;
// other non-2xx statuses are generic errors. Provider packages share this so
// every source signals rate limiting the same way.
func FetchPayload(ctx context.Context, hc *http.Client, provider, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request: %w", provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", provider, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfterHint(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: http status %d: %s", provider, resp.StatusCode, string(body))
	}
	return body, nil
}

func retryAfterHint(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
