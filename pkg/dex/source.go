package dex

import "context"

// Source is an upstream DEX data provider. Implementations fetch the raw
// upstream payload and normalize it into Raw records; a malformed or empty
// payload yields an empty slice, never an error. Callers must not depend on
// the output ordering.
type Source interface {
	// Name returns the provider identifier used for rate limiting and the
	// merged Token sources set.
	Name() string
	// FetchTokens fetches and normalizes one batch of tokens.
	FetchTokens(ctx context.Context) ([]Raw, error)
}
