package cache

import (
	"fmt"
	"strings"
)

// namespace prefixes every cache key so the aggregator can share a redis
// instance with other services.
const namespace = "dexagg"

func formatKey(parts ...string) string {
	return namespace + ":" + strings.Join(parts, ":")
}

// TokensBaseKey is the key holding the full merged token list.
func TokensBaseKey() string {
	return formatKey("tokens", "base")
}

// TokenDetailKey returns the key for a single token detail entry. Addresses
// are lowercased so lookups are case-insensitive.
func TokenDetailKey(address string) string {
	return formatKey("token", "detail", strings.ToLower(address))
}

// StatsHitsKey is the counter of cache hits.
func StatsHitsKey() string {
	return formatKey("cache", "stats", "hits")
}

// StatsMissesKey is the counter of cache misses.
func StatsMissesKey() string {
	return formatKey("cache", "stats", "misses")
}

// MatchPattern turns a key fragment into a scan pattern under the namespace.
func MatchPattern(fragment string) string {
	return fmt.Sprintf("%s:%s*", namespace, fragment)
}
