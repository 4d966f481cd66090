// Package cache wraps redis with a JSON value store for the aggregator.
// Every operation is best-effort: redis being down degrades the service to
// uncached reads, it never takes it offline.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// Backend is the slice of the redis API the store needs. It is satisfied by
// *redis.Redis from go-zero.
type Backend interface {
	GetCtx(ctx context.Context, key string) (string, error)
	SetexCtx(ctx context.Context, key, value string, seconds int) error
	DelCtx(ctx context.Context, keys ...string) (int, error)
	IncrCtx(ctx context.Context, key string) (int64, error)
	ScanCtx(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)
	PingCtx(ctx context.Context) bool
}

// Stats summarizes cache effectiveness since the counters were last reset.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Store reads and writes JSON values through redis.
type Store struct {
	backend Backend
	enabled bool
}

// New constructs a Store. A nil backend or enabled=false yields a store
// where every read misses and every write is a no-op.
func New(backend Backend, enabled bool) *Store {
	return &Store{backend: backend, enabled: enabled && backend != nil}
}

// Enabled reports whether the store is actually backed by redis.
func (s *Store) Enabled() bool {
	return s.enabled
}

// GetJSON loads the value at key into out, reporting whether it was a hit.
// Backend failures and stale/corrupt entries count as misses.
func (s *Store) GetJSON(ctx context.Context, key string, out any) bool {
	if !s.enabled {
		return false
	}

	value, err := s.backend.GetCtx(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache: get %s: %v", key, err)
		return false
	}
	if value == "" {
		return false
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		logx.WithContext(ctx).Errorf("cache: decode %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores value at key with the given TTL.
func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.enabled {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache: encode %s: %v", key, err)
		return
	}
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	if err := s.backend.SetexCtx(ctx, key, string(data), seconds); err != nil {
		logx.WithContext(ctx).Errorf("cache: set %s: %v", key, err)
	}
}

// Delete removes the given keys.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if !s.enabled || len(keys) == 0 {
		return
	}
	if _, err := s.backend.DelCtx(ctx, keys...); err != nil {
		logx.WithContext(ctx).Errorf("cache: delete %v: %v", keys, err)
	}
}

// DeletePattern removes every key matching the scan pattern.
func (s *Store) DeletePattern(ctx context.Context, pattern string) {
	if !s.enabled {
		return
	}

	var cursor uint64
	for {
		keys, next, err := s.backend.ScanCtx(ctx, cursor, pattern, 100)
		if err != nil {
			logx.WithContext(ctx).Errorf("cache: scan %s: %v", pattern, err)
			return
		}
		if len(keys) > 0 {
			if _, err := s.backend.DelCtx(ctx, keys...); err != nil {
				logx.WithContext(ctx).Errorf("cache: delete %v: %v", keys, err)
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

// IncrementHits bumps the hit counter.
func (s *Store) IncrementHits(ctx context.Context) {
	s.increment(ctx, StatsHitsKey())
}

// IncrementMisses bumps the miss counter.
func (s *Store) IncrementMisses(ctx context.Context) {
	s.increment(ctx, StatsMissesKey())
}

func (s *Store) increment(ctx context.Context, key string) {
	if !s.enabled {
		return
	}
	if _, err := s.backend.IncrCtx(ctx, key); err != nil {
		logx.WithContext(ctx).Errorf("cache: incr %s: %v", key, err)
	}
}

// ReadStats returns the hit/miss counters.
func (s *Store) ReadStats(ctx context.Context) Stats {
	if !s.enabled {
		return Stats{}
	}

	stats := Stats{
		Hits:   s.readCounter(ctx, StatsHitsKey()),
		Misses: s.readCounter(ctx, StatsMissesKey()),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (s *Store) readCounter(ctx context.Context, key string) int64 {
	value, err := s.backend.GetCtx(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache: get %s: %v", key, err)
		return 0
	}
	if value == "" {
		return 0
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

// Ping reports whether the backing redis answers.
func (s *Store) Ping(ctx context.Context) bool {
	if !s.enabled {
		return false
	}
	return s.backend.PingCtx(ctx)
}
