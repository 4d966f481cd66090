// Package ratelimit gates upstream provider calls against per-provider
// request budgets tracked in minute buckets, retrying rate-limited calls
// with exponential backoff.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

const keyPrefix = "rate_limit"

// CounterStore is the slice of the redis API the limiter needs. It is
// satisfied by *redis.Redis from go-zero; tests inject an in-memory fake.
type CounterStore interface {
	GetCtx(ctx context.Context, key string) (string, error)
	IncrCtx(ctx context.Context, key string) (int64, error)
	ExpireCtx(ctx context.Context, key string, seconds int) error
}

// Limit is a per-provider request budget: Max requests per Window.
type Limit struct {
	Max    int
	Window time.Duration
}

// Backoff encapsulates exponential backoff settings.
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxRetries   int
}

// DefaultBackoff returns the standard retry policy.
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: time.Second,
		MaxDelay:     32 * time.Second,
		Multiplier:   2,
		MaxRetries:   5,
	}
}

func (b Backoff) normalise() Backoff {
	if b.InitialDelay <= 0 {
		b.InitialDelay = time.Second
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = 32 * time.Second
	}
	if b.Multiplier <= 1 {
		b.Multiplier = 2
	}
	if b.MaxRetries <= 0 {
		b.MaxRetries = 5
	}
	return b
}

// MaxRetriesError reports that every attempt against a provider was rejected.
type MaxRetriesError struct {
	Provider string
	Attempts int
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("%s: max retries exceeded after %d attempts", e.Provider, e.Attempts)
}

// Limiter tracks per-provider request counts in wall-clock minute buckets.
// Providers without a configured limit are unlimited. The counter store is
// best-effort: a store failure never blocks a call, it only loses accounting.
type Limiter struct {
	store   CounterStore
	limits  map[string]Limit
	backoff Backoff

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Limiter over the given counter store and budgets.
func New(store CounterStore, limits map[string]Limit, backoff Backoff) *Limiter {
	if limits == nil {
		limits = make(map[string]Limit)
	}
	return &Limiter{
		store:   store,
		limits:  limits,
		backoff: backoff.normalise(),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// TryReserve reports whether the provider's current-minute bucket has
// capacity. Unconfigured providers always have capacity.
func (l *Limiter) TryReserve(ctx context.Context, provider string) bool {
	limit, ok := l.limits[provider]
	if !ok || l.store == nil {
		return true
	}

	value, err := l.store.GetCtx(ctx, l.bucketKey(provider))
	if err != nil {
		logx.WithContext(ctx).Errorf("ratelimit: read counter for %s: %v", provider, err)
		return true
	}
	if value == "" {
		return true
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return true
	}
	return count < int64(limit.Max)
}

// reserve increments the provider's current bucket, arming the bucket expiry
// on first use so buckets clean themselves up.
func (l *Limiter) reserve(ctx context.Context, provider string) {
	limit, ok := l.limits[provider]
	if !ok || l.store == nil {
		return
	}

	key := l.bucketKey(provider)
	count, err := l.store.IncrCtx(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("ratelimit: increment counter for %s: %v", provider, err)
		return
	}
	if count == 1 {
		seconds := int(limit.Window / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		if err := l.store.ExpireCtx(ctx, key, seconds); err != nil {
			logx.WithContext(ctx).Errorf("ratelimit: expire counter for %s: %v", provider, err)
		}
	}
}

// ExecuteWithBackoff runs op under the provider's budget. When the bucket is
// exhausted, or op fails with a rate-limit signal, it sleeps with exponential
// backoff and retries; after MaxRetries attempts it fails with
// *MaxRetriesError. Any other error from op propagates immediately.
func (l *Limiter) ExecuteWithBackoff(ctx context.Context, provider string, op func(ctx context.Context) error) error {
	delay := l.backoff.InitialDelay

	for attempt := 0; attempt < l.backoff.MaxRetries; attempt++ {
		if l.TryReserve(ctx, provider) {
			l.reserve(ctx, provider)

			err := op(ctx)
			if err == nil {
				return nil
			}
			if !dex.IsRateLimited(err) {
				return err
			}
			logx.WithContext(ctx).Infof("ratelimit: %s rate limited, retrying in %s", provider, delay)
		} else {
			logx.WithContext(ctx).Infof("ratelimit: %s bucket exhausted, waiting %s", provider, delay)
		}

		if attempt == l.backoff.MaxRetries-1 {
			break
		}
		if err := l.sleep(ctx, delay); err != nil {
			return err
		}
		delay = l.nextDelay(delay)
	}

	return &MaxRetriesError{Provider: provider, Attempts: l.backoff.MaxRetries}
}

func (l *Limiter) nextDelay(delay time.Duration) time.Duration {
	next := time.Duration(float64(delay) * l.backoff.Multiplier)
	if next > l.backoff.MaxDelay {
		next = l.backoff.MaxDelay
	}
	return next
}

// bucketKey derives the counter key from the wall-clock minute, so buckets
// reset naturally without cleanup.
func (l *Limiter) bucketKey(provider string) string {
	minute := l.now().UnixMilli() / time.Minute.Milliseconds()
	return fmt.Sprintf("%s:%s:%d", keyPrefix, provider, minute)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
