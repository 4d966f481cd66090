// Package refresh drives the background data cycle: it refetches the token
// list on an interval, diffs it against the previous cycle and pushes
// snapshot and delta events to subscribers.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

// TokenFetcher produces a fresh merged token list, bypassing caches.
type TokenFetcher interface {
	RefreshTokens(ctx context.Context) ([]dex.Token, error)
}

// Sink receives events. Delivery is fire-and-forget.
type Sink interface {
	Broadcast(event Event)
}

// Job runs the periodic refresh loop.
type Job struct {
	fetcher    TokenFetcher
	sink       Sink
	interval   time.Duration
	thresholds Thresholds

	now func() time.Time

	prev     map[string]dex.Token
	inFlight atomic.Bool

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewJob constructs a refresh job. A non-positive interval defaults to 10s.
func NewJob(fetcher TokenFetcher, sink Sink, interval time.Duration, thresholds Thresholds) *Job {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if thresholds.PriceChangePct <= 0 {
		thresholds.PriceChangePct = DefaultThresholds().PriceChangePct
	}
	if thresholds.VolumeMultiplier <= 0 {
		thresholds.VolumeMultiplier = DefaultThresholds().VolumeMultiplier
	}
	return &Job{
		fetcher:    fetcher,
		sink:       sink,
		interval:   interval,
		thresholds: thresholds,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the loop. The first cycle runs immediately; later cycles
// fire on the interval until Stop is called or ctx is cancelled.
func (j *Job) Start(ctx context.Context) {
	j.startOnce.Do(func() {
		j.started.Store(true)
		go j.loop(ctx)
	})
}

// Stop halts the loop and waits for the current cycle to finish. Stopping a
// job that was never started returns immediately.
func (j *Job) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
	if !j.started.Load() {
		return
	}
	<-j.done
}

func (j *Job) loop(ctx context.Context) {
	defer close(j.done)

	logx.Infof("refresh: starting, interval %s", j.interval)
	j.runCycle(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runCycle(ctx)
		case <-j.stop:
			logx.Info("refresh: stopped")
			return
		case <-ctx.Done():
			logx.Info("refresh: context cancelled")
			return
		}
	}
}

// runCycle executes one fetch-diff-broadcast pass. Overlapping cycles are
// skipped rather than queued; a failed fetch leaves the previous state
// untouched so the next cycle diffs against it.
func (j *Job) runCycle(ctx context.Context) {
	if !j.inFlight.CompareAndSwap(false, true) {
		logx.Info("refresh: previous cycle still running, skipping")
		return
	}
	defer j.inFlight.Store(false)

	tokens, err := j.fetcher.RefreshTokens(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("refresh: fetch failed: %v", err)
		return
	}

	now := j.now()

	// The full-state snapshot goes out exactly once, on the first successful
	// cycle. Everything after that is deltas.
	if j.prev == nil {
		j.sink.Broadcast(Event{Type: EventSnapshot, Tokens: tokens, Timestamp: now})
		_, j.prev = Diff(nil, tokens, j.thresholds, now)
		return
	}

	events, next := Diff(j.prev, tokens, j.thresholds, now)
	j.prev = next
	for _, event := range events {
		j.sink.Broadcast(event)
	}
	if len(events) > 0 {
		logx.Infof("refresh: %d tokens, %d events", len(tokens), len(events))
	}
}
