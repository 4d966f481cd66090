package svc

import (
	"log"
	"time"

	"github.com/zeromicro/go-zero/core/stores/redis"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/aggregator"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/cache"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/config"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/refresh"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/ws"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
	_ "github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex/dexscreener"
	_ "github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex/geckoterminal"
	_ "github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex/jupiter"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/ratelimit"
)

type ServiceContext struct {
	Config config.Config

	Cache      *cache.Store
	Limiter    *ratelimit.Limiter
	Sources    map[string]dex.Source
	Aggregator *aggregator.Service
	Hub        *ws.Hub
	Refresh    *refresh.Job
}

func NewServiceContext(c config.Config) *ServiceContext {
	dexCfg := c.Providers.Value
	if dexCfg == nil {
		log.Fatal("providers config is required")
	}

	sources, err := dexCfg.BuildSources()
	if err != nil {
		log.Fatalf("failed to build dex sources: %v", err)
	}

	var redisClient *redis.Redis
	if c.HasRedis() {
		redisClient = redis.MustNewRedis(c.Redis)
	}

	store := newStore(redisClient, c.Cache.Enabled)
	limiter := newLimiter(redisClient, dexCfg, c.Backoff)

	agg := aggregator.New(sources, limiter, store, aggregator.Options{
		CacheTTL:     c.CacheTTL(),
		DetailTTL:    c.DetailTTL(),
		DefaultLimit: c.Pagination.DefaultLimit,
		MaxLimit:     c.Pagination.MaxLimit,
	})

	hub := ws.NewHub()
	job := refresh.NewJob(agg, hub, c.RefreshInterval(), refresh.Thresholds{
		PriceChangePct:   c.Refresh.PriceChangeThreshold,
		VolumeMultiplier: c.Refresh.VolumeSpikeMultiplier,
	})

	return &ServiceContext{
		Config:     c,
		Cache:      store,
		Limiter:    limiter,
		Sources:    sources,
		Aggregator: agg,
		Hub:        hub,
		Refresh:    job,
	}
}

func newStore(redisClient *redis.Redis, enabled bool) *cache.Store {
	if redisClient == nil {
		return cache.New(nil, false)
	}
	return cache.New(redisClient, enabled)
}

func newLimiter(redisClient *redis.Redis, dexCfg *dex.Config, backoff config.BackoffConf) *ratelimit.Limiter {
	limits := make(map[string]ratelimit.Limit)
	for name, limit := range dexCfg.RateLimits() {
		limits[name] = ratelimit.Limit{Max: limit.Max, Window: limit.Window}
	}

	var store ratelimit.CounterStore
	if redisClient != nil {
		store = redisClient
	}
	return ratelimit.New(store, limits, ratelimit.Backoff{
		InitialDelay: time.Duration(backoff.InitialDelayMs) * time.Millisecond,
		MaxDelay:     time.Duration(backoff.MaxDelayMs) * time.Millisecond,
		Multiplier:   backoff.Multiplier,
		MaxRetries:   backoff.MaxRetries,
	})
}
