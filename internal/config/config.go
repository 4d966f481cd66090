package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/confkit"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

type CacheConf struct {
	Enabled   bool `json:",default=true"`
	TTL       int  `json:",default=30"` // seconds
	DetailTTL int  `json:",default=30"`
}

type RefreshConf struct {
	IntervalMs            int     `json:",default=10000"`
	PriceChangeThreshold  float64 `json:",default=5"` // percent
	VolumeSpikeMultiplier float64 `json:",default=2"`
}

type BackoffConf struct {
	InitialDelayMs int     `json:",default=1000"`
	MaxDelayMs     int     `json:",default=32000"`
	Multiplier     float64 `json:",default=2"`
	MaxRetries     int     `json:",default=5"`
}

type PaginationConf struct {
	DefaultLimit int `json:",default=20"`
	MaxLimit     int `json:",default=50"`
}

type Config struct {
	rest.RestConf
	Redis      redis.RedisConf `json:",optional"`
	Cache      CacheConf       `json:",optional"`
	Refresh    RefreshConf     `json:",optional"`
	Backoff    BackoffConf     `json:",optional"`
	Pagination PaginationConf  `json:",optional"`

	Providers confkit.Section[dex.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Providers.Hydrate(cfg.baseDir, dex.LoadConfig); err != nil {
		return nil, fmt.Errorf("load providers config: %w", err)
	}
	return &cfg, nil
}

// normalise fills in defaults for sections that were omitted entirely. The
// conf loader only applies field defaults when the section key is present; a
// missing optional struct arrives all-zero.
func (c *Config) normalise() {
	if c.Cache == (CacheConf{}) {
		c.Cache = CacheConf{Enabled: true, TTL: 30, DetailTTL: 30}
	}
	if c.Refresh == (RefreshConf{}) {
		c.Refresh = RefreshConf{IntervalMs: 10000, PriceChangeThreshold: 5, VolumeSpikeMultiplier: 2}
	}
	if c.Backoff == (BackoffConf{}) {
		c.Backoff = BackoffConf{InitialDelayMs: 1000, MaxDelayMs: 32000, Multiplier: 2, MaxRetries: 5}
	}
	if c.Pagination == (PaginationConf{}) {
		c.Pagination = PaginationConf{DefaultLimit: 20, MaxLimit: 50}
	}
}

func (c *Config) Validate() error {
	if c.Cache.TTL <= 0 || c.Cache.DetailTTL <= 0 {
		return errors.New("config: cache ttls must be positive")
	}
	if c.Refresh.IntervalMs <= 0 {
		return errors.New("config: refresh interval must be positive")
	}
	if c.Refresh.PriceChangeThreshold <= 0 {
		return errors.New("config: price change threshold must be positive")
	}
	if c.Refresh.VolumeSpikeMultiplier <= 1 {
		return errors.New("config: volume spike multiplier must exceed 1")
	}
	if c.Backoff.InitialDelayMs <= 0 || c.Backoff.MaxDelayMs < c.Backoff.InitialDelayMs {
		return errors.New("config: backoff delays are inconsistent")
	}
	if c.Backoff.Multiplier <= 1 {
		return errors.New("config: backoff multiplier must exceed 1")
	}
	if c.Backoff.MaxRetries < 1 {
		return errors.New("config: backoff retries must be at least 1")
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return errors.New("config: pagination limits are inconsistent")
	}
	if c.Providers.File == "" {
		return errors.New("config: providers file is required")
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

func (c *Config) DetailTTL() time.Duration {
	return time.Duration(c.Cache.DetailTTL) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalMs) * time.Millisecond
}

func (c *Config) HasRedis() bool {
	return c.Redis.Host != ""
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
