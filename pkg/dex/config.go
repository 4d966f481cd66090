package dex

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/confkit"
)

const defaultChain = "solana"

// Config describes the set of DEX sources available to the aggregator.
type Config struct {
	// Chain restricts normalizers to one network when a provider serves
	// several. Defaults to solana.
	Chain   string                   `yaml:"chain"`
	Sources map[string]*SourceConfig `yaml:"sources"`
}

// SourceConfig represents configuration for a single DEX source.
type SourceConfig struct {
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Chain   string `yaml:"-"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`

	// Rate limit: MaxRequests per Window. Zero MaxRequests means unlimited.
	MaxRequests int           `yaml:"max_requests"`
	WindowRaw   string        `yaml:"window"`
	Window      time.Duration `yaml:"-"`
}

// RateLimit pairs a request budget with its time window.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// SourceBuilder constructs a Source from configuration.
type SourceBuilder func(name string, cfg *SourceConfig) (Source, error)

var (
	sourceRegistry   = make(map[string]SourceBuilder)
	sourceRegistryMu sync.RWMutex
)

// RegisterSource registers a DEX source constructor under a type name.
func RegisterSource(typeName string, builder SourceBuilder) {
	sourceRegistryMu.Lock()
	defer sourceRegistryMu.Unlock()
	sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupSourceBuilder(typeName string) (SourceBuilder, bool) {
	sourceRegistryMu.RLock()
	defer sourceRegistryMu.RUnlock()
	builder, ok := sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads source configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dex config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dex config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal dex config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.Chain = strings.TrimSpace(os.ExpandEnv(c.Chain))
	if c.Chain == "" {
		c.Chain = defaultChain
	}
	if c.Sources == nil {
		c.Sources = make(map[string]*SourceConfig)
	}
	for name, source := range c.Sources {
		if source == nil {
			source = &SourceConfig{}
			c.Sources[name] = source
		}
		source.expandEnv()
		source.Chain = c.Chain
		if err := source.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SourceConfig) expandEnv() {
	s.Type = strings.TrimSpace(os.ExpandEnv(s.Type))
	s.BaseURL = strings.TrimSpace(os.ExpandEnv(s.BaseURL))
	s.APIKey = strings.TrimSpace(os.ExpandEnv(s.APIKey))
	s.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(s.TimeoutRaw))
	s.WindowRaw = strings.TrimSpace(os.ExpandEnv(s.WindowRaw))
}

func (s *SourceConfig) parseDurations(name string) error {
	if s.TimeoutRaw != "" {
		d, err := time.ParseDuration(s.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("dex source %s: invalid timeout %q: %w", name, s.TimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("dex source %s: timeout must be positive, got %s", name, d)
		}
		s.Timeout = d
	}
	if s.WindowRaw != "" {
		d, err := time.ParseDuration(s.WindowRaw)
		if err != nil {
			return fmt.Errorf("dex source %s: invalid window %q: %w", name, s.WindowRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("dex source %s: window must be positive, got %s", name, d)
		}
		s.Window = d
	}
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("dex config: sources cannot be empty")
	}
	for name, source := range c.Sources {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("dex config: source name cannot be empty")
		}
		if err := source.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SourceConfig) validate(name string) error {
	if s == nil {
		return fmt.Errorf("dex config: source %s is nil", name)
	}
	if strings.TrimSpace(s.Type) == "" {
		return fmt.Errorf("dex config: source %s must specify type", name)
	}
	if _, ok := lookupSourceBuilder(s.Type); !ok {
		return fmt.Errorf("dex config: source %s has unsupported type %q", name, s.Type)
	}
	if s.MaxRequests < 0 {
		return fmt.Errorf("dex config: source %s max_requests cannot be negative", name)
	}
	if s.MaxRequests > 0 && s.Window <= 0 {
		return fmt.Errorf("dex config: source %s sets max_requests without a window", name)
	}
	return nil
}

// BuildSources instantiates DEX sources according to configuration.
func (c *Config) BuildSources() (map[string]Source, error) {
	result := make(map[string]Source, len(c.Sources))
	for name, sourceCfg := range c.Sources {
		builder, ok := lookupSourceBuilder(sourceCfg.Type)
		if !ok {
			return nil, fmt.Errorf("dex source %s: unsupported type %q", name, sourceCfg.Type)
		}
		source, err := builder(name, sourceCfg)
		if err != nil {
			return nil, fmt.Errorf("dex source %s: %w", name, err)
		}
		result[name] = source
	}
	return result, nil
}

// RateLimits returns the per-source request budgets. Sources without a
// configured budget are omitted and treated as unlimited by the limiter.
func (c *Config) RateLimits() map[string]RateLimit {
	limits := make(map[string]RateLimit)
	for name, source := range c.Sources {
		if source == nil || source.MaxRequests <= 0 {
			continue
		}
		limits[name] = RateLimit{Max: source.MaxRequests, Window: source.Window}
	}
	return limits
}
