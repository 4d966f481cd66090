package geckoterminal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

const (
	defaultBaseURL     = "https://api.geckoterminal.com/api/v2"
	defaultHTTPTimeout = 10 * time.Second
)

// Client wraps access to the GeckoTerminal REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	provider   string
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// NewClient constructs a GeckoTerminal API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		provider:   "geckoterminal",
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// TrendingPools fetches the raw payload of the trending pools endpoint for a
// network.
func (c *Client) TrendingPools(ctx context.Context, network string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/networks/%s/trending_pools?include=base_token", c.baseURL, network)
	return dex.FetchPayload(ctx, c.httpClient, c.provider, endpoint, nil)
}

// Source fetches trending pools from GeckoTerminal.
type Source struct {
	name   string
	chain  string
	client *Client
}

// NewSource constructs a GeckoTerminal source.
func NewSource(name, chain string, client *Client) *Source {
	if client == nil {
		client = NewClient()
	}
	return &Source{name: name, chain: chain, client: client}
}

func init() {
	dex.RegisterSource("geckoterminal", func(name string, cfg *dex.SourceConfig) (dex.Source, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewSource(name, cfg.Chain, NewClient(opts...)), nil
	})
}

// Name implements dex.Source.
func (s *Source) Name() string {
	return s.name
}

// FetchTokens implements dex.Source.
func (s *Source) FetchTokens(ctx context.Context) ([]dex.Raw, error) {
	payload, err := s.client.TrendingPools(ctx, s.chain)
	if err != nil {
		return nil, err
	}

	var resp PoolsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		logx.WithContext(ctx).Errorf("geckoterminal: malformed payload: %v", err)
		return nil, nil
	}
	return Normalize(resp, s.chain, time.Now().UTC()), nil
}
