package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

const (
	defaultBaseURL     = "https://api.jup.ag"
	defaultHTTPTimeout = 10 * time.Second
)

// Client wraps access to the Jupiter tokens API.
type Client struct {
	baseURL    string
	apiKey     string
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

// WithAPIKey sets the x-api-key header on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient constructs a Jupiter API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		provider:   "jupiter",
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// VerifiedTokens fetches the raw payload of the verified-token listing.
func (c *Client) VerifiedTokens(ctx context.Context) ([]byte, error) {
	endpoint := c.baseURL + "/tokens/v2/tag?query=verified"
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-api-key"] = c.apiKey
	}
	return dex.FetchPayload(ctx, c.httpClient, c.provider, endpoint, headers)
}

// Source fetches verified tokens from Jupiter.
type Source struct {
	name   string
	client *Client
}

// NewSource constructs a Jupiter source.
func NewSource(name string, client *Client) *Source {
	if client == nil {
		client = NewClient()
	}
	return &Source{name: name, client: client}
}

func init() {
	dex.RegisterSource("jupiter", func(name string, cfg *dex.SourceConfig) (dex.Source, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.APIKey != "" {
			opts = append(opts, WithAPIKey(cfg.APIKey))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewSource(name, NewClient(opts...)), nil
	})
}

// Name implements dex.Source.
func (s *Source) Name() string {
	return s.name
}

// FetchTokens implements dex.Source.
func (s *Source) FetchTokens(ctx context.Context) ([]dex.Raw, error) {
	payload, err := s.client.VerifiedTokens(ctx)
	if err != nil {
		return nil, err
	}

	var entries []TokenEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		logx.WithContext(ctx).Errorf("jupiter: malformed payload: %v", err)
		return nil, nil
	}
	return Normalize(entries, time.Now().UTC()), nil
}
