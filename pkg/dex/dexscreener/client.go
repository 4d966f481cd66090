package dexscreener

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

const (
	defaultBaseURL     = "https://api.dexscreener.com/latest/dex"
	defaultHTTPTimeout = 10 * time.Second
)

// Client wraps access to the DexScreener REST endpoints.
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

// NewClient constructs a DexScreener API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		provider:   "dexscreener",
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Search fetches the raw payload of the pair search endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))
	return dex.FetchPayload(ctx, c.httpClient, c.provider, endpoint, nil)
}
