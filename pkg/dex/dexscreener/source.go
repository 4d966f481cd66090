package dexscreener

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

// Refinement thresholds applied after normalization: the search endpoint
// surfaces a long tail of barely-traded pairs, so the cut is stricter than
// the shared domain filters.
const (
	refineMinLiquidity = 1000.0
	refineMinVolume    = 1000.0
	maxTokensPerFetch  = 50
)

// searchQueries rotate across fetches so successive cycles discover
// different corners of the market.
var searchQueries = []string{"pump", "WIF", "BONK", "SOL", "JUP", "RAY"}

// Source fetches trending pairs from DexScreener.
type Source struct {
	name   string
	chain  string
	client *Client
	pick   func(n int) int
}

// NewSource constructs a DexScreener source.
func NewSource(name, chain string, client *Client) *Source {
	if client == nil {
		client = NewClient()
	}
	return &Source{
		name:   name,
		chain:  chain,
		client: client,
		pick:   rand.Intn,
	}
}

func init() {
	dex.RegisterSource("dexscreener", func(name string, cfg *dex.SourceConfig) (dex.Source, error) {
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
	query := searchQueries[s.pick(len(searchQueries))]
	payload, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		logx.WithContext(ctx).Errorf("dexscreener: malformed payload: %v", err)
		return nil, nil
	}

	raws := Normalize(resp, s.chain, time.Now().UTC())
	return refine(raws), nil
}

func refine(raws []dex.Raw) []dex.Raw {
	kept := make([]dex.Raw, 0, len(raws))
	for _, raw := range raws {
		if raw.Liquidity < refineMinLiquidity || raw.Volume < refineMinVolume {
			continue
		}
		kept = append(kept, raw)
		if len(kept) == maxTokensPerFetch {
			break
		}
	}
	return kept
}
