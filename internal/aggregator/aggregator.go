// Package aggregator fans out to the configured DEX sources, merges their
// token feeds into one canonical list and serves sorted, paginated views of
// it backed by a short-lived cache.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/cache"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/ratelimit"
)

// ErrInvalidQuery marks a query with an unsupported period, sort column or
// order. Handlers map it to a 400.
var ErrInvalidQuery = errors.New("invalid token query")

// Sort columns accepted by Query.SortBy.
const (
	SortByVolume      = "volume"
	SortByPriceChange = "price_change"
	SortByMarketCap   = "market_cap"
)

// Query selects, orders and pages the merged token list. Cursor is the
// opaque value handed back in a previous page; empty starts from the top.
type Query struct {
	Period string // 1h, 24h or 7d; selects the sort window
	SortBy string
	Order  string // asc or desc
	Limit  int
	Cursor string
}

// Pagination describes the page position within the full list. NextCursor is
// empty once the list is exhausted.
type Pagination struct {
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// Page is one slice of the merged token list.
type Page struct {
	Tokens     []dex.Token `json:"tokens"`
	Pagination Pagination  `json:"pagination"`
	Sources    []string    `json:"sources"`
	Cached     bool        `json:"cached"`
}

// Options tunes caching and pagination. Zero values fall back to defaults.
type Options struct {
	CacheTTL     time.Duration
	DetailTTL    time.Duration
	DefaultLimit int
	MaxLimit     int
}

func (o Options) normalise() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.DetailTTL <= 0 {
		o.DetailTTL = 30 * time.Second
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 20
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = 50
	}
	return o
}

// Service aggregates token data across DEX sources.
type Service struct {
	sources map[string]dex.Source
	limiter *ratelimit.Limiter
	store   *cache.Store
	opts    Options
}

// New constructs a Service over the given sources.
func New(sources map[string]dex.Source, limiter *ratelimit.Limiter, store *cache.Store, opts Options) *Service {
	return &Service{
		sources: sources,
		limiter: limiter,
		store:   store,
		opts:    opts.normalise(),
	}
}

// GetTokens returns one page of the merged token list, sorted per the query.
// A cold cache triggers a full source fan-out; sources that fail are logged
// and skipped, so the worst case is an empty, uncached page rather than an
// error.
func (s *Service) GetTokens(ctx context.Context, q Query) (*Page, error) {
	q, offset, err := s.normaliseQuery(q)
	if err != nil {
		return nil, err
	}

	tokens, cached := s.loadBase(ctx)
	sorted := sortTokens(tokens, q)

	total := len(sorted)
	start := offset
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	page := &Page{
		Tokens: sorted[start:end],
		Pagination: Pagination{
			Limit:   q.Limit,
			Total:   total,
			HasMore: end < total,
		},
		Sources: s.sortedSourceNames(),
		Cached:  cached,
	}
	if page.Pagination.HasMore {
		page.Pagination.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// SnapshotTokens returns the full merged list and whether it came from cache.
func (s *Service) SnapshotTokens(ctx context.Context) ([]dex.Token, bool, error) {
	tokens, cached := s.loadBase(ctx)
	return tokens, cached, nil
}

// RefreshTokens bypasses the cache, fetches fresh data from every source and
// rewrites the cached list. Stale per-token detail entries are invalidated.
func (s *Service) RefreshTokens(ctx context.Context) ([]dex.Token, error) {
	tokens := dex.Merge(s.fetchAll(ctx))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("aggregator: no source returned data")
	}

	s.store.SetJSON(ctx, cache.TokensBaseKey(), tokens, s.opts.CacheTTL)
	s.store.DeletePattern(ctx, cache.MatchPattern("token:detail"))
	return tokens, nil
}

// GetTokenByAddress finds one token by address, case-insensitively, across
// the full merged list. It returns (nil, nil) when the token is unknown.
func (s *Service) GetTokenByAddress(ctx context.Context, address string) (*dex.Token, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidQuery)
	}

	detailKey := cache.TokenDetailKey(address)
	var cachedToken dex.Token
	if s.store.GetJSON(ctx, detailKey, &cachedToken) {
		s.store.IncrementHits(ctx)
		return &cachedToken, nil
	}
	s.store.IncrementMisses(ctx)

	tokens, _ := s.loadBase(ctx)
	for i := range tokens {
		if strings.EqualFold(tokens[i].Address, address) {
			token := tokens[i]
			s.store.SetJSON(ctx, detailKey, token, s.opts.DetailTTL)
			return &token, nil
		}
	}
	return nil, nil
}

// CacheStats exposes hit/miss counters for the stats endpoint.
func (s *Service) CacheStats(ctx context.Context) cache.Stats {
	return s.store.ReadStats(ctx)
}

// SourceNames lists the configured sources in stable order.
func (s *Service) SourceNames() []string {
	return s.sortedSourceNames()
}

func (s *Service) loadBase(ctx context.Context) ([]dex.Token, bool) {
	var tokens []dex.Token
	if s.store.GetJSON(ctx, cache.TokensBaseKey(), &tokens) {
		s.store.IncrementHits(ctx)
		return tokens, true
	}
	s.store.IncrementMisses(ctx)

	tokens = dex.Merge(s.fetchAll(ctx))
	if len(tokens) > 0 {
		s.store.SetJSON(ctx, cache.TokensBaseKey(), tokens, s.opts.CacheTTL)
	}
	return tokens, false
}

// fetchAll queries every source concurrently under the rate limiter. Source
// failures are isolated: a failing source contributes nothing while the rest
// still land.
func (s *Service) fetchAll(ctx context.Context) []dex.Raw {
	names := s.sortedSourceNames()
	results := make([][]dex.Raw, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string, source dex.Source) {
			defer wg.Done()

			var fetched []dex.Raw
			err := s.limiter.ExecuteWithBackoff(ctx, name, func(ctx context.Context) error {
				var err error
				fetched, err = source.FetchTokens(ctx)
				return err
			})
			if err != nil {
				logx.WithContext(ctx).Errorf("aggregator: source %s failed: %v", name, err)
				return
			}
			results[i] = fetched
		}(i, name, s.sources[name])
	}
	wg.Wait()

	var raws []dex.Raw
	for _, fetched := range results {
		raws = append(raws, fetched...)
	}
	return raws
}

func (s *Service) sortedSourceNames() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) normaliseQuery(q Query) (Query, int, error) {
	if q.Period == "" {
		q.Period = "24h"
	}
	if q.SortBy == "" {
		q.SortBy = SortByVolume
	}
	if q.Order == "" {
		q.Order = "desc"
	}

	switch q.Period {
	case "1h", "24h", "7d":
	default:
		return q, 0, fmt.Errorf("%w: period %q", ErrInvalidQuery, q.Period)
	}
	switch q.SortBy {
	case SortByVolume, SortByPriceChange, SortByMarketCap:
	default:
		return q, 0, fmt.Errorf("%w: sort_by %q", ErrInvalidQuery, q.SortBy)
	}
	switch q.Order {
	case "asc", "desc":
	default:
		return q, 0, fmt.Errorf("%w: order %q", ErrInvalidQuery, q.Order)
	}

	if q.Limit <= 0 {
		q.Limit = s.opts.DefaultLimit
	}
	if q.Limit > s.opts.MaxLimit {
		q.Limit = s.opts.MaxLimit
	}

	offset := 0
	if q.Cursor != "" {
		n, err := strconv.Atoi(q.Cursor)
		if err != nil || n < 0 {
			return q, 0, fmt.Errorf("%w: cursor %q", ErrInvalidQuery, q.Cursor)
		}
		offset = n
	}
	return q, offset, nil
}

// sortTokens orders a copy of tokens by the query's column without touching
// the input. Ties break on address so pagination stays stable.
func sortTokens(tokens []dex.Token, q Query) []dex.Token {
	sorted := make([]dex.Token, len(tokens))
	copy(sorted, tokens)

	column := sortColumn(q)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := column(sorted[i]), column(sorted[j])
		if a == b {
			return sorted[i].Address < sorted[j].Address
		}
		if q.Order == "asc" {
			return a < b
		}
		return a > b
	})
	return sorted
}

func sortColumn(q Query) func(dex.Token) float64 {
	switch q.SortBy {
	case SortByPriceChange:
		switch q.Period {
		case "1h":
			return func(t dex.Token) float64 { return t.PriceChange1h }
		case "7d":
			return func(t dex.Token) float64 { return t.PriceChange7d }
		default:
			return func(t dex.Token) float64 { return t.PriceChange24h }
		}
	case SortByMarketCap:
		return func(t dex.Token) float64 { return t.MarketCap }
	default:
		switch q.Period {
		case "1h":
			return func(t dex.Token) float64 { return t.Volume1h }
		case "7d":
			return func(t dex.Token) float64 { return t.Volume7d }
		default:
			return func(t dex.Token) float64 { return t.Volume24h }
		}
	}
}
