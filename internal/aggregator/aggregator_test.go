package aggregator

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/cache"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/ratelimit"
)

type stubSource struct {
	name string
	raws []dex.Raw
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchTokens(context.Context) ([]dex.Raw, error) {
	return s.raws, s.err
}

type memoryBackend struct {
	values map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{values: make(map[string]string)}
}

func (m *memoryBackend) GetCtx(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryBackend) SetexCtx(_ context.Context, key, value string, _ int) error {
	m.values[key] = value
	return nil
}

func (m *memoryBackend) DelCtx(_ context.Context, keys ...string) (int, error) {
	for _, key := range keys {
		delete(m.values, key)
	}
	return len(keys), nil
}

func (m *memoryBackend) IncrCtx(_ context.Context, key string) (int64, error) {
	count, _ := strconv.ParseInt(m.values[key], 10, 64)
	count++
	m.values[key] = strconv.FormatInt(count, 10)
	return count, nil
}

func (m *memoryBackend) ScanCtx(_ context.Context, _ uint64, match string, _ int64) ([]string, uint64, error) {
	prefix := match[:len(match)-1]
	keys := []string{}
	for key := range m.values {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, 0, nil
}

func (m *memoryBackend) PingCtx(context.Context) bool { return true }

func marketRaw(address string, volume24h float64) dex.Raw {
	return dex.Raw{
		Address:   address,
		Name:      "Token " + address,
		Ticker:    "TKN",
		Price:     1,
		Liquidity: 10_000,
		Volume:    volume24h,
		Volume24h: volume24h,
		Protocol:  "raydium",
		Source:    "dexscreener",
	}
}

func newService(store *cache.Store, sources ...*stubSource) *Service {
	byName := make(map[string]dex.Source, len(sources))
	for _, source := range sources {
		byName[source.name] = source
	}
	limiter := ratelimit.New(nil, nil, ratelimit.DefaultBackoff())
	return New(byName, limiter, store, Options{})
}

func uncachedService(sources ...*stubSource) *Service {
	return newService(cache.New(nil, false), sources...)
}

func TestGetTokensMergesAcrossSources(t *testing.T) {
	shared := marketRaw("addr-shared", 5_000)
	fromJupiter := shared
	fromJupiter.Source = "jupiter"
	fromJupiter.Protocol = "jupiter"

	service := uncachedService(
		&stubSource{name: "dexscreener", raws: []dex.Raw{shared, marketRaw("addr-a", 9_000)}},
		&stubSource{name: "jupiter", raws: []dex.Raw{fromJupiter}},
	)

	page, err := service.GetTokens(context.Background(), Query{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Pagination.Total)
	assert.False(t, page.Cached)
	assert.Equal(t, []string{"dexscreener", "jupiter"}, page.Sources)

	var merged *dex.Token
	for i := range page.Tokens {
		if page.Tokens[i].Address == "addr-shared" {
			merged = &page.Tokens[i]
		}
	}
	require.NotNil(t, merged)
	assert.ElementsMatch(t, []string{"dexscreener", "jupiter"}, merged.Sources)
	assert.Equal(t, 10_000.0, merged.Volume)
}

func TestGetTokensIsolatesFailingSource(t *testing.T) {
	service := uncachedService(
		&stubSource{name: "dexscreener", raws: []dex.Raw{marketRaw("addr-a", 9_000)}},
		&stubSource{name: "jupiter", err: errors.New("upstream 500")},
	)

	page, err := service.GetTokens(context.Background(), Query{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, "addr-a", page.Tokens[0].Address)
}

func TestGetTokensDegradedWhenAllSourcesFail(t *testing.T) {
	service := uncachedService(
		&stubSource{name: "dexscreener", err: errors.New("down")},
		&stubSource{name: "jupiter", err: errors.New("down")},
	)

	page, err := service.GetTokens(context.Background(), Query{})
	require.NoError(t, err)
	assert.Zero(t, page.Pagination.Total)
	assert.Empty(t, page.Tokens)
	assert.False(t, page.Cached)
	assert.False(t, page.Pagination.HasMore)
}

func TestGetTokensSortOrders(t *testing.T) {
	raws := []dex.Raw{
		marketRaw("addr-a", 1_500),
		marketRaw("addr-b", 9_000),
		marketRaw("addr-c", 4_000),
	}
	raws[0].PriceChange1h = 12
	raws[1].PriceChange1h = -4
	raws[2].PriceChange1h = 3
	raws[0].MarketCap = 100
	raws[1].MarketCap = 300
	raws[2].MarketCap = 200

	service := uncachedService(&stubSource{name: "dexscreener", raws: raws})
	ctx := context.Background()

	page, err := service.GetTokens(ctx, Query{SortBy: SortByVolume, Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"addr-b", "addr-c", "addr-a"}, addresses(page.Tokens))

	page, err = service.GetTokens(ctx, Query{SortBy: SortByVolume, Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"addr-a", "addr-c", "addr-b"}, addresses(page.Tokens))

	page, err = service.GetTokens(ctx, Query{Period: "1h", SortBy: SortByPriceChange, Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"addr-a", "addr-c", "addr-b"}, addresses(page.Tokens))

	page, err = service.GetTokens(ctx, Query{SortBy: SortByMarketCap, Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"addr-b", "addr-c", "addr-a"}, addresses(page.Tokens))
}

func TestGetTokensRejectsInvalidQuery(t *testing.T) {
	service := uncachedService(&stubSource{name: "dexscreener"})
	ctx := context.Background()

	_, err := service.GetTokens(ctx, Query{SortBy: "liquidity"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = service.GetTokens(ctx, Query{Order: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = service.GetTokens(ctx, Query{Period: "1y"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestGetTokensPaginationWalksWholeList(t *testing.T) {
	raws := make([]dex.Raw, 45)
	for i := range raws {
		raws[i] = marketRaw("addr-"+strconv.Itoa(i), float64(1_100+i))
	}
	service := uncachedService(&stubSource{name: "dexscreener", raws: raws})
	ctx := context.Background()

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := service.GetTokens(ctx, Query{Limit: 20, Cursor: cursor})
		require.NoError(t, err)
		assert.Equal(t, 45, page.Pagination.Total)
		assert.Equal(t, 20, page.Pagination.Limit)
		for _, token := range page.Tokens {
			assert.False(t, seen[token.Address], "token %s paged twice", token.Address)
			seen[token.Address] = true
		}
		pages++
		if !page.Pagination.HasMore {
			assert.Empty(t, page.Pagination.NextCursor)
			break
		}
		require.NotEmpty(t, page.Pagination.NextCursor)
		cursor = page.Pagination.NextCursor
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 45)
}

func TestGetTokensClampsLimit(t *testing.T) {
	raws := make([]dex.Raw, 60)
	for i := range raws {
		raws[i] = marketRaw("addr-"+strconv.Itoa(i), float64(1_100+i))
	}
	service := uncachedService(&stubSource{name: "dexscreener", raws: raws})

	page, err := service.GetTokens(context.Background(), Query{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page.Tokens, 50)

	page, err = service.GetTokens(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, page.Tokens, 20)
}

func TestGetTokensCursorPastEnd(t *testing.T) {
	service := uncachedService(&stubSource{name: "dexscreener", raws: []dex.Raw{marketRaw("addr-a", 2_000)}})

	page, err := service.GetTokens(context.Background(), Query{Cursor: "99"})
	require.NoError(t, err)
	assert.Empty(t, page.Tokens)
	assert.False(t, page.Pagination.HasMore)
	assert.Empty(t, page.Pagination.NextCursor)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestGetTokensRejectsMalformedCursor(t *testing.T) {
	service := uncachedService(&stubSource{name: "dexscreener", raws: []dex.Raw{marketRaw("addr-a", 2_000)}})
	ctx := context.Background()

	_, err := service.GetTokens(ctx, Query{Cursor: "not-a-cursor"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = service.GetTokens(ctx, Query{Cursor: "-3"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestGetTokensServesFromCache(t *testing.T) {
	source := &stubSource{name: "dexscreener", raws: []dex.Raw{marketRaw("addr-a", 2_000)}}
	store := cache.New(newMemoryBackend(), true)
	service := newService(store, source)
	ctx := context.Background()

	first, err := service.GetTokens(ctx, Query{})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// the source changing has no effect while the cache holds the list
	source.raws = nil

	second, err := service.GetTokens(ctx, Query{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	require.Len(t, second.Tokens, 1)
	assert.Equal(t, "addr-a", second.Tokens[0].Address)

	stats := service.CacheStats(ctx)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestGetTokenByAddress(t *testing.T) {
	service := uncachedService(&stubSource{name: "dexscreener", raws: []dex.Raw{
		marketRaw("AddrMixedCase", 2_000),
		marketRaw("addr-b", 3_000),
	}})
	ctx := context.Background()

	token, err := service.GetTokenByAddress(ctx, "addrmixedcase")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "AddrMixedCase", token.Address)

	missing, err := service.GetTokenByAddress(ctx, "addr-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = service.GetTokenByAddress(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestGetTokenByAddressUsesDetailCache(t *testing.T) {
	source := &stubSource{name: "dexscreener", raws: []dex.Raw{marketRaw("addr-a", 2_000)}}
	store := cache.New(newMemoryBackend(), true)
	service := newService(store, source)
	ctx := context.Background()

	token, err := service.GetTokenByAddress(ctx, "addr-a")
	require.NoError(t, err)
	require.NotNil(t, token)

	source.raws = nil
	store.Delete(ctx, cache.TokensBaseKey())

	again, err := service.GetTokenByAddress(ctx, "ADDR-A")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, "addr-a", again.Address)
}

func TestSnapshotTokensReturnsFullList(t *testing.T) {
	raws := make([]dex.Raw, 30)
	for i := range raws {
		raws[i] = marketRaw("addr-"+strconv.Itoa(i), float64(1_100+i))
	}
	store := cache.New(newMemoryBackend(), true)
	service := newService(store, &stubSource{name: "dexscreener", raws: raws})
	ctx := context.Background()

	tokens, cached, err := service.SnapshotTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 30, "snapshot is never paginated")
	assert.False(t, cached)

	tokens, cached, err = service.SnapshotTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 30)
	assert.True(t, cached)
}

func TestRefreshTokensBypassesCache(t *testing.T) {
	source := &stubSource{name: "dexscreener", raws: []dex.Raw{marketRaw("addr-a", 2_000)}}
	backend := newMemoryBackend()
	store := cache.New(backend, true)
	service := newService(store, source)
	ctx := context.Background()

	_, err := service.GetTokens(ctx, Query{})
	require.NoError(t, err)

	source.raws = []dex.Raw{marketRaw("addr-b", 4_000)}
	tokens, err := service.RefreshTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "addr-b", tokens[0].Address)

	page, err := service.GetTokens(ctx, Query{})
	require.NoError(t, err)
	assert.True(t, page.Cached)
	require.Len(t, page.Tokens, 1)
	assert.Equal(t, "addr-b", page.Tokens[0].Address)
}

func TestRefreshTokensFailsWhenEmpty(t *testing.T) {
	service := uncachedService(&stubSource{name: "dexscreener", err: errors.New("down")})

	_, err := service.RefreshTokens(context.Background())
	assert.Error(t, err)
}

func addresses(tokens []dex.Token) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		out[i] = token.Address
	}
	return out
}
