package cache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	values map[string]string
	ttls   map[string]int

	getErr  error
	setErr  error
	scanErr error
	alive   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		values: make(map[string]string),
		ttls:   make(map[string]int),
		alive:  true,
	}
}

func (f *fakeBackend) GetCtx(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.values[key], nil
}

func (f *fakeBackend) SetexCtx(_ context.Context, key, value string, seconds int) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	f.ttls[key] = seconds
	return nil
}

func (f *fakeBackend) DelCtx(_ context.Context, keys ...string) (int, error) {
	removed := 0
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeBackend) IncrCtx(_ context.Context, key string) (int64, error) {
	count, _ := strconv.ParseInt(f.values[key], 10, 64)
	count++
	f.values[key] = strconv.FormatInt(count, 10)
	return count, nil
}

func (f *fakeBackend) ScanCtx(_ context.Context, _ uint64, match string, _ int64) ([]string, uint64, error) {
	if f.scanErr != nil {
		return nil, 0, f.scanErr
	}
	prefix := match[:len(match)-1] // trailing *
	keys := []string{}
	for key := range f.values {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, 0, nil
}

func (f *fakeBackend) PingCtx(context.Context) bool {
	return f.alive
}

type payload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestSetAndGetJSON(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, true)
	ctx := context.Background()

	store.SetJSON(ctx, TokensBaseKey(), payload{Name: "SOL", Price: 150}, 30*time.Second)

	var got payload
	require.True(t, store.GetJSON(ctx, TokensBaseKey(), &got))
	assert.Equal(t, payload{Name: "SOL", Price: 150}, got)
	assert.Equal(t, 30, backend.ttls[TokensBaseKey()])
}

func TestGetJSONMissAndCorruptEntry(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, true)
	ctx := context.Background()

	var got payload
	assert.False(t, store.GetJSON(ctx, "dexagg:absent", &got))

	backend.values["dexagg:corrupt"] = "{half a json"
	assert.False(t, store.GetJSON(ctx, "dexagg:corrupt", &got))
}

func TestGetJSONDegradesOnBackendError(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("redis down")
	store := New(backend, true)

	var got payload
	assert.False(t, store.GetJSON(context.Background(), TokensBaseKey(), &got))
}

func TestDisabledStoreIsInert(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, false)
	ctx := context.Background()

	store.SetJSON(ctx, TokensBaseKey(), payload{Name: "SOL"}, time.Second)
	assert.Empty(t, backend.values)

	var got payload
	assert.False(t, store.GetJSON(ctx, TokensBaseKey(), &got))
	assert.False(t, store.Enabled())
	assert.False(t, store.Ping(ctx))
	assert.Equal(t, Stats{}, store.ReadStats(ctx))
}

func TestNilBackendIsInert(t *testing.T) {
	store := New(nil, true)
	assert.False(t, store.Enabled())
	store.SetJSON(context.Background(), "k", payload{}, time.Second)
}

func TestDeletePattern(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, true)
	ctx := context.Background()

	store.SetJSON(ctx, TokenDetailKey("AAA"), payload{Name: "a"}, time.Second)
	store.SetJSON(ctx, TokenDetailKey("BBB"), payload{Name: "b"}, time.Second)
	store.SetJSON(ctx, TokensBaseKey(), payload{Name: "base"}, time.Second)

	store.DeletePattern(ctx, MatchPattern("token:detail"))

	assert.NotContains(t, backend.values, TokenDetailKey("AAA"))
	assert.NotContains(t, backend.values, TokenDetailKey("BBB"))
	assert.Contains(t, backend.values, TokensBaseKey())
}

func TestStatsCounters(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, true)
	ctx := context.Background()

	store.IncrementHits(ctx)
	store.IncrementHits(ctx)
	store.IncrementHits(ctx)
	store.IncrementMisses(ctx)

	stats := store.ReadStats(ctx)
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.75, stats.HitRate, 1e-9)
}

func TestTokenDetailKeyLowercasesAddress(t *testing.T) {
	assert.Equal(t, TokenDetailKey("abcdef"), TokenDetailKey("ABCDEF"))
	assert.Equal(t, "dexagg:token:detail:abc", TokenDetailKey("ABC"))
}

func TestPing(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, true)
	assert.True(t, store.Ping(context.Background()))

	backend.alive = false
	assert.False(t, store.Ping(context.Background()))
}
