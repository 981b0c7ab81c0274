package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/config"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestCache(t *testing.T, ttl time.Duration) (*QuoteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), mr
}

// TestQuoteCacheRoundTrip проверяет запись, чтение и истечение TTL.
func TestQuoteCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "abc")
	assert.False(t, ok)

	entry := Entry{
		Document:   json.RawMessage(`{"Budget":{"price":23000}}`),
		Normalized: false,
		Provider:   "openai",
		Model:      "gpt-4.1",
	}
	cache.Set(ctx, "abc", entry)

	got, ok := cache.Get(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, "openai", got.Provider)
	assert.JSONEq(t, `{"Budget":{"price":23000}}`, string(got.Document))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"abc"))

	mr.FastForward(2 * time.Hour)
	_, ok = cache.Get(ctx, "abc")
	assert.False(t, ok)
}

func TestQuoteCacheCorruptedEntry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(keyPrefix+"bad", "not json"))

	_, ok := cache.Get(context.Background(), "bad")
	assert.False(t, ok)
}

// TestQuoteCacheUnavailable проверяет, что недоступный Redis дает промах.
func TestQuoteCacheUnavailable(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	mr.Close()

	ctx := context.Background()
	cache.Set(ctx, "k", Entry{Document: json.RawMessage(`{}`)})
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, cache.Ping(ctx))
}

func TestNilQuoteCache(t *testing.T) {
	var cache *QuoteCache
	ctx := context.Background()

	cache.Set(ctx, "k", Entry{})
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, cache.Ping(ctx))
	assert.NoError(t, cache.Close())
}

func TestKey(t *testing.T) {
	type profile struct {
		Income float64 `json:"income"`
		Credit string  `json:"credit"`
	}

	first, err := Key(profile{Income: 6500, Credit: "good"})
	require.NoError(t, err)
	second, err := Key(profile{Income: 6500, Credit: "good"})
	require.NoError(t, err)
	other, err := Key(profile{Income: 6501, Credit: "good"})
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestOpenDisabled(t *testing.T) {
	cache, err := Open(context.Background(), config.CacheConfig{})
	require.NoError(t, err)
	assert.Nil(t, cache)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	cache, err := Open(context.Background(), config.CacheConfig{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	require.NotNil(t, cache)
	t.Cleanup(func() { _ = cache.Close() })
	assert.NoError(t, cache.Ping(context.Background()))
}
