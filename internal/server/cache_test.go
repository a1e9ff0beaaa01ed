package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	base := testutil.CorollaParameters()

	key, err := CacheKey(base)
	require.NoError(t, err)
	assert.Contains(t, key, cacheKeyPrefix)

	equivalent := testutil.CorollaParameters()
	equivalent.HorizonYears = 0 // normalizes to 5
	equivalent.FuelUnits = " UK "
	equivalentKey, err := CacheKey(equivalent)
	require.NoError(t, err)
	assert.Equal(t, key, equivalentKey, "inputs that normalize the same share a key")

	different := testutil.CorollaParameters()
	different.Price = 22001
	differentKey, err := CacheKey(different)
	require.NoError(t, err)
	assert.NotEqual(t, key, differentKey)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Minute, 0)
	cache.now = func() time.Time { return now }

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("v")
	require.NoError(t, cache.Set(ctx, "k", value))
	value[0] = 'x'

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got, "Set stores a copy")

	now = now.Add(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entries expire after the ttl")
}

func TestMemoryCacheEvictsExpiredWhenFull(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Second, 2)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "old", []byte("1")))
	now = now.Add(time.Minute)
	require.NoError(t, cache.Set(ctx, "fresh", []byte("2")))
	assert.Equal(t, 2, cache.Len(), "no sweep while below the bound")

	require.NoError(t, cache.Set(ctx, "new", []byte("3")))
	assert.Equal(t, 2, cache.Len())
	_, ok, err := cache.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok, "live entries survive when expired ones free room")
}

func TestMemoryCacheBoundsEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Hour, 3)
	cache.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		now = now.Add(time.Second)
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), []byte("v")))
	}
	assert.Equal(t, 3, cache.Len())

	for _, key := range []string{"k7", "k8", "k9"} {
		_, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, "newest entry %s should be kept", key)
	}
	_, ok, err := cache.Get(ctx, "k0")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entries are evicted first")

	// Overwriting an existing key never evicts.
	require.NoError(t, cache.Set(ctx, "k9", []byte("w")))
	assert.Equal(t, 3, cache.Len())
}

func TestMemoryCacheDefaultBound(t *testing.T) {
	cache := NewMemoryCache(time.Minute, 0)
	assert.Equal(t, constants.DefaultCacheMaxEntries, cache.maxEntries)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cache := NewRedisCache(mr.Addr(), time.Minute)
	defer func() {
		_ = cache.Close()
	}()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "a missing key is not an error")

	require.NoError(t, cache.Set(ctx, "k", []byte("payload")))
	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entries expire after the ttl")
}

func TestRedisCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(mr.Addr(), time.Minute)
	defer func() {
		_ = cache.Close()
	}()
	mr.Close()

	_, _, err := cache.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), "k", []byte("v")))
}

func TestProjectionUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewRedisCache(mr.Addr(), time.Minute)
	defer func() {
		_ = cache.Close()
	}()
	handler := newTestHandler(t, Options{Cache: cache})
	payload := map[string]interface{}{"parameters": testutil.CorollaParameters()}

	first := decodeProjection(t, postJSON(t, handler, "/api/projection", payload))
	second := decodeProjection(t, postJSON(t, handler, "/api/projection", payload))
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Len(t, mr.Keys(), 1)
}

func TestNewCache(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.IsType(t, &MemoryCache{}, NewCache(cfg))

	cfg.Cache.Backend = CacheBackendNone
	assert.Nil(t, NewCache(cfg))

	cfg.Cache.Backend = CacheBackendRedis
	cfg.Cache.RedisAddr = "127.0.0.1:0"
	redisCache, ok := NewCache(cfg).(*RedisCache)
	require.True(t, ok)
	assert.NoError(t, redisCache.Close())
}

// failingCache reports an error for every call.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, assert.AnError
}

func (failingCache) Set(context.Context, string, []byte) error {
	return assert.AnError
}

func TestProjectionSurvivesCacheFailure(t *testing.T) {
	handler := newTestHandler(t, Options{Cache: failingCache{}})
	payload := map[string]interface{}{"parameters": testutil.CorollaParameters()}

	resp := decodeProjection(t, postJSON(t, handler, "/api/projection", payload))
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Projection.Years, 5)
}
