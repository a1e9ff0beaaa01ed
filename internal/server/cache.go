package server

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "vtco:projection:"

// Cache stores encoded projections keyed by their normalized parameters.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CacheKey derives a stable key from normalized parameters. Two inputs that
// normalize to the same parameters share a key.
func CacheKey(params projection.Parameters) (string, error) {
	data, err := json.Marshal(params.Normalize())
	if err != nil {
		return "", err
	}
	return cacheKeyPrefix + strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process Cache with a fixed time to live and a bound on
// the number of entries it holds.
type MemoryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryEntry
	now        func() time.Time
}

// NewMemoryCache returns an empty MemoryCache holding at most maxEntries
// values. A non-positive maxEntries selects the default bound.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = constants.DefaultCacheMaxEntries
	}
	return &MemoryCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

// Get returns the value stored under key. Expired entries are removed and
// reported as missing.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores a copy of value under key. When the cache is full, expired
// entries are dropped first, then the entry closest to expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	c.entries[key] = memoryEntry{value: append([]byte(nil), value...), expires: now.Add(c.ttl)}
	return nil
}

// evict makes room for one entry. Callers hold c.mu.
func (c *MemoryCache) evict(now time.Time) {
	for k, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	oldestKey := ""
	var oldest time.Time
	for k, entry := range c.entries {
		if oldestKey == "" || entry.expires.Before(oldest) {
			oldestKey, oldest = k, entry.expires
		}
	}
	delete(c.entries, oldestKey)
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RedisCache is a Cache backed by a redis server.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects lazily to the redis server at addr.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: rdb, ttl: ttl}
}

// Get returns the value stored under key; a missing key is not an error.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key with the cache's time to live.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Close releases the redis connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// NewCache builds the cache selected by cfg. It returns nil for the none
// backend.
func NewCache(cfg *Config) Cache {
	switch cfg.Cache.Backend {
	case CacheBackendRedis:
		return NewRedisCache(cfg.Cache.RedisAddr, cfg.CacheTTL())
	case CacheBackendNone:
		return nil
	default:
		return NewMemoryCache(cfg.CacheTTL(), cfg.Cache.MaxEntries)
	}
}
