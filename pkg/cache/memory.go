package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process fallback used when Redis is disabled.
// Values are stored as JSON so callers see the same copy semantics as Redis.
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := m.cache.Get(key)
	if !found {
		return ErrCacheMiss
	}
	return json.Unmarshal(value.([]byte), dest)
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.cache.Set(key, data, expiration)
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		m.cache.Delete(key)
	}
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, found := m.cache.Get(key)
	return found, nil
}

func (m *MemoryCache) ItemCount() int {
	return m.cache.ItemCount()
}

func (m *MemoryCache) Close() error {
	m.cache.Flush()
	return nil
}
