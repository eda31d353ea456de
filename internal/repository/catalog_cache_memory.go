package repository

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e cacheEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

type memoryCatalogCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewMemoryCatalogCache() CatalogCache {
	return &memoryCatalogCache{entries: make(map[string]cacheEntry)}
}

func (c *memoryCatalogCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *memoryCatalogCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if entry.expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

func (c *memoryCatalogCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
