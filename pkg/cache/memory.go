package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps entries in process memory. It is safe for concurrent use.
// Expired entries are dropped when read or on [MemoryCache.Prune].
type MemoryCache struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache(opts ...Option) *MemoryCache {
	o := buildOptions(opts)
	return &MemoryCache{clock: o.clock, entries: make(map[string]memoryEntry)}
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if expired(c.clock, e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		data:      append([]byte(nil), data...),
		expiresAt: expiry(c.clock, ttl),
	}
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Prune drops expired entries and returns how many were removed.
func (c *MemoryCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if expired(c.clock, e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Close empties the cache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
