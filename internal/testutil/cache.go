package testutil

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process token cache for tests. Expiry is recorded but
// not enforced.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
	gets    int
	hits    int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *MemoryCache) SetWithExpiry(_ context.Context, key string, ttl time.Duration, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	return true
}

func (c *MemoryCache) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.ttls, key)
	return true
}

// Entry returns the raw value stored under key.
func (c *MemoryCache) Entry(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// TTL returns the expiry the entry was written with.
func (c *MemoryCache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hits returns how many lookups found an entry.
func (c *MemoryCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// FailingCache behaves like an unreachable cache: every read misses and every
// write fails.
type FailingCache struct {
	mu    sync.Mutex
	calls int
}

func (c *FailingCache) Get(context.Context, string) (string, bool) {
	c.record()
	return "", false
}

func (c *FailingCache) SetWithExpiry(context.Context, string, time.Duration, string) bool {
	c.record()
	return false
}

func (c *FailingCache) Delete(context.Context, string) bool {
	c.record()
	return false
}

// Calls returns how many operations were attempted.
func (c *FailingCache) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *FailingCache) record() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}
