package imagegen

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache holds rendered images in memory for a limited time. Keys identify
// the session and selection that produced the image, so identical
// selections are served identical bytes.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	maxAge  time.Duration
	now     func() time.Time
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// NewCache creates a render cache. Entries are dropped after maxAge; a
// non-positive maxAge disables caching.
func NewCache(maxAge time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Get retrieves a cached image if it exists and is not stale.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// Set stores an image in the cache and evicts stale entries.
func (c *Cache) Set(key string, data []byte) {
	if c.maxAge <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{data: data, expiresAt: now.Add(c.maxAge)}
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
