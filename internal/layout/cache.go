package layout

import (
	"sync"

	"ember/internal/types"
)

type cacheKey struct {
	Type   types.TypeID
	Target Target
}

type cacheEntry struct {
	Layout TypeLayout
	Err    *Error
}

type cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[cacheKey]*cacheEntry, 64)}
}

func (c *cache) get(key cacheKey) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *cache) put(key cacheKey, e *cacheEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}
