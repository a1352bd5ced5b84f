package pipeline

import (
	"sync"

	"ember/internal/anvil"
	"ember/internal/erasure"
	"ember/internal/resolve"
)

// cachedEntry holds one Digest's resolved stages (B/C/D), the portion of
// the pipeline a hit can skip entirely.
type cachedEntry struct {
	resolved *resolve.Result
	anvil    *anvil.Module
	erased   *erasure.Recorder
}

// ModuleCache is an in-memory cache of resolved Type Contexts and Anvil
// modules keyed by content digest, for repeated Compile calls over the
// same input (watch-mode rebuilds, the LSP re-verifying on every
// keystroke).
type ModuleCache struct {
	mu      sync.RWMutex
	entries map[Digest]cachedEntry
}

// NewModuleCache creates an empty ModuleCache with the given capacity hint.
func NewModuleCache(capHint int) *ModuleCache {
	return &ModuleCache{entries: make(map[Digest]cachedEntry, capHint)}
}

// Get retrieves the cached stages for digest, if present.
func (c *ModuleCache) Get(digest Digest) (cachedEntry, bool) {
	if c == nil {
		return cachedEntry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[digest]
	return e, ok
}

// Put inserts or replaces the cached stages for digest.
func (c *ModuleCache) Put(digest Digest, e cachedEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = e
}

// Drop evicts digest's cached entry, if any.
func (c *ModuleCache) Drop(digest Digest) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, digest)
}
