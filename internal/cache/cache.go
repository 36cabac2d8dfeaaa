// Package cache provides a concurrency-safe in-memory map used as a
// read-through layer in front of content on disk. Entries never expire;
// the owner invalidates keys on writes and purges on filesystem change
// notifications.
package cache

import "sync"

// Stats is a point-in-time snapshot of cache activity counters.
type Stats struct {
	Hits          int64
	Misses        int64
	Invalidations int64
	Purges        int64
	Entries       int
}

// Cache is a generic read-through cache guarded by a RWMutex. The zero
// value is not usable; construct with New.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	stats   Stats
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, ok
}

// Put stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Invalidate removes key from the cache. It reports whether an entry
// was actually removed.
func (c *Cache[K, V]) Invalidate(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
		c.stats.Invalidations++
	}
	return ok
}

// Purge drops every entry and returns how many were removed.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[K]V)
	if n > 0 {
		c.stats.Purges++
	}
	return n
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns current activity counters along with the entry count.
func (c *Cache[K, V]) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}
