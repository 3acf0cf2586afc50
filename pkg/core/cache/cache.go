// Package cache provides a small thread-safe in-memory cache with TTL and a
// bounded size.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
	added   time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// Config holds cache configuration
type Config struct {
	MaxItems int
	TTL      time.Duration // zero keeps entries until evicted
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems: 10000,
		TTL:      time.Minute,
	}
}

// Stats are the counters of a cache
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64 // live entries dropped to make room
	Size      int
}

// HitRate returns hits as a percentage of all lookups
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache maps keys to values that expire after the configured TTL. When full,
// expired entries are swept first and then the oldest entry is evicted.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*entry[V]
	maxItems int
	ttl      time.Duration
	now      func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache
func New[K comparable, V any](cfg Config) *Cache[K, V] {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultConfig().MaxItems
	}
	if cfg.TTL < 0 {
		cfg.TTL = 0
	}
	return &Cache[K, V]{
		items:    make(map[K]*entry[V]),
		maxItems: cfg.MaxItems,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Get retrieves a live value
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if ok && e.expired(c.now()) {
		delete(c.items, key)
		ok = false
	}
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores a value with the configured TTL
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.sweep(now)
		if len(c.items) >= c.maxItems {
			c.evictOldest()
		}
	}

	e := &entry[V]{value: value, added: now}
	if c.ttl > 0 {
		e.expires = now.Add(c.ttl)
	}
	c.items[key] = e
}

// Len returns the number of stored entries, expired ones included until
// they are swept
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the cache counters
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions, Size: len(c.items)}
}

// sweep drops expired entries (must be called with lock held)
func (c *Cache[K, V]) sweep(now time.Time) {
	for key, e := range c.items {
		if e.expired(now) {
			delete(c.items, key)
		}
	}
}

// evictOldest removes the entry added first (must be called with lock held)
func (c *Cache[K, V]) evictOldest() {
	var (
		oldestKey K
		oldest    time.Time
		found     bool
	)
	for key, e := range c.items {
		if !found || e.added.Before(oldest) {
			oldestKey, oldest, found = key, e.added, true
		}
	}
	if found {
		delete(c.items, oldestKey)
		c.evictions++
	}
}
