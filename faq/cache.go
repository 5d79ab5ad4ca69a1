package faq

import "sync"

type cacheKey struct {
	query     string
	threshold float64
}

type cacheEntry struct {
	match *Match // nil records a miss
}

// Cache memoizes match outcomes per normalized question and threshold,
// including misses. Entries never expire; when maxEntries is positive the
// oldest entry is evicted once the limit is reached.
type Cache struct {
	mu         sync.Mutex
	items      map[cacheKey]cacheEntry
	order      []cacheKey
	maxEntries int
}

// NewCache creates an unbounded cache.
func NewCache() *Cache {
	return NewBoundedCache(0)
}

// NewBoundedCache creates a cache holding at most maxEntries outcomes.
// maxEntries <= 0 means unbounded.
func NewBoundedCache(maxEntries int) *Cache {
	return &Cache{
		items:      make(map[cacheKey]cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get returns the cached outcome. ok is false when nothing is cached; a
// cached miss is reported as (nil, true).
func (c *Cache) Get(query string, threshold float64) (*Match, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[cacheKey{query, threshold}]
	if !ok {
		return nil, false
	}
	return entry.match.clone(), true
}

// Put stores an outcome. match may be nil to record a miss.
func (c *Cache) Put(query string, threshold float64, match *Match) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{query, threshold}
	if _, exists := c.items[key]; !exists {
		if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
			c.evictOldest()
		}
		c.order = append(c.order, key)
	}
	c.items[key] = cacheEntry{match: match.clone()}
}

func (c *Cache) evictOldest() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.items[oldest]; ok {
			delete(c.items, oldest)
			return
		}
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[cacheKey]cacheEntry)
	c.order = nil
}

// Len returns the number of cached outcomes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
