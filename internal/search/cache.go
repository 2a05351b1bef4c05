package search

import (
	"container/list"
	"sync"

	"github.com/hyperjump/wordalchemy/internal/models"
)

// QueryCache is an LRU cache of ranked results keyed by query.
// Results are copied on the way in and out so callers cannot alias them.
type QueryCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
	hits     uint64
	misses   uint64
}

type cacheEntry struct {
	key   string
	value []models.WordScore
}

// NewQueryCache creates a cache holding up to capacity result sets.
// A capacity of 0 or less yields a nil cache, which never stores anything.
func NewQueryCache(capacity int) *QueryCache {
	if capacity <= 0 {
		return nil
	}
	return &QueryCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns a copy of the cached results for key if present.
func (c *QueryCache) Get(key string) ([]models.WordScore, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		c.hits++
		return cloneScores(elem.Value.(*cacheEntry).value), true
	}
	c.misses++
	return nil, false
}

// Set stores a copy of value under key, evicting the oldest entry if at capacity.
func (c *QueryCache) Set(key string, value []models.WordScore) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = cloneScores(value)
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, value: cloneScores(value)})
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached result sets.
func (c *QueryCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func cloneScores(s []models.WordScore) []models.WordScore {
	out := make([]models.WordScore, len(s))
	copy(out, s)
	return out
}
