package assets

import (
	"math"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache is a byte-bounded LRU cache for loaded files.
type Cache struct {
	limit int64
	size  int64
	lru   *simplelru.LRU[string, []byte]
	mu    sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a cache holding at most limit bytes.
func NewCache(limit int64) *Cache {
	c := &Cache{limit: limit}
	// The entry count is unbounded; Set trims by bytes.
	lru, err := simplelru.NewLRU[string, []byte](math.MaxInt, c.evicted)
	if err != nil {
		panic(err)
	}
	c.lru = lru
	return c
}

// evicted runs for every entry leaving the LRU, under c.mu.
func (c *Cache) evicted(_ string, data []byte) {
	c.size -= int64(len(data))
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return data, true
}

// Set stores an item, evicting least recently used items to stay under the
// limit. Items larger than the limit are not stored.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int64(len(data)) > c.limit {
		return
	}
	// Add overwrites in place without the eviction callback.
	c.lru.Remove(key)
	c.lru.Add(key, data)
	c.size += int64(len(data))

	for c.size > c.limit {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
	}
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Size returns the cached bytes.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.size = 0
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
