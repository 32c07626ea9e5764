package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is the L1 in-memory tier with LRU eviction.
type MemoryCache struct {
	capacity int64 // Maximum size in bytes
	size     int64 // Current size in bytes

	// LRU bookkeeping
	items    map[string]*list.Element
	eviction *list.List

	mu sync.Mutex

	stats Stats
}

type memoryEntry struct {
	key       string
	value     []byte
	size      int64
	timestamp time.Time
}

// NewMemoryCache creates a memory cache with the given capacity in bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++
	c.stats.LastAccess = time.Now()
	return elem.Value.(*memoryEntry).value, true
}

// Put stores a value in the cache, evicting LRU entries as needed.
func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueSize := int64(len(value))
	if valueSize > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*memoryEntry)
		c.size += valueSize - entry.size
		entry.value = value
		entry.size = valueSize
		entry.timestamp = time.Now()
		c.stats.Size = c.size
		return nil
	}

	for c.size+valueSize > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	elem := c.eviction.PushFront(&memoryEntry{
		key:       key,
		value:     value,
		size:      valueSize,
		timestamp: time.Now(),
	})
	c.items[key] = elem
	c.size += valueSize
	c.stats.Size = c.size
	c.stats.ItemCount = int64(len(c.items))
	return nil
}

// Delete removes an entry from the cache.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
	c.stats.Size = 0
	c.stats.ItemCount = 0
	return nil
}

// Size returns the current cache size in bytes.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns a snapshot of cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// RemoveOlderThan drops entries stored before cutoff, returning the count.
func (c *MemoryCache) RemoveOlderThan(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, elem := range c.items {
		if elem.Value.(*memoryEntry).timestamp.Before(cutoff) {
			c.removeElement(elem)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) evictOldest() {
	elem := c.eviction.Back()
	if elem == nil {
		return
	}
	c.removeElement(elem)
	c.stats.Evictions++
	c.stats.LastEvict = time.Now()
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	c.eviction.Remove(elem)
	delete(c.items, entry.key)
	c.size -= entry.size
	c.stats.Size = c.size
	c.stats.ItemCount = int64(len(c.items))
}
