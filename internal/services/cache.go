package services

import (
	"log"
	"sync"
	"time"
)

// AddressCache keeps reverse-geocoding results so repeated alerts from the
// same spot cost one API call. Entries expire after ttl; when full, the
// least recently used entry is evicted.
type AddressCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	stats      CacheStats
}

type cacheEntry struct {
	address      string
	createdAt    time.Time
	lastAccessed time.Time
}

type CacheStats struct {
	Size      int   `json:"size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

func NewAddressCache(maxEntries int, ttl time.Duration) *AddressCache {
	return &AddressCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (c *AddressCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return "", false
	}
	now := c.now()
	if now.Sub(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Evictions++
		return "", false
	}
	entry.lastAccessed = now
	c.stats.Hits++
	return entry.address, true
}

func (c *AddressCache) Set(key, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	now := c.now()
	c.entries[key] = &cacheEntry{address: address, createdAt: now, lastAccessed: now}
}

// evictOldest drops the least recently used entry; c.mu must be held.
func (c *AddressCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccessed.Before(oldest) {
			oldestKey = key
			oldest = entry.lastAccessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
		log.Printf("🗑️  Evicted oldest address cache entry: %s", oldestKey)
	}
}

func (c *AddressCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}
