package tokencache

import (
	"sync"
	"time"
)

// Entry is one cached mail access token.
type Entry struct {
	Provider    string
	Email       string
	AccessToken string
}

type item struct {
	entry     Entry
	expiresAt time.Time
}

// Cache is a bounded per-user access-token cache. It is injected into the
// mail access broker instead of living as package-global state, so tests get
// isolated instances and entries cannot outlive their TTL.
type Cache struct {
	mu         sync.Mutex
	items      map[string]item
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if ttl <= 0 {
		ttl = 45 * time.Minute
	}
	return &Cache{
		items:      make(map[string]item),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *Cache) Get(userID string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[userID]
	if !ok {
		return Entry{}, false
	}
	if c.now().After(it.expiresAt) {
		delete(c.items, userID)
		return Entry{}, false
	}
	return it.entry, true
}

func (c *Cache) Set(userID string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[userID]; !exists && len(c.items) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.items[userID] = item{entry: entry, expiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, it := range c.items {
		if oldestKey == "" || it.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = it.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
