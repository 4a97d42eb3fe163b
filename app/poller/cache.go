package poller

import (
	"sync"
	"time"
)

// Cache remembers the last publish time seen for every item identity of a
// feed. Entries are never evicted.
type Cache struct {
	mu      sync.Mutex
	entries map[string]map[string]time.Time
	size    int
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]map[string]time.Time),
	}
}

// ShouldEmit reports whether the item is new or was republished with a later
// timestamp, and records publishedAt when it is. Equal timestamps are not novel.
func (c *Cache) ShouldEmit(feedURL, itemID string, publishedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	feedEntries, ok := c.entries[feedURL]
	if !ok {
		feedEntries = make(map[string]time.Time)
		c.entries[feedURL] = feedEntries
	}

	latest, seen := feedEntries[itemID]
	if seen && !latest.Before(publishedAt) {
		return false
	}

	if !seen {
		c.size++
	}
	feedEntries[itemID] = publishedAt
	return true
}

// Len returns the number of tracked identities across all feeds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
