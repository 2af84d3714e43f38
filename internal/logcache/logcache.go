// Package logcache caches remote log reads between commands.
//
// Log files are fetched over SSH and rotated files never change, so a
// short TTL saves a round trip per file when several players are looked
// up in one command. Entries expire on read; Clear drops everything,
// which the daily update uses to force fresh listings.
package logcache

import (
	"sync"
	"time"
)

// DefaultTTL bounds how stale a cached log read may be.
const DefaultTTL = time.Minute

type entry struct {
	lines   []string
	expires time.Time
}

// Cache is a TTL cache of log lines keyed by remote path or listing key.
// Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// New returns a cache whose entries expire after ttl. A non-positive ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached lines for key, reporting whether a live entry
// was found. Expired entries are removed on access.
func (c *Cache) Get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.lines, true
}

// Set stores lines under key with a fresh TTL.
func (c *Cache) Set(key string, lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{lines: lines, expires: c.now().Add(c.ttl)}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
