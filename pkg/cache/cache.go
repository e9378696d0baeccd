// Package cache implements the in-process, time-bounded result cache for
// image validations. Entries map a URL to its last known outcome and age out
// after a TTL; freshness is enforced on every lookup, independent of sweeps.
package cache

import (
	"sync"
	"time"

	"imagecheck/pkg/domain"
)

// Entry is one cached validation outcome. Entries are immutable once stored;
// a newer Store for the same URL replaces the entry wholesale.
type Entry struct {
	// Valid is the cached validation verdict.
	Valid bool
	// Message is the human-readable outcome as originally computed.
	Message string
	// Timestamp is when the entry was stored. The entry is fresh while
	// now - Timestamp < TTL.
	Timestamp time.Time
}

// Cache is a TTL-keyed store of validation outcomes. It is safe for
// concurrent use; last write wins per URL.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration

	// lookups and hits feed the hit ratio reported by Stats.
	lookups uint64
	hits    uint64
}

// New creates an empty Cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

// Lookup returns the cached entry for url if one exists and is still fresh.
// A stale entry is treated as a miss and evicted on the spot, so correctness
// never depends on sweep timing.
func (c *Cache) Lookup(url string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookups++

	entry, ok := c.entries[url]
	if !ok {
		return Entry{}, false
	}
	if time.Since(entry.Timestamp) >= c.ttl {
		delete(c.entries, url)

		return Entry{}, false
	}

	c.hits++

	return entry, true
}

// Store records the outcome for url, superseding any previous entry.
func (c *Cache) Store(url string, valid bool, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = Entry{
		Valid:     valid,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Sweep removes every entry whose age exceeds the TTL. It is a best-effort
// memory bound; Lookup already refuses stale entries.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for url, entry := range c.entries {
		if time.Since(entry.Timestamp) >= c.ttl {
			delete(c.entries, url)
		}
	}
}

// Clear drops all entries unconditionally and resets the hit counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	c.lookups = 0
	c.hits = 0
}

// Stats reports the current cache state. The hit ratio is the fraction of
// lookups answered from a fresh entry; it is 0 when no lookups happened or
// when no fresh entries remain.
func (c *Cache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fresh, expired int
	for _, entry := range c.entries {
		if time.Since(entry.Timestamp) < c.ttl {
			fresh++
		} else {
			expired++
		}
	}

	var ratio float64
	if fresh > 0 && c.lookups > 0 {
		ratio = float64(c.hits) / float64(c.lookups)
	}

	return domain.CacheStats{
		TotalEntries:   fresh + expired,
		FreshEntries:   fresh,
		ExpiredEntries: expired,
		HitRatio:       ratio,
	}
}
