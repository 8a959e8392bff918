package ains

import (
	"sync"
	"time"
)

// cacheEntry holds one resolved record and its write time.
type cacheEntry struct {
	record   Record
	storedAt time.Time
}

// domainCache is a thread-safe in-memory cache keyed by canonical domain.
// Staleness is checked lazily on read against a fixed freshness window
// measured from each entry's last write; there is no background eviction.
type domainCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newDomainCache(ttl time.Duration) *domainCache {
	return &domainCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// get returns a copy of the cached record for domain if one exists and is
// still within the freshness window.
func (c *domainCache) get(domain string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[domain]
	if !ok || time.Since(e.storedAt) >= c.ttl {
		return nil, false
	}
	rec := e.record
	return &rec, true
}

// set overwrites the entry for domain with a fresh record and timestamp.
func (c *domainCache) set(domain string, rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[domain] = cacheEntry{record: rec, storedAt: time.Now()}
}

// clear drops all entries.
func (c *domainCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
