// Package cache provides a small in-memory cache for scrape results so
// repeated captures of the same page skip the network entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/datawoven/webharvest/models"
)

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    *models.ScrapeResult
	createdAt time.Time
}

// Cache is a TTL-bounded in-memory result cache.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
}

// New creates a Cache holding at most maxEntries results, each valid for
// ttl. A background goroutine evicts expired entries every 5 minutes.
// Returns nil when maxEntries is zero, disabling caching; all methods are
// nil-safe.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		return nil
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the request fields that affect output.
func Key(req *models.ScrapeRequest) string {
	h := sha256.New()
	h.Write([]byte(req.URL))
	h.Write([]byte("|"))
	h.Write([]byte(string(req.Method)))
	h.Write([]byte("|"))
	h.Write([]byte(req.ContentSelector))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result if present and within TTL. The returned
// value shares no mutable state with the store, so callers may annotate
// its Metadata freely; the stored result stays immutable.
func (c *Cache) Get(key string) (*models.ScrapeResult, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	var createdAt time.Time
	var res *models.ScrapeResult
	if ok {
		createdAt = e.createdAt
		res = e.result
	}
	c.mu.RUnlock()

	if !ok || time.Since(createdAt) > c.ttl {
		return nil, false
	}
	return copyResult(res), true
}

// Set stores a copy of the result so later mutations by the caller cannot
// reach the store. If the cache is at capacity, a random entry is evicted
// to make room (map iteration is random in Go).
func (c *Cache) Set(key string, res *models.ScrapeResult) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    copyResult(res),
		createdAt: time.Now(),
	}
}

// copyResult clones a result including its Metadata map.
func copyResult(res *models.ScrapeResult) *models.ScrapeResult {
	cp := *res
	if res.Metadata != nil {
		cp.Metadata = make(map[string]string, len(res.Metadata))
		for k, v := range res.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
