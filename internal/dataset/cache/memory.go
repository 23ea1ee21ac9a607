// Package cache holds the record-set cache in front of the store. Entries
// expire after a fixed TTL and are dropped on every dataset replacement.
//
// Every Invalidate advances a generation. A reader takes the generation
// before querying the store and hands it back to Set, which refuses the
// write when an invalidation happened in between. A query that overlapped
// a replacement therefore never repopulates the cache with partial rows.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"afi/internal/dataset/models"
)

// DefaultTTL is the freshness window of a cached record set.
const DefaultTTL = 5 * time.Minute

// MemoryCache keeps the record set in process.
type MemoryCache struct {
	mu      sync.RWMutex
	records []models.Record
	expires time.Time
	valid   bool
	gen     int64
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache constructs an empty cache. A non-positive ttl means DefaultTTL.
func NewMemoryCache(ttl time.Duration, opts ...MemoryOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context) ([]models.Record, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	return slices.Clone(c.records), true, nil
}

// Generation reports the current invalidation count.
func (c *MemoryCache) Generation(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen, nil
}

// Set stores records read at generation gen. It reports false and leaves
// the cache untouched when the cache was invalidated since.
func (c *MemoryCache) Set(_ context.Context, gen int64, records []models.Record) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false, nil
	}
	c.records = slices.Clone(records)
	c.expires = c.now().Add(c.ttl)
	c.valid = true
	return true, nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.valid = false
	c.gen++
	return nil
}
