package storage

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/phuslu/log"
	"github.com/timshannon/badgerhold/v4"

	"github.com/dayoung-oh/lunchspin/internal/domain"
)

// CacheTTL bounds how long a fetched candidate list stays usable.
const CacheTTL = 24 * time.Hour

// CacheKey quantizes a (radius, center) pair into a cache key.
// Coordinates are rounded to three decimal places (~110 m), so nearby
// centers with the same radius share an entry.
func CacheKey(radiusMeters int, center domain.Location) string {
	return fmt.Sprintf("%d_%.3f_%.3f", radiusMeters, center.Lat, center.Lon)
}

// CacheEntry is the persisted candidate-list blob.
type CacheEntry struct {
	CreatedAt  time.Time
	Candidates []domain.Candidate
}

// ResultCache is a TTL cache over fetched candidate lists. It is a pure
// performance optimization, never a system of record: every failure path
// degrades to a cache miss, and failed writes are swallowed.
type ResultCache struct {
	db  *DB
	mem *gocache.Cache
	ttl time.Duration
	now func() time.Time
}

// CacheOption applies ResultCache options.
type CacheOption func(*ResultCache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *ResultCache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) {
		c.now = now
	}
}

// NewResultCache creates a cache backed by db with an in-memory front tier.
func NewResultCache(db *DB, opts ...CacheOption) *ResultCache {
	c := &ResultCache{
		db:  db,
		ttl: CacheTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mem = gocache.New(c.ttl, c.ttl)
	return c
}

// Get returns the cached candidate list for key, or absent. Expired
// entries are evicted on read. Store errors and malformed blobs are
// logged and reported as a miss.
func (c *ResultCache) Get(_ context.Context, key string) ([]domain.Candidate, bool) {
	if cached, ok := c.mem.Get(key); ok {
		if entry, ok := cached.(CacheEntry); ok && c.now().Sub(entry.CreatedAt) <= c.ttl {
			return entry.Candidates, true
		}
		c.mem.Delete(key)
	}

	var entry CacheEntry
	err := c.db.Store().Get(key, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}

	if c.now().Sub(entry.CreatedAt) > c.ttl {
		if err := c.db.Store().Delete(key, CacheEntry{}); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("expired cache entry eviction failed")
		}
		return nil, false
	}

	c.mem.Set(key, entry, gocache.DefaultExpiration)
	return entry.Candidates, true
}

// Put stores a candidate list under key. Write failures are logged and
// swallowed.
func (c *ResultCache) Put(_ context.Context, key string, candidates []domain.Candidate) {
	entry := CacheEntry{
		CreatedAt:  c.now(),
		Candidates: candidates,
	}
	if err := c.db.Store().Upsert(key, &entry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}
	c.mem.Set(key, entry, gocache.DefaultExpiration)
}
