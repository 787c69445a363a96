package dataprocessing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"avrcli/internal/infrastructure"
)

// cacheEntry holds one parsed workbook keyed by content hash.
type cacheEntry struct {
	result     *LoadResult
	insertedAt time.Time
	hitCount   int
}

// ParseCache memoizes parsed workbooks by content identity: the same
// bytes parse once no matter how often or under what name they are
// uploaded. Entries never expire; the cache is bounded and evicts the
// oldest entry when full. Cached tables are shared pointers and must be
// treated as immutable by every consumer.
type ParseCache struct {
	loader  *Loader
	metrics *infrastructure.BusinessMetrics

	mutex   sync.RWMutex
	entries map[string]*cacheEntry
	maxSize int

	hitCount  int64
	missCount int64

	group singleflight.Group
}

// NewParseCache wraps a loader with content-addressed memoization.
// maxSize <= 0 disables caching; every Load parses. metrics may be nil
// (the CLI runs without an OTel pipeline).
func NewParseCache(loader *Loader, maxSize int, metrics *infrastructure.BusinessMetrics) *ParseCache {
	return &ParseCache{
		loader:  loader,
		metrics: metrics,
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
	}
}

// ContentKey returns the cache key for a payload: the hex SHA-256 of
// the raw bytes. Renaming a file does not change its key.
func ContentKey(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Load returns the cached parse result for the payload, parsing it at
// most once. Concurrent loads of identical bytes are deduplicated: the
// second caller waits for the first parse instead of repeating it.
// Load failures are returned to every waiter and never cached.
func (c *ParseCache) Load(ctx context.Context, filename string, raw []byte) (*LoadResult, error) {
	if c.maxSize <= 0 {
		return c.loader.Load(ctx, filename, raw)
	}

	key := ContentKey(raw)

	if result, ok := c.get(key, true); ok {
		c.loader.logger.DebugContext(ctx, "parse cache hit",
			slog.String("content_key", shortKey(key)),
			slog.String("filename", filename))
		infrastructure.RecordParseCacheLookup(ctx, c.metrics, true)
		return result, nil
	}

	value, err, shared := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a racing caller may have filled
		// the entry between our read miss and winning the flight.
		if result, ok := c.get(key, false); ok {
			return result, nil
		}

		infrastructure.RecordParseCacheLookup(ctx, c.metrics, false)
		result, err := c.loader.Load(ctx, filename, raw)
		if err != nil {
			return nil, err
		}
		c.put(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		c.loader.logger.DebugContext(ctx, "parse deduplicated across concurrent uploads",
			slog.String("content_key", shortKey(key)))
	}

	return value.(*LoadResult), nil
}

// Invalidate removes one payload from the cache. Stored reports keep
// their table pointer, so invalidation never affects them.
func (c *ParseCache) Invalidate(raw []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, ContentKey(raw))
}

// Stats returns cache statistics for the health endpoint.
func (c *ParseCache) Stats() map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	totalRequests := c.hitCount + c.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(c.hitCount) / float64(totalRequests)
	}

	return map[string]any{
		"entries":    len(c.entries),
		"max_size":   c.maxSize,
		"hit_count":  c.hitCount,
		"miss_count": c.missCount,
		"hit_ratio":  hitRatio,
	}
}

// get looks up an entry. count controls whether the lookup moves the
// hit/miss counters; the re-check inside a singleflight does not, so
// one caller never counts twice.
func (c *ParseCache) get(key string, count bool) (*LoadResult, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		if count {
			c.missCount++
		}
		return nil, false
	}

	if count {
		entry.hitCount++
		c.hitCount++
	}
	return entry.result, true
}

func (c *ParseCache) put(key string, result *LoadResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.entries[key]; exists {
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		result:     result,
		insertedAt: time.Now(),
	}
}

// evictOldest removes the oldest-inserted entry. Callers hold the lock.
func (c *ParseCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.insertedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.insertedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
