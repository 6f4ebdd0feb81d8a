package cache

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/idum-proxy/idum-proxy/config"
)

// Engine is the two-tier response cache: memory first, disk second. Both
// tiers are optional (nil when their config block is absent or disabled)
// and each has its own include/exclude pattern lists. ShouldCache admits a
// path when either tier's lists accept it, and Put then stores the entry
// in every enabled tier; the lists are not applied per tier on Put.
type Engine struct {
	memory *memoryTier
	disk   *diskTier

	cleanupInterval time.Duration

	hits       int64
	memoryHits int64
	misses     int64
}

// NewEngine builds a cache engine from a CacheMiddleware config block. A
// nil cfg or cfg.Enabled == false yields a disabled engine whose
// ShouldCache always returns false.
func NewEngine(cfg *config.CacheMiddleware) *Engine {
	e := &Engine{cleanupInterval: time.Hour}
	if cfg == nil || !cfg.Enabled {
		return e
	}

	e.memory = newMemoryTier(cfg.Memory)
	e.disk = newDiskTier(cfg.File)

	if cfg.File != nil && cfg.File.CleanupInterval != "" {
		if d, err := time.ParseDuration(cfg.File.CleanupInterval); err == nil {
			e.cleanupInterval = d
		}
	}
	return e
}

// Start launches the disk tier's periodic cleanup loop. Safe to call on a
// disabled engine (becomes a no-op).
func (e *Engine) Start(ctx context.Context) {
	e.disk.startCleanupLoop(ctx, e.cleanupInterval)
}

// ShouldCache reports whether path is eligible for caching in either tier.
func (e *Engine) ShouldCache(path string) bool {
	return e.memory.shouldCache(path) || e.disk.shouldCache(path)
}

// Get looks up key in the memory tier, then the disk tier, populating the
// memory tier on a disk hit so the next lookup is fast.
func (e *Engine) Get(key string) (*Entry, bool) {
	now := time.Now().Unix()

	if entry, ok := e.memory.get(key, now); ok {
		atomic.AddInt64(&e.hits, 1)
		atomic.AddInt64(&e.memoryHits, 1)
		return entry, true
	}

	if entry, ok := e.disk.get(key); ok {
		atomic.AddInt64(&e.hits, 1)
		e.memory.put(key, entry)
		return entry, true
	}

	atomic.AddInt64(&e.misses, 1)
	return nil, false
}

// Put stores a response in both tiers. Only 2xx/3xx responses should
// ever reach this; the caller, the cache middleware, enforces that.
func (e *Engine) Put(key string, statusCode int, headers http.Header, body []byte) {
	entry := &Entry{
		Timestamp:  time.Now().Unix(),
		StatusCode: statusCode,
		Headers:    headers.Clone(),
		Body:       append([]byte(nil), body...),
	}
	e.memory.put(key, entry)
	e.disk.put(key, entry)
}

// HitCount reports lookups served from either tier.
func (e *Engine) HitCount() int64 { return atomic.LoadInt64(&e.hits) }

// MemoryHitCount reports lookups served from the memory tier.
func (e *Engine) MemoryHitCount() int64 { return atomic.LoadInt64(&e.memoryHits) }

// MissCount reports lookups that fell through to the backend.
func (e *Engine) MissCount() int64 { return atomic.LoadInt64(&e.misses) }

// MemoryEntries reports how many entries the memory tier currently holds.
func (e *Engine) MemoryEntries() int { return e.memory.len() }

// Stats reports counters for the status/monitoring surface.
func (e *Engine) Stats() map[string]interface{} {
	hits := e.HitCount()
	misses := e.MissCount()
	var hitRatio float64
	if hits+misses > 0 {
		hitRatio = float64(hits) / float64(hits+misses)
	}
	return map[string]interface{}{
		"hits":           hits,
		"memory_hits":    e.MemoryHitCount(),
		"misses":         misses,
		"hit_ratio":      hitRatio,
		"memory_entries": e.MemoryEntries(),
	}
}
