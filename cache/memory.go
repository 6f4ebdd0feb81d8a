package cache

import (
	"sort"
	"sync"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/pathmatch"
)

// memoryTier is the fast, size-bounded first lookup tier: a map of key
// to (timestamp, entry), trimmed by dropping the oldest 20% once it grows
// past its configured ceiling.
type memoryTier struct {
	mu      sync.Mutex
	items   map[string]*Entry
	maxItem int
	maxSize int
	ttl     int
	include []*pathmatch.Pattern
	exclude []*pathmatch.Pattern
}

func newMemoryTier(cfg *config.MemoryCacheConfig) *memoryTier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	t := &memoryTier{
		items:   make(map[string]*Entry),
		maxItem: cfg.MaxItems,
		maxSize: cfg.MaxItemSize,
		ttl:     cfg.TTLSeconds,
	}
	for _, p := range cfg.IncludePatterns {
		t.include = append(t.include, pathmatch.Compile(p))
	}
	for _, p := range cfg.ExcludePatterns {
		t.exclude = append(t.exclude, pathmatch.Compile(p))
	}
	return t
}

func (t *memoryTier) shouldCache(path string) bool {
	if t == nil {
		return false
	}
	for _, p := range t.exclude {
		if p.Match(path) {
			return false
		}
	}
	for _, p := range t.include {
		if p.Match(path) {
			return true
		}
	}
	return false
}

func (t *memoryTier) get(key string, now int64) (*Entry, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.items[key]
	if !ok {
		return nil, false
	}
	if e.expired(now, t.ttl) {
		delete(t.items, key)
		return nil, false
	}
	return e, true
}

func (t *memoryTier) put(key string, e *Entry) {
	if t == nil {
		return
	}
	if t.maxSize > 0 && len(e.Body) > t.maxSize {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.items[key] = e
	if t.maxItem > 0 && len(t.items) > t.maxItem {
		t.evictOldestLocked()
	}
}

// evictOldestLocked drops the oldest 20% of entries in one batch, so
// eviction runs rarely instead of once per insert at the boundary.
func (t *memoryTier) evictOldestLocked() {
	toRemove := t.maxItem / 5
	if toRemove == 0 {
		toRemove = 1
	}

	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return t.items[keys[i]].Timestamp < t.items[keys[j]].Timestamp
	})

	for i := 0; i < toRemove && i < len(keys); i++ {
		delete(t.items, keys[i])
	}
}

func (t *memoryTier) len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
