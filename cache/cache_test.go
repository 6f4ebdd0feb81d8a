package cache

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/idum-proxy/idum-proxy/config"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cache")

	cfg := &config.CacheMiddleware{
		Enabled: true,
		Memory: &config.MemoryCacheConfig{
			Enabled:         true,
			MaxItems:        100,
			TTLSeconds:      60,
			MaxItemSize:     1 << 20,
			IncludePatterns: []string{"/api/**"},
		},
		File: &config.FileCacheConfig{
			Enabled:         true,
			Path:            dir,
			TTLSeconds:      60,
			MaxEntries:      1000,
			IncludePatterns: []string{"/api/**"},
		},
	}
	return NewEngine(cfg)
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("/api/users", "id=1")
	k2 := Key("/api/users", "id=1")
	k3 := Key("/api/users", "id=2")
	if k1 != k2 {
		t.Error("expected identical key for identical inputs")
	}
	if k1 == k3 {
		t.Error("expected different key for different query")
	}
}

func TestShouldCache(t *testing.T) {
	e := testEngine(t)
	if !e.ShouldCache("/api/users/1") {
		t.Error("expected /api/users/1 to be cacheable")
	}
	if e.ShouldCache("/other") {
		t.Error("expected /other not to be cacheable")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	e := testEngine(t)
	key := Key("/api/users", "")

	headers := http.Header{"Content-Type": []string{"application/json"}}
	e.Put(key, 200, headers, []byte(`{"ok":true}`))

	entry, ok := e.Get(key)
	if !ok {
		t.Fatal("expected cache hit after Put")
	}
	if entry.StatusCode != 200 {
		t.Errorf("StatusCode = %d", entry.StatusCode)
	}
	if string(entry.Body) != `{"ok":true}` {
		t.Errorf("Body = %q", entry.Body)
	}
}

func TestGetMissFallsThroughToDisk(t *testing.T) {
	e := testEngine(t)
	key := Key("/api/orders", "")
	e.disk.put(key, &Entry{Timestamp: time.Now().Unix(), StatusCode: 200, Body: []byte("x")})

	// not yet in the memory tier
	if _, ok := e.memory.get(key, time.Now().Unix()); ok {
		t.Fatal("expected no memory entry before first Get")
	}

	entry, ok := e.Get(key)
	if !ok || entry.StatusCode != 200 {
		t.Fatal("expected disk hit")
	}

	// now promoted into memory
	if _, ok := e.memory.get(key, time.Now().Unix()); !ok {
		t.Error("expected disk hit to populate memory tier")
	}
}

func TestMemoryTierEviction(t *testing.T) {
	mem := newMemoryTier(&config.MemoryCacheConfig{
		Enabled:    true,
		MaxItems:   10,
		TTLSeconds: 60,
	})

	for i := 0; i < 12; i++ {
		mem.put(string(rune('a'+i)), &Entry{Timestamp: int64(i), StatusCode: 200})
	}
	if mem.len() > 10 {
		t.Errorf("expected eviction to keep size <= 10, got %d", mem.len())
	}
}

func TestDisabledEngine(t *testing.T) {
	e := NewEngine(nil)
	if e.ShouldCache("/anything") {
		t.Error("disabled engine should never cache")
	}
	if _, ok := e.Get("key"); ok {
		t.Error("disabled engine should never hit")
	}
}
