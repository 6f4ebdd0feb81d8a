package cache

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/pathmatch"
)

// diskFileEntry is the on-disk JSON shape: a base64 body alongside the
// plain status/headers/timestamp.
type diskFileEntry struct {
	Timestamp  int64               `json:"timestamp"`
	StatusCode int                 `json:"status_code"`
	Content    string              `json:"content"`
	Headers    map[string][]string `json:"headers"`
}

// diskTier is the larger, slower second lookup tier, backed by one JSON
// file per cache key under Dir.
type diskTier struct {
	dir        string
	ttl        int
	maxEntries int
	include    []*pathmatch.Pattern
	exclude    []*pathmatch.Pattern

	cleanupGroup singleflight.Group
}

func newDiskTier(cfg *config.FileCacheConfig) *diskTier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	t := &diskTier{
		dir:        cfg.Path,
		ttl:        cfg.TTLSeconds,
		maxEntries: cfg.MaxEntries,
	}
	if t.dir == "" {
		t.dir = ".cache/idum-proxy"
	}
	for _, p := range cfg.IncludePatterns {
		t.include = append(t.include, pathmatch.Compile(p))
	}
	for _, p := range cfg.ExcludePatterns {
		t.exclude = append(t.exclude, pathmatch.Compile(p))
	}
	_ = os.MkdirAll(t.dir, 0o755)
	return t
}

func (t *diskTier) shouldCache(path string) bool {
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

func (t *diskTier) filePath(key string) string {
	return filepath.Join(t.dir, key)
}

func (t *diskTier) get(key string) (*Entry, bool) {
	if t == nil {
		return nil, false
	}

	path := t.filePath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var fe diskFileEntry
	if err := json.Unmarshal(raw, &fe); err != nil {
		log.WithError(err).Debug("cache: corrupt disk entry")
		_ = os.Remove(path)
		return nil, false
	}

	now := time.Now().Unix()
	if now-fe.Timestamp > int64(t.ttl) {
		_ = os.Remove(path)
		return nil, false
	}

	body, err := base64.StdEncoding.DecodeString(fe.Content)
	if err != nil {
		return nil, false
	}

	headers := make(map[string][]string, len(fe.Headers))
	for k, v := range fe.Headers {
		headers[k] = v
	}

	return &Entry{
		Timestamp:  fe.Timestamp,
		StatusCode: fe.StatusCode,
		Headers:    headers,
		Body:       body,
	}, true
}

func (t *diskTier) put(key string, e *Entry) {
	if t == nil {
		return
	}

	fe := diskFileEntry{
		Timestamp:  e.Timestamp,
		StatusCode: e.StatusCode,
		Content:    base64.StdEncoding.EncodeToString(e.Body),
		Headers:    map[string][]string(e.Headers),
	}

	raw, err := json.Marshal(fe)
	if err != nil {
		log.WithError(err).Error("cache: marshal disk entry")
		return
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		log.WithError(err).Error("cache: ensure cache dir")
		return
	}

	if err := os.WriteFile(t.filePath(key), raw, 0o644); err != nil {
		log.WithError(err).Error("cache: write disk entry")
		return
	}

	t.maybeCleanup()
}

// maybeCleanup triggers a background sweep once the entry count crosses
// 90% of MaxEntries. The singleflight.Group collapses concurrent triggers
// into one sweep; a trigger arriving mid-sweep is dropped, not queued.
func (t *diskTier) maybeCleanup() {
	if t.maxEntries <= 0 {
		return
	}
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return
	}
	if float64(len(entries)) <= float64(t.maxEntries)*0.9 {
		return
	}

	go func() {
		_, _, _ = t.cleanupGroup.Do("cleanup", func() (interface{}, error) {
			t.cleanup()
			return nil, nil
		})
	}()
}

// cleanup removes expired entries in batches of 50, using each file's
// mtime as a fast first pass (with a 10% buffer) before falling back to
// reading the first 100 bytes looking for the "timestamp" field, so most
// expired files are deleted without ever being read in full.
func (t *diskTier) cleanup() {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		log.WithError(err).Error("cache: cleanup readdir")
		return
	}

	now := time.Now()
	ttl := time.Duration(t.ttl) * time.Second
	removed := 0

	const batchSize = 50
	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		for _, de := range entries[i:end] {
			if de.IsDir() {
				continue
			}
			path := filepath.Join(t.dir, de.Name())
			info, err := de.Info()
			if err != nil {
				continue
			}

			if now.Sub(info.ModTime()) > time.Duration(float64(ttl)*1.1) {
				_ = os.Remove(path)
				removed++
				continue
			}

			if info.Size() == 0 {
				continue
			}
			ts, ok := peekTimestamp(path)
			if !ok || now.Unix()-ts > int64(t.ttl) {
				_ = os.Remove(path)
				removed++
			}
		}
	}

	log.WithField("removed", removed).Info("cache: disk cleanup finished")
}

// peekTimestamp reads only the first 100 bytes of a cache file looking for
// its "timestamp" field, avoiding a full JSON parse for files that turn out
// to still be fresh.
func peekTimestamp(path string) (int64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	buf := make([]byte, 100)
	n, _ := f.Read(buf)
	data := string(buf[:n])

	idx := strings.Index(data, `"timestamp":`)
	if idx == -1 {
		return 0, false
	}
	start := idx + len(`"timestamp":`)
	end := strings.IndexAny(data[start:], ",}")
	if end == -1 {
		return 0, false
	}
	val := strings.TrimSpace(data[start : start+end])
	ts, err := strconv.ParseInt(strings.TrimSuffix(val, ".0"), 10, 64)
	if err != nil {
		f2, err2 := strconv.ParseFloat(val, 64)
		if err2 != nil {
			return 0, false
		}
		return int64(f2), true
	}
	return ts, true
}

func (t *diskTier) startCleanupLoop(ctx context.Context, interval time.Duration) {
	if t == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _, _ = t.cleanupGroup.Do("cleanup", func() (interface{}, error) {
					t.cleanup()
					return nil, nil
				})
			}
		}
	}()
}

// Key builds the MD5 cache key from path and query string.
func Key(path, query string) string {
	base := path
	if query != "" {
		base = fmt.Sprintf("%s?%s", path, query)
	}
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}
