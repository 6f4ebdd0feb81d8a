// Package cache implements the gateway's two-tier response cache: a small,
// fast in-process memory tier backed by a larger on-disk tier, both keyed
// by an MD5 hash of path+query and gated by Ant-style include/exclude
// pattern lists.
//
// The disk tier holds one JSON blob per key with an mtime fast-path
// expiry check and batched background cleanup; the memory tier is the
// fast path in front of it, with its own TTL and include/exclude lists.
package cache

import "net/http"

// Entry is one cached response: status, headers and body, stamped with
// the time it was stored.
type Entry struct {
	Timestamp  int64
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// expired reports whether the entry is older than ttl as of now.
func (e *Entry) expired(now int64, ttlSeconds int) bool {
	return now-e.Timestamp > int64(ttlSeconds)
}
