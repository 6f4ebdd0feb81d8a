package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/routing"
)

// Compression gzip- or brotli-encodes responses for endpoints whose first
// backend is an HTTPS upstream, when the client's Accept-Encoding names
// the configured coding.
//
// Responses are buffered in full before encoding; MinSize needs the
// total body length to decide whether compression is worth it at all.
type Compression struct {
	enabled  bool
	kind     string // "gzip" or "brotli"
	level    int
	minSize  int
	table    *routing.Table

	gzipPool    sync.Pool
	brotliPool  sync.Pool
}

func NewCompression(cfg *config.CompressionMiddleware, table *routing.Table) *Compression {
	c := &Compression{table: table}
	if cfg == nil || !cfg.Enabled {
		return c
	}
	c.enabled = true
	c.level = cfg.CompressLevel
	if c.level == 0 {
		c.level = 9
	}
	c.minSize = cfg.MinSize
	if c.minSize == 0 {
		c.minSize = 500
	}
	for _, t := range cfg.Types {
		if strings.EqualFold(t, "brotli") {
			c.kind = "brotli"
			break
		}
		if strings.EqualFold(t, "gzip") {
			c.kind = "gzip"
		}
	}
	if c.kind == "" {
		c.kind = "gzip"
	}

	c.gzipPool.New = func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, c.level)
		return w
	}
	c.brotliPool.New = func() interface{} {
		return brotli.NewWriterLevel(nil, c.level)
	}
	return c
}

func (c *Compression) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.enabled || !strings.Contains(strings.ToLower(r.Header.Get("Accept-Encoding")), c.kind) {
			next.ServeHTTP(w, r)
			return
		}

		ep, err := c.table.Select(r.URL.Path)
		if err != nil || !firstBackendIsHTTPS(ep) {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(buf, r)

		if len(buf.body) < c.minSize {
			w.WriteHeader(buf.status)
			_, _ = w.Write(buf.body)
			return
		}

		for k, v := range buf.header {
			w.Header()[k] = v
		}
		w.Header().Del("Content-Length")
		w.Header().Set("Content-Encoding", c.kind)
		w.Header().Add("Vary", "Accept-Encoding")
		w.WriteHeader(buf.status)

		switch c.kind {
		case "brotli":
			bw := c.brotliPool.Get().(*brotli.Writer)
			bw.Reset(w)
			_, _ = bw.Write(buf.body)
			_ = bw.Close()
			c.brotliPool.Put(bw)
		default:
			gw := c.gzipPool.Get().(*gzip.Writer)
			gw.Reset(w)
			_, _ = gw.Write(buf.body)
			_ = gw.Close()
			c.gzipPool.Put(gw)
		}
	})
}

func firstBackendIsHTTPS(ep *config.Endpoint) bool {
	backends := ep.AllBackends()
	if len(backends) == 0 {
		return false
	}
	return len(backends[0].AllHTTPS()) > 0
}

