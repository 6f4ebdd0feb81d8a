package middleware

import (
	"net/http"

	"github.com/idum-proxy/idum-proxy/cache"
)

// Cache serves GET requests out of the two-tier cache.Engine when the
// path is admitted by its include/exclude patterns, and stores successful
// (200-399) GET responses back into it on a miss.
type Cache struct {
	engine *cache.Engine
}

func NewCache(engine *cache.Engine) *Cache {
	return &Cache{engine: engine}
}

func (c *Cache) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !c.engine.ShouldCache(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		key := cache.Key(r.URL.Path, r.URL.RawQuery)
		if entry, ok := c.engine.Get(key); ok {
			for k, v := range entry.Headers {
				w.Header()[k] = v
			}
			w.Header().Set("X-Cache-Status", "HIT")
			w.WriteHeader(entry.StatusCode)
			_, _ = w.Write(entry.Body)
			return
		}

		buf := &bufferingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(buf, r)

		for k, v := range buf.header {
			w.Header()[k] = v
		}
		w.WriteHeader(buf.status)
		_, _ = w.Write(buf.body)

		if buf.status >= 200 && buf.status < 400 {
			go c.engine.Put(key, buf.status, buf.header, buf.body)
		}
	})
}
