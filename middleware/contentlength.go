package middleware

import (
	"net/http"
	"strconv"
)

// ContentLength buffers the full response and rewrites Content-Length to
// match the actual body size, dropping any value the backend sent. It
// always waits for the complete body before emitting a corrected header
// rather than trusting an upstream's declared length.
type ContentLength struct{}

func NewContentLength() *ContentLength { return &ContentLength{} }

func (c *ContentLength) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := &bufferingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(buf, r)

		for k, v := range buf.header {
			if !headerEqualFold(k, "Content-Length") {
				w.Header()[k] = v
			}
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(buf.body)))
		w.WriteHeader(buf.status)
		_, _ = w.Write(buf.body)
	})
}

func headerEqualFold(a, b string) bool {
	return http.CanonicalHeaderKey(a) == http.CanonicalHeaderKey(b)
}
