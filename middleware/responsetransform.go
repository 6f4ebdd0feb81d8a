package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/idum-proxy/idum-proxy/routing"
)

// ResponseTransform rewrites matched endpoints' response bodies using
// configured oldvalue/newvalue text replacements, substituting "${path}"
// in the replacement with the request path. Non-UTF8 bodies are passed
// through unmodified.
type ResponseTransform struct {
	table *routing.Table
}

func NewResponseTransform(table *routing.Table) *ResponseTransform {
	return &ResponseTransform{table: table}
}

func (t *ResponseTransform) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ep, err := t.table.Select(r.URL.Path)
		if err != nil || ep.Transformers == nil || !ep.Transformers.Response.Enabled || len(ep.Transformers.Response.TextReplacements) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(buf, r)

		body := buf.body
		if utf8.Valid(body) {
			text := string(body)
			for _, tr := range ep.Transformers.Response.TextReplacements {
				newValue := strings.ReplaceAll(tr.NewValue, "${path}", r.URL.Path)
				text = strings.ReplaceAll(text, tr.OldValue, newValue)
			}
			body = []byte(text)
		}

		for k, v := range buf.header {
			w.Header()[k] = v
		}
		if len(body) != len(buf.body) {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		}
		w.WriteHeader(buf.status)
		_, _ = w.Write(body)
	})
}
