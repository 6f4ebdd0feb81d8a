package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header a correlation ID is read from (if the
// caller already supplies one) and always stamped back with on the way
// out, so a client-chosen ID survives the round trip and log lines from
// every middleware can be correlated to one request.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a UUIDv4 correlation ID to every request that doesn't
// already carry one, and stamps it on both the inbound request (so
// AccessLog and backends can read it) and the outbound response.
type RequestID struct{}

func NewRequestID() *RequestID { return &RequestID{} }

func (m *RequestID) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
