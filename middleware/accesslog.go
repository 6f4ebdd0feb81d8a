package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/idum-proxy/idum-proxy/routing"
)

// bodyPreviewCap bounds how much of a response body an access log line
// may carry; the file and command backends can produce arbitrarily large
// bodies.
const bodyPreviewCap = 4096

// AccessLog logs one structured line per request, at the matched
// endpoint's configured level, naming the request/response headers its
// Logging block lists (headers absent from the actual request/response
// are omitted, never logged as zero values) and, unless ExcludeBody is
// set, a bounded preview of the response body. The body itself streams
// straight through; only the first bodyPreviewCap bytes are retained.
type AccessLog struct {
	table *routing.Table
}

func NewAccessLog(table *routing.Table) *AccessLog {
	return &AccessLog{table: table}
}

func (a *AccessLog) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ep, err := a.table.Select(r.URL.Path)
		if err != nil || ep.Logging == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &previewRecorder{ResponseWriter: w, status: http.StatusOK}
		if !ep.Logging.ExcludeBody {
			rec.preview = make([]byte, 0, bodyPreviewCap)
			rec.keepPreview = true
		}
		next.ServeHTTP(rec, r)

		fields := log.Fields{
			"method":     r.Method,
			"endpoint":   ep.Prefix,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
			"request_id": r.Header.Get(RequestIDHeader),
		}
		for _, h := range ep.Logging.RequestHeaders {
			if v := r.Header.Get(h); v != "" {
				fields["request_header_"+h] = v
			}
		}
		for _, h := range ep.Logging.ResponseHeaders {
			if v := w.Header().Get(h); v != "" {
				fields["response_header_"+h] = v
			}
		}
		if rec.keepPreview {
			fields["body_preview"] = string(rec.preview)
		}

		entry := log.WithFields(fields)
		switch ep.Logging.Level {
		case "debug":
			entry.Debug("request handled")
		case "warn", "warning":
			entry.Warn("request handled")
		case "error":
			entry.Error("request handled")
		default:
			entry.Info("request handled")
		}
	})
}

// previewRecorder passes every write straight through to the client,
// recording only the status code and the first bodyPreviewCap bytes, so
// streaming responses are never buffered for logging.
type previewRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	keepPreview bool
	preview     []byte
}

func (p *previewRecorder) WriteHeader(status int) {
	if p.wroteHeader {
		return
	}
	p.wroteHeader = true
	p.status = status
	p.ResponseWriter.WriteHeader(status)
}

func (p *previewRecorder) Write(b []byte) (int, error) {
	if !p.wroteHeader {
		p.WriteHeader(http.StatusOK)
	}
	if p.keepPreview && len(p.preview) < bodyPreviewCap {
		room := bodyPreviewCap - len(p.preview)
		if room > len(b) {
			room = len(b)
		}
		p.preview = append(p.preview, b[:room]...)
	}
	return p.ResponseWriter.Write(b)
}

// Flush forwards the underlying writer's flush so streaming backends keep
// their chunk-by-chunk delivery when logging is enabled.
func (p *previewRecorder) Flush() {
	if f, ok := p.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
