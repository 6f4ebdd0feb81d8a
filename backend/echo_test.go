package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idum-proxy/idum-proxy/config"
)

func TestHandleEcho_RoundTripsRequest(t *testing.T) {
	ep := &config.Endpoint{Prefix: "/echo"}
	cfg := &config.EchoConfig{AddHeaders: map[string]string{"X-Served-By": "gw"}}

	req := httptest.NewRequest(http.MethodGet, "/echo/hello?a=1&a=2&b=3", nil)
	req.Header.Set("X-Test", "yes")
	rec := httptest.NewRecorder()

	handleEcho(rec, req, ep, cfg, map[string]string{"X-Test": "yes"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["path"] != "/hello?a=1&a=2&b=3" {
		t.Fatalf("path = %v", body["path"])
	}
	qp := body["query_params"].(map[string]interface{})
	if _, ok := qp["a"].([]interface{}); !ok {
		t.Fatalf("expected repeated query param a to be an array, got %#v", qp["a"])
	}
	if qp["b"] != "3" {
		t.Fatalf("b = %v, want scalar 3", qp["b"])
	}
	if rec.Header().Get("X-Served-By") != "gw" {
		t.Fatalf("missing add_headers header")
	}
}
