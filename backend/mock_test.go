package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idum-proxy/idum-proxy/config"
)

func newMockConfig(t *testing.T, raw string) *config.MockConfig {
	t.Helper()
	var m config.MockConfig
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal mock config: %v", err)
	}
	return &m
}

func TestHandleMock_FirstMatchWinsInConfigOrder(t *testing.T) {
	cfg := newMockConfig(t, `{
		"enabled": true,
		"path_templates": {
			"/users/*": {"status_code": 200, "content_type": "application/json", "body": {"kind": "wildcard"}},
			"/users/{id}": {"status_code": 200, "content_type": "application/json", "body": {"kind": "named"}}
		}
	}`)
	ep := &config.Endpoint{Prefix: "/mock"}

	req := httptest.NewRequest(http.MethodGet, "/mock/users/42", nil)
	rec := httptest.NewRecorder()
	handleMock(rec, req, ep, cfg)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["kind"] != "wildcard" {
		t.Fatalf("expected the first-declared pattern to win, got %v", body["kind"])
	}
}

func TestHandleMock_FallsBackToDefaultResponse(t *testing.T) {
	cfg := newMockConfig(t, `{
		"enabled": true,
		"path_templates": {"/only": {"status_code": 200, "body": "ok"}},
		"default_response": {"status_code": 418, "content_type": "text/plain", "body": "teapot"}
	}`)
	ep := &config.Endpoint{Prefix: "/mock"}

	req := httptest.NewRequest(http.MethodGet, "/mock/nowhere", nil)
	rec := httptest.NewRecorder()
	handleMock(rec, req, ep, cfg)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "teapot" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestHandleMock_NoMatchNoDefault404s(t *testing.T) {
	cfg := newMockConfig(t, `{"enabled": true, "path_templates": {"/only": {"status_code": 200}}}`)
	ep := &config.Endpoint{Prefix: "/mock"}

	req := httptest.NewRequest(http.MethodGet, "/mock/nowhere", nil)
	rec := httptest.NewRecorder()
	handleMock(rec, req, ep, cfg)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
