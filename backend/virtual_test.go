package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/routing"
)

func TestDispatchVirtual_FirstMatchWins(t *testing.T) {
	cfg := &config.Config{Endpoints: []config.Endpoint{
		{Prefix: "/v", Match: "/v/**", Identifier: "v", Upstream: config.UpstreamConfig{Virtual: &config.VirtualSourceConfig{
			Enabled: true, Strategy: "first-match", Sources: []string{"a", "b"},
		}}},
		{Prefix: "/a", Match: "/a/**", Identifier: "a"},
		{Prefix: "/b", Match: "/b/**", Identifier: "b"},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")
	reg.Reenter = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a/res" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("from-" + r.URL.Path))
	}

	req := httptest.NewRequest(http.MethodGet, "/v/res", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "from-/b/res" {
		t.Fatalf("body = %q, want fallback to the second source", rec.Body.String())
	}
}

func TestDispatchVirtual_NoSourceMatches404s(t *testing.T) {
	cfg := &config.Config{Endpoints: []config.Endpoint{
		{Prefix: "/v", Match: "/v/**", Identifier: "v", Upstream: config.UpstreamConfig{Virtual: &config.VirtualSourceConfig{
			Enabled: true, Sources: []string{"a"},
		}}},
		{Prefix: "/a", Match: "/a/**", Identifier: "a"},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")
	reg.Reenter = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	req := httptest.NewRequest(http.MethodGet, "/v/res", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDispatchVirtual_CycleDetected(t *testing.T) {
	cfg := &config.Config{Endpoints: []config.Endpoint{
		{Prefix: "/v1", Match: "/v1/**", Identifier: "v1", Upstream: config.UpstreamConfig{Virtual: &config.VirtualSourceConfig{
			Enabled: true, Sources: []string{"v2"},
		}}},
		{Prefix: "/v2", Match: "/v2/**", Identifier: "v2", Upstream: config.UpstreamConfig{Virtual: &config.VirtualSourceConfig{
			Enabled: true, Sources: []string{"v1"},
		}}},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")
	reg.Reenter = reg.ServeHTTP

	req := httptest.NewRequest(http.MethodGet, "/v1/res", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 on cycle", rec.Code)
	}
}
