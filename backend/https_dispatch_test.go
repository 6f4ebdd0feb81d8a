package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/routing"
)

func TestRegistry_HandleHTTPS_ForwardsToUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	cfg := &config.Config{Endpoints: []config.Endpoint{
		{
			Prefix: "/api", Match: "/api/**",
			Upstream: config.UpstreamConfig{Proxy: &config.ProxyConfig{Enabled: true}},
			Backends: &config.Backends{HTTPS: &config.HTTPSBackend{URL: upstream.URL + "$"}},
		},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRegistry_HandleHTTPS_MethodNotAllowed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	cfg := &config.Config{Endpoints: []config.Endpoint{
		{
			Prefix: "/api", Match: "/api/**",
			Upstream: config.UpstreamConfig{Proxy: &config.ProxyConfig{Enabled: true}},
			Backends: &config.Backends{HTTPS: &config.HTTPSBackend{URL: upstream.URL + "$", Methods: []string{"GET"}}},
		},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
