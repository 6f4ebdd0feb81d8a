package backend

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/routing"
)

func TestRegistry_ServeHTTP_404sWhenUnrouted(t *testing.T) {
	cfg := &config.Config{Endpoints: []config.Endpoint{
		{Prefix: "/echo", Match: "/echo/**", Upstream: config.UpstreamConfig{Proxy: &config.ProxyConfig{Enabled: true}},
			Backends: &config.Backends{Echo: &config.EchoConfig{Enabled: true}}},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRegistry_ServeHTTP_DispatchesToEcho(t *testing.T) {
	cfg := &config.Config{Endpoints: []config.Endpoint{
		{Prefix: "/echo", Match: "/echo/**", Upstream: config.UpstreamConfig{Proxy: &config.ProxyConfig{Enabled: true}},
			Backends: &config.Backends{Echo: &config.EchoConfig{Enabled: true}}},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")

	req := httptest.NewRequest(http.MethodGet, "/echo/hi", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRegistry_Dispatch_MissingFile404s(t *testing.T) {
	cfg := &config.Config{Endpoints: []config.Endpoint{
		{Prefix: "/bad", Match: "/bad/**", Upstream: config.UpstreamConfig{Proxy: &config.ProxyConfig{Enabled: true}},
			Backends: &config.Backends{File: &config.FileBackendConfig{Path: "/does/not/exist", Enabled: true}}},
	}}
	table := routing.NewTable(cfg)
	reg := NewRegistry(table, "test")

	req := httptest.NewRequest(http.MethodGet, "/bad/x", nil)
	rec := httptest.NewRecorder()
	reg.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 from missing file (no panic expected here)", rec.Code)
	}
}
