package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `{
	"name": "gateway",
	"version": "1.0.0",
	"server": {"type": "local", "workers": 1},
	"endpoints": [
		{
			"prefix": "/api",
			"match": "/api/**",
			"upstream": {"proxy": {"enabled": true}},
			"backends": {"https": {"url": "https://example.com", "methods": ["GET"]}}
		}
	]
}`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "gateway" || cfg.Version != "1.0.0" {
		t.Errorf("name/version not loaded: %q %q", cfg.Name, cfg.Version)
	}
	if len(cfg.Endpoints) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(cfg.Endpoints))
	}
	ep := cfg.Endpoints[0]
	if ep.Weight != 100 {
		t.Errorf("expected default weight 100, got %d", ep.Weight)
	}
	if ep.TimeoutSecs != 30 {
		t.Errorf("expected default timeout 30, got %v", ep.TimeoutSecs)
	}
	if ep.Backends == nil || ep.Backends.HTTPS == nil {
		t.Fatal("https backend not decoded")
	}
	if ep.Backends.HTTPS.URL != "https://example.com" {
		t.Errorf("unexpected backend url %q", ep.Backends.HTTPS.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadSortsByWeightDescending(t *testing.T) {
	doc := `{
		"name": "gateway",
		"version": "1",
		"server": {"type": "local", "workers": 1},
		"endpoints": [
			{"prefix": "/low", "match": "/**", "weight": 1,
			 "upstream": {"proxy": {"enabled": true}},
			 "backends": {"echo": {"enabled": true}}},
			{"prefix": "/a", "match": "/a/**", "weight": 50,
			 "upstream": {"proxy": {"enabled": true}},
			 "backends": {"echo": {"enabled": true}}},
			{"prefix": "/b", "match": "/b/**", "weight": 50,
			 "upstream": {"proxy": {"enabled": true}},
			 "backends": {"echo": {"enabled": true}}},
			{"prefix": "/high", "match": "/high/**", "weight": 200,
			 "upstream": {"proxy": {"enabled": true}},
			 "backends": {"echo": {"enabled": true}}}
		]
	}`
	cfg, err := Load(writeConfig(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		got[i] = ep.Prefix
	}
	// equal weights keep their file order
	want := []string{"/high", "/a", "/b", "/low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sort order: got %v, want %v", got, want)
		}
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing name", `{"version": "1", "server": {"workers": 1},
			"endpoints": [{"prefix": "/", "match": "/**",
				"upstream": {"proxy": {"enabled": true}},
				"backends": {"echo": {"enabled": true}}}]}`},
		{"missing version", `{"name": "g", "server": {"workers": 1},
			"endpoints": [{"prefix": "/", "match": "/**",
				"upstream": {"proxy": {"enabled": true}},
				"backends": {"echo": {"enabled": true}}}]}`},
		{"no endpoints", `{"name": "g", "version": "1",
			"server": {"workers": 1}, "endpoints": []}`},
		{"bad server type", `{"name": "g", "version": "1",
			"server": {"type": "apache", "workers": 1},
			"endpoints": [{"prefix": "/", "match": "/**",
				"upstream": {"proxy": {"enabled": true}},
				"backends": {"echo": {"enabled": true}}}]}`},
		{"missing prefix", `{"name": "g", "version": "1",
			"server": {"workers": 1},
			"endpoints": [{"match": "/**",
				"upstream": {"proxy": {"enabled": true}},
				"backends": {"echo": {"enabled": true}}}]}`},
		{"missing match", `{"name": "g", "version": "1",
			"server": {"workers": 1},
			"endpoints": [{"prefix": "/",
				"upstream": {"proxy": {"enabled": true}},
				"backends": {"echo": {"enabled": true}}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.doc)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateUpstreamExclusivity(t *testing.T) {
	doc := `{
		"name": "g", "version": "1", "server": {"workers": 1},
		"endpoints": [{
			"prefix": "/", "match": "/**",
			"upstream": {
				"proxy": {"enabled": true},
				"virtual": {"enabled": true, "sources": ["a"]}
			},
			"backends": {"echo": {"enabled": true}}
		}]
	}`
	if _, err := Load(writeConfig(t, doc)); err == nil {
		t.Fatal("expected error for two upstream variants")
	}
}

func TestValidateBackendExclusivity(t *testing.T) {
	doc := `{
		"name": "g", "version": "1", "server": {"workers": 1},
		"endpoints": [{
			"prefix": "/", "match": "/**",
			"upstream": {"proxy": {"enabled": true}},
			"backends": {
				"echo": {"enabled": true},
				"file": {"enabled": true, "path": "/tmp"}
			}
		}]
	}`
	if _, err := Load(writeConfig(t, doc)); err == nil {
		t.Fatal("expected error for two backend variants")
	}
}

func TestValidateCronSchedule(t *testing.T) {
	doc := `{
		"name": "g", "version": "1", "server": {"workers": 1},
		"endpoints": [{
			"prefix": "/jobs", "match": "/jobs/**",
			"upstream": {"proxy": {"enabled": true}},
			"backends": {"scheduler": {
				"enabled": true,
				"cron_jobs": {"backup": {
					"schedule": "99 99 * * *",
					"command": "true",
					"description": "out-of-range fields"
				}}
			}}
		}]
	}`
	if _, err := Load(writeConfig(t, doc)); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}

func TestServerDefaults(t *testing.T) {
	doc := `{
		"name": "g", "version": "1", "server": {},
		"endpoints": [{"prefix": "/", "match": "/**",
			"upstream": {"proxy": {"enabled": true}},
			"backends": {"echo": {"enabled": true}}}]
	}`
	cfg, err := Load(writeConfig(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Type != "gunicorn" {
		t.Errorf("expected default server type gunicorn, got %q", cfg.Server.Type)
	}
	if cfg.Server.Workers != 2 {
		t.Errorf("expected default workers 2, got %d", cfg.Server.Workers)
	}
}

func TestBackendsListDecoding(t *testing.T) {
	var ep Endpoint
	doc := `{
		"prefix": "/multi", "match": "/multi/**",
		"upstream": {"proxy": {"enabled": true}},
		"backends": [
			{"echo": {"enabled": true}},
			{"file": {"enabled": true, "path": "/srv"}}
		]
	}`
	if err := json.Unmarshal([]byte(doc), &ep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := ep.AllBackends()
	if len(all) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(all))
	}
	if all[0].Echo == nil {
		t.Error("first backend should be echo")
	}
	if all[1].File == nil || all[1].File.Path != "/srv" {
		t.Error("second backend should be the /srv file backend")
	}
}

func TestHTTPSListDecoding(t *testing.T) {
	var b Backends
	doc := `{"https": [
		{"url": "https://one.example.com", "weight": 70},
		{"url": "https://two.example.com", "weight": 30}
	]}`
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := b.AllHTTPS()
	if len(all) != 2 {
		t.Fatalf("expected 2 https backends, got %d", len(all))
	}
	if all[0].URL != "https://one.example.com" || all[0].Weight != 70 {
		t.Errorf("first https backend not decoded: %+v", all[0])
	}
}

func TestMockTemplateOrderPreserved(t *testing.T) {
	var m MockConfig
	doc := `{
		"enabled": true,
		"path_templates": {
			"/users/**": {"status_code": 200, "body": "users"},
			"/orders/**": {"status_code": 201, "body": "orders"},
			"/**": {"status_code": 404, "body": "fallback"}
		}
	}`
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ordered := m.OrderedPathTemplates()
	if len(ordered) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(ordered))
	}
	want := []string{"/users/**", "/orders/**", "/**"}
	for i, entry := range ordered {
		if entry.Pattern != want[i] {
			t.Fatalf("template order: got %q at %d, want %q", entry.Pattern, i, want[i])
		}
	}
	if m.PathTemplates["/orders/**"].StatusCode != 201 {
		t.Error("template map not populated")
	}
}

func TestCommandFor(t *testing.T) {
	c := CommandBackend{Default: "echo hi", Linux: "ls -la"}
	if got := c.CommandFor("linux"); got != "ls -la" {
		t.Errorf("linux override: got %q", got)
	}
	if got := c.CommandFor("darwin"); got != "echo hi" {
		t.Errorf("darwin fallback: got %q", got)
	}
}
