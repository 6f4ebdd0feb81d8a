package backend

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/idum-proxy/idum-proxy/config"
)

func TestHandleFile_StreamsContent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	ep := &config.Endpoint{Prefix: "/files"}
	cfg := &config.FileBackendConfig{Path: dir, Enabled: true}

	req := httptest.NewRequest(http.MethodGet, "/files/note.txt", nil)
	rec := httptest.NewRecorder()
	handleFile(rec, req, ep, cfg)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "hello world" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestHandleFile_MissingFile404s(t *testing.T) {
	dir := t.TempDir()
	ep := &config.Endpoint{Prefix: "/files"}
	cfg := &config.FileBackendConfig{Path: dir, Enabled: true}

	req := httptest.NewRequest(http.MethodGet, "/files/nope.txt", nil)
	rec := httptest.NewRecorder()
	handleFile(rec, req, ep, cfg)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleFile_RejectsDirectoryTraversalOutsidePath(t *testing.T) {
	dir := t.TempDir()
	secretDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(secretDir, "secret.txt"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	ep := &config.Endpoint{Prefix: "/files"}
	cfg := &config.FileBackendConfig{Path: dir, Enabled: true}

	req := httptest.NewRequest(http.MethodGet, "/files/../"+filepath.Base(secretDir)+"/secret.txt", nil)
	req.URL.Path = "/files/../" + filepath.Base(secretDir) + "/secret.txt"
	rec := httptest.NewRecorder()
	handleFile(rec, req, ep, cfg)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (traversal should not escape configured root)", rec.Code)
	}
}
