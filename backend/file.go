package backend

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/idum-proxy/idum-proxy/config"
)

const fileChunkSize = 8192

// handleFile streams backend.file.path + (request path minus prefix) in
// 8KiB chunks. Missing paths, directories and symlinks all 404; symlinks
// are never followed.
func handleFile(w http.ResponseWriter, req *http.Request, ep *config.Endpoint, cfg *config.FileBackendConfig) {
	rel := strings.TrimPrefix(req.URL.Path, ep.Prefix)
	fullPath := filepath.Join(cfg.Path, filepath.Clean("/"+rel))

	info, err := os.Lstat(fullPath)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "file not found")
		return
	}
	if info.Mode()&os.ModeSymlink != 0 || !info.Mode().IsRegular() {
		writeJSONError(w, http.StatusNotFound, "file not found")
		return
	}

	f, err := os.Open(fullPath)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(fullPath))
	w.WriteHeader(http.StatusOK)

	buf := make([]byte, fileChunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return
			}
		}
		if readErr == io.EOF {
			return
		}
		if readErr != nil {
			return
		}
	}
}
