package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/idum-proxy/idum-proxy/config"
)

const commandTimeout = 10 * time.Second

// handleCommand runs the OS-appropriate command (plus any JSON-supplied
// "args"), streaming its combined stdout/stderr chunk by chunk and
// appending a "[exit N]" terminator line. A process that times out before
// producing any output answers 408; once output has been streamed the
// status stays 200 and the terminator line is still appended.
func handleCommand(w http.ResponseWriter, req *http.Request, cfg *config.CommandBackend) {
	base := cfg.CommandFor(runtime.GOOS)
	args := strings.Fields(base)

	body, _ := io.ReadAll(req.Body)
	if len(body) > 0 {
		var parsed struct {
			Args []interface{} `json:"args"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil {
			for _, a := range parsed.Args {
				args = append(args, fmt.Sprint(a))
			}
		}
	}
	if len(args) == 0 {
		writeJSONError(w, http.StatusInternalServerError, "no command configured")
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
		_ = pw.Close()
	}()

	headerWritten := false
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)

	for {
		n, readErr := pr.Read(buf)
		if n > 0 {
			if !headerWritten {
				w.Header().Set("Content-Type", "application/octet-stream")
				w.WriteHeader(http.StatusOK)
				headerWritten = true
			}
			if _, err := w.Write(buf[:n]); err != nil {
				<-done
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			break
		}
	}

	waitErr := <-done

	if ctx.Err() == context.DeadlineExceeded && !headerWritten {
		writeJSONError(w, http.StatusRequestTimeout, fmt.Sprintf("command execution timed out after %s", commandTimeout))
		return
	}
	if !headerWritten {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
	}

	rc := 0
	switch {
	case cmd.ProcessState != nil:
		rc = cmd.ProcessState.ExitCode()
	case waitErr != nil:
		rc = -1
	}
	_, _ = fmt.Fprintf(w, "\n[exit %d]\n", rc)
	if flusher != nil {
		flusher.Flush()
	}
}
