package runner

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeTool writes an executable shell script named arduino-lint into a temp
// directory and returns its path.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts need a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), DefaultBinaryName)
	script := "#!/bin/sh\n" + body + "\n"
	//nolint:gosec // G306: test executable needs exec permission
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write fake tool: %v", err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(path string, opts ...Option) *Runner {
	all := append([]Option{WithBinaryPath(path), WithLogger(quietLogger())}, opts...)
	return New(all...)
}
