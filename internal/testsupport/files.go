package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mikanto/internal/config"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSubscriptions stores a raw subscription JSON document at the
// configured subscriptions path.
func WriteSubscriptions(t testing.TB, cfg *config.Config, doc string) {
	t.Helper()
	WriteFile(t, cfg.Paths.SubscriptionsFile, []byte(doc))
}

// WriteHistory stores lines, newest first, at the configured history path.
func WriteHistory(t testing.TB, cfg *config.Config, lines ...string) {
	t.Helper()
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	WriteFile(t, cfg.Paths.HistoryFile, []byte(content))
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
