package testsupport

import (
	"testing"

	"mikanto/internal/config"
	"mikanto/internal/history"
)

// MustOpenHistory opens the configured history store and loads it once so
// the file exists.
func MustOpenHistory(t testing.TB, cfg *config.Config, capacity int) *history.Store {
	t.Helper()

	store := history.Open(cfg.Paths.HistoryFile, capacity)
	if _, err := store.Load(); err != nil {
		t.Fatalf("history.Load: %v", err)
	}
	return store
}
