package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"mikanto/internal/runlock"
	"mikanto/internal/services"
)

func TestAcquireIsExclusive(t *testing.T) {
	history := filepath.Join(t.TempDir(), "state", "history.txt")

	first, err := runlock.Acquire(history)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if first.Path() != history+".lock" {
		t.Fatalf("unexpected lock path %q", first.Path())
	}

	if _, err := runlock.Acquire(history); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error while held, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	second, err := runlock.Acquire(history)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = second.Release()
}
