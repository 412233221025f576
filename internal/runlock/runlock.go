// Package runlock keeps two runs from writing the same history file at once.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"mikanto/internal/services"
)

// Lock is an exclusive advisory lock next to the history file.
type Lock struct {
	lock *flock.Flock
}

// PathFor returns the lock file guarding historyFile.
func PathFor(historyFile string) string {
	return historyFile + ".lock"
}

// Acquire takes the lock for historyFile without blocking. A lock held by
// another process is reported as a configuration error.
func Acquire(historyFile string) (*Lock, error) {
	path := PathFor(historyFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "create dir", path, err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire",
			fmt.Sprintf("another run holds %s", path), nil)
	}
	return &Lock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.lock.Path()
}

// Release unlocks. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
