package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mikanto/internal/fileutil"
	"mikanto/internal/services"
)

// Store reads and rewrites the history file.
type Store struct {
	path     string
	capacity int
}

// Open returns a store for path that keeps at most capacity lines.
// A capacity below one keeps nothing but the newest write.
func Open(path string, capacity int) *Store {
	return &Store{path: path, capacity: capacity}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Capacity returns the configured line cap.
func (s *Store) Capacity() int {
	return s.capacity
}

// Load returns every non-empty, trimmed line as a set. A missing file is
// created empty, parents included.
func (s *Store) Load() (map[string]struct{}, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		seen[line] = struct{}{}
	}
	return seen, nil
}

// Entries returns up to limit titles, newest first. A limit of zero or less
// returns everything.
func (s *Store) Entries(limit int) ([]string, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return lines, nil
}

// AppendBounded writes newTitles above the existing content, drops blank
// lines, and truncates the file to the capacity. An empty slice leaves the
// file untouched.
func (s *Store) AppendBounded(newTitles []string) error {
	if len(newTitles) == 0 {
		return nil
	}
	existing, err := s.readLines()
	if err != nil {
		return err
	}
	merged := make([]string, 0, len(newTitles)+len(existing))
	for _, title := range newTitles {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			merged = append(merged, trimmed)
		}
	}
	merged = append(merged, existing...)

	limit := max(s.capacity, 1)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	var buf bytes.Buffer
	for _, line := range merged {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "history", "write", s.path, err)
	}
	return nil
}

func (s *Store) readLines() ([]string, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.createEmpty(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", s.path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "read", s.path, err)
	}
	return lines, nil
}

func (s *Store) createEmpty() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "history", "create", s.path, err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "history", "create", s.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close history file: %w", err)
	}
	return nil
}
