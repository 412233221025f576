package subscriptions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mikanto/internal/config"
	"mikanto/internal/fileutil"
	"mikanto/internal/services"
)

// Subscription is one feed entry of the "mikan" array.
type Subscription struct {
	URL     string
	Title   string
	Enable  *bool
	SaveDir string
	Rule    string

	// keys holds the object's keys in file order; nil for entries built in
	// code, which carry the standard key set.
	keys  []string
	extra map[string]json.RawMessage
}

// HasKey reports whether key is stored on the entry. Edits only overwrite
// keys the entry already has.
func (s Subscription) HasKey(key string) bool {
	if s.keys == nil {
		switch key {
		case "url", "title", "savedir", "rule":
			return true
		case "enable":
			return s.Enable != nil
		}
		_, ok := s.extra[key]
		return ok
	}
	for _, k := range s.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Enabled reports whether the subscription is active. A missing "enable"
// key means enabled.
func (s Subscription) Enabled() bool {
	return s.Enable == nil || *s.Enable
}

// Aria2 is the optional "aria2" block of the subscription file.
type Aria2 struct {
	Host   string `json:"host,omitempty"`
	Port   Port   `json:"port,omitempty"`
	Secret string `json:"secret,omitempty"`
}

// Settings converts the block into aria2 connection settings, filling gaps
// from fallback.
func (a Aria2) Settings(fallback config.Aria2) config.Aria2 {
	out := fallback
	if host := strings.TrimSpace(a.Host); host != "" {
		out.Host = host
	}
	if a.Port > 0 {
		out.Port = int(a.Port)
	}
	out.Secret = a.Secret
	return out
}

// Port accepts either a JSON number or a numeric string.
type Port int

// UnmarshalJSON implements json.Unmarshaler.
func (p *Port) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("aria2 port %s: %w", data, err)
	}
	*p = Port(n)
	return nil
}

// List is the whole subscription file.
type List struct {
	Mikan []Subscription
	Proxy map[string]string
	Aria2 *Aria2

	extra map[string]json.RawMessage
}

// EnabledCount returns the number of enabled subscriptions.
func (l *List) EnabledCount() int {
	n := 0
	for _, sub := range l.Mikan {
		if sub.Enabled() {
			n++
		}
	}
	return n
}

// Find returns the index of the subscription titled title, or -1.
func (l *List) Find(title string) int {
	for i, sub := range l.Mikan {
		if sub.Title == title {
			return i
		}
	}
	return -1
}

// Load reads a subscription file. Any failure, including a missing file or
// a non-.json extension, is a configuration error.
func Load(path string) (*List, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, services.Wrap(services.ErrConfiguration, "subscriptions", "load", fmt.Sprintf("unsupported file type %q", filepath.Base(path)), nil)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrConfiguration, "subscriptions", "load", "subscription file not found: "+path, nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "subscriptions", "load", path, err)
	}
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "subscriptions", "parse", path, err)
	}
	return &list, nil
}

// LoadOrEmpty behaves like Load but returns an empty list when the file does
// not exist yet.
func LoadOrEmpty(path string) (*List, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &List{}, nil
	}
	return Load(path)
}

// Save writes the list as 4-space indented JSON with non-ASCII text kept
// verbatim.
func Save(path string, list *List) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("encode subscriptions: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "subscriptions", "save", path, err)
	}
	return nil
}
