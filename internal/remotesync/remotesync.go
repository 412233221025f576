// Package remotesync mirrors the local artifact tree to remote storage after
// a run that produced new torrents. Backends speak SFTP or FTP(S); files are
// uploaded when missing remotely or when their size differs.
package remotesync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"mikanto/internal/config"
	"mikanto/internal/logging"
	"mikanto/internal/services"
)

// Syncer uploads a local directory tree.
type Syncer interface {
	Sync(ctx context.Context, localDir string) error
	// Target describes the destination without credentials.
	Target() string
}

// Target is a parsed sync destination.
type Target struct {
	Scheme   string
	Host     string
	User     string
	Password string
	Root     string
}

// String returns the target URL without the password.
func (t Target) String() string {
	u := url.URL{Scheme: t.Scheme, Host: t.Host, Path: t.Root}
	if t.User != "" {
		u.User = url.User(t.User)
	}
	return u.String()
}

// ParseTarget parses sftp://, ftp://, and ftps:// destinations. The port
// defaults to 22 for sftp and 21 for ftp/ftps; the root defaults to ".".
func ParseTarget(raw string) (Target, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Target{}, services.Wrap(services.ErrConfiguration, "remotesync", "parse target", "", err)
	}
	t := Target{Scheme: strings.ToLower(parsed.Scheme), Host: parsed.Host}
	var defaultPort string
	switch t.Scheme {
	case "sftp":
		defaultPort = "22"
	case "ftp", "ftps":
		defaultPort = "21"
	default:
		return Target{}, services.Wrap(services.ErrConfiguration, "remotesync", "parse target", fmt.Sprintf("unsupported scheme %q", parsed.Scheme), nil)
	}
	if parsed.Hostname() == "" {
		return Target{}, services.Wrap(services.ErrConfiguration, "remotesync", "parse target", "host is required", nil)
	}
	if parsed.Port() == "" {
		t.Host = parsed.Hostname() + ":" + defaultPort
	}
	if parsed.User != nil {
		t.User = parsed.User.Username()
		t.Password, _ = parsed.User.Password()
	}
	if parsed.Path == "" {
		t.Root = "."
	} else {
		t.Root = path.Clean("/" + strings.TrimPrefix(parsed.Path, "/"))
	}
	return t, nil
}

// New builds the syncer selected by cfg.Sync.Target. An empty target yields
// a syncer that does nothing.
func New(cfg *config.Config, logger *slog.Logger) (Syncer, error) {
	logger = logging.NewComponentLogger(logger, "remotesync")
	if cfg == nil || strings.TrimSpace(cfg.Sync.Target) == "" {
		return Noop{}, nil
	}
	target, err := ParseTarget(cfg.Sync.Target)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Sync.TimeoutSeconds) * time.Second
	switch target.Scheme {
	case "sftp":
		return &sftpSyncer{
			target:         target,
			keyPath:        cfg.Sync.SSHKeyPath,
			knownHostsPath: cfg.Sync.KnownHostsPath,
			timeout:        timeout,
			logger:         logger,
		}, nil
	default:
		return &ftpSyncer{target: target, timeout: timeout, logger: logger}, nil
	}
}

// Noop is the syncer used when no target is configured.
type Noop struct{}

// Sync does nothing.
func (Noop) Sync(context.Context, string) error { return nil }

// Target returns an empty string.
func (Noop) Target() string { return "" }

// IsNoop reports whether s performs no uploads.
func IsNoop(s Syncer) bool {
	if s == nil {
		return true
	}
	_, ok := s.(Noop)
	return ok
}
