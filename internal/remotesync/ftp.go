package remotesync

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"mikanto/internal/logging"
	"mikanto/internal/services"
)

type ftpSyncer struct {
	target  Target
	timeout time.Duration
	logger  *slog.Logger
}

func (s *ftpSyncer) Target() string { return s.target.String() }

func (s *ftpSyncer) Sync(ctx context.Context, localDir string) error {
	logger := logging.WithContext(ctx, s.logger)
	opts := []ftp.DialOption{
		ftp.DialWithTimeout(s.timeout),
		ftp.DialWithContext(ctx),
	}
	if s.target.Scheme == "ftps" {
		host := s.target.Host
		if idx := strings.LastIndex(host, ":"); idx > 0 {
			host = host[:idx]
		}
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}))
	}
	conn, err := ftp.Dial(s.target.Host, opts...)
	if err != nil {
		return services.Wrap(services.ErrTransient, "remotesync", "ftp dial", s.target.Host, err)
	}
	defer conn.Quit() //nolint:errcheck

	user, password := s.target.User, s.target.Password
	if user == "" {
		user, password = "anonymous", "anonymous"
	}
	if err := conn.Login(user, password); err != nil {
		return services.Wrap(services.ErrConfiguration, "remotesync", "ftp login", s.target.String(), err)
	}
	if err := conn.Type(ftp.TransferTypeBinary); err != nil {
		return services.Wrap(services.ErrTransient, "remotesync", "ftp binary mode", s.target.String(), err)
	}

	stats, err := mirror(ctx, localDir, s.target.Root, &ftpRemote{conn: conn}, logger)
	if err != nil {
		return services.Wrap(services.ErrTransient, "remotesync", "ftp mirror", s.target.String(), err)
	}
	logger.Info("remote sync complete",
		slog.String("target", s.target.String()),
		slog.Int("uploaded", stats.Uploaded),
		slog.Int("unchanged", stats.Skipped),
	)
	return nil
}

// ftpConn is the subset of *ftp.ServerConn used for mirroring.
type ftpConn interface {
	FileSize(path string) (int64, error)
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
}

type ftpRemote struct {
	conn ftpConn
}

// Size treats any SIZE failure as "missing": servers answer 550 both for
// absent files and for directories.
func (r *ftpRemote) Size(remotePath string) (int64, bool, error) {
	size, err := r.conn.FileSize(remotePath)
	if err != nil {
		return 0, false, nil
	}
	return size, true, nil
}

// MkdirAll creates each path segment, ignoring "already exists" replies.
func (r *ftpRemote) MkdirAll(remoteDir string) error {
	if remoteDir == "." || remoteDir == "/" || remoteDir == "" {
		return nil
	}
	current := ""
	if strings.HasPrefix(remoteDir, "/") {
		current = "/"
	}
	for _, segment := range strings.Split(strings.Trim(remoteDir, "/"), "/") {
		if segment == "" || segment == "." {
			continue
		}
		current = path.Join(current, segment)
		_ = r.conn.MakeDir(current)
	}
	return nil
}

func (r *ftpRemote) Upload(remotePath string, src io.Reader) error {
	return r.conn.Stor(remotePath, src)
}
