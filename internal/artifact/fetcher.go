// Package artifact downloads torrent descriptors into the local artifact tree
// under <torrent dir>/<save dir>/<sanitized title>.torrent.
package artifact

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"mikanto/internal/fileutil"
	"mikanto/internal/logging"
	"mikanto/internal/services"
	"mikanto/internal/textutil"
)

// Getter fetches a URL body. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Fetcher stores torrent files beneath a root directory.
type Fetcher struct {
	client Getter
	root   string
	logger *slog.Logger
}

// New constructs a Fetcher writing under torrentDir.
func New(client Getter, torrentDir string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		root:   torrentDir,
		logger: logging.NewComponentLogger(logger, "artifact"),
	}
}

// Path returns where the descriptor for title in subdir is stored.
func (f *Fetcher) Path(subdir, title string) string {
	return filepath.Join(f.root, subdir, textutil.SanitizeFileName(title)+".torrent")
}

// Fetch downloads url and writes it to Path(subdir, title), overwriting any
// existing file. Failures are logged and reported as ok=false.
func (f *Fetcher) Fetch(ctx context.Context, url, subdir, title string) (string, bool) {
	logger := logging.WithContext(ctx, f.logger)
	data, err := f.client.Get(ctx, url)
	if err != nil {
		logger.Error("torrent download failed",
			slog.String("url", url),
			slog.String("title", title),
			slog.String("savedir", subdir),
			logging.Error(err),
		)
		return "", false
	}

	target := f.Path(subdir, title)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		logger.Error("torrent directory create failed",
			slog.String("path", filepath.Dir(target)),
			slog.String("title", title),
			logging.Error(services.Wrap(services.ErrTransient, "artifact", "mkdir", "", err)),
		)
		return "", false
	}
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		logger.Error("torrent write failed",
			slog.String("path", target),
			slog.String("title", title),
			logging.Error(err),
		)
		return "", false
	}
	logger.Info("torrent saved", slog.String("path", target), slog.Int("bytes", len(data)))
	return target, true
}
