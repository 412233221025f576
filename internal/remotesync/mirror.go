package remotesync

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// remoteFS is the slice of a remote filesystem the mirror needs.
type remoteFS interface {
	// Size returns the remote file size; ok is false when it does not exist.
	Size(remotePath string) (size int64, ok bool, err error)
	MkdirAll(remoteDir string) error
	Upload(remotePath string, r io.Reader) error
}

// Stats summarizes a mirror pass.
type Stats struct {
	Uploaded int
	Skipped  int
	Bytes    int64
}

// mirror walks localDir and uploads each regular file to the same relative
// location under remoteRoot when the remote copy is missing or differs in
// size. It stops at the first failed upload.
func mirror(ctx context.Context, localDir, remoteRoot string, remote remoteFS, logger *slog.Logger) (Stats, error) {
	var stats Stats
	created := map[string]struct{}{}
	err := filepath.WalkDir(localDir, func(localPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, localPath)
		if err != nil {
			return err
		}
		remotePath := path.Join(remoteRoot, filepath.ToSlash(rel))

		size, exists, err := remote.Size(remotePath)
		if err != nil {
			return fmt.Errorf("stat %s: %w", remotePath, err)
		}
		if exists && size == info.Size() {
			stats.Skipped++
			return nil
		}

		dir := path.Dir(remotePath)
		if _, ok := created[dir]; !ok {
			if err := remote.MkdirAll(dir); err != nil {
				return fmt.Errorf("mkdir %s: %w", dir, err)
			}
			created[dir] = struct{}{}
		}
		file, err := os.Open(localPath)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := remote.Upload(remotePath, file); err != nil {
			return fmt.Errorf("upload %s: %w", remotePath, err)
		}
		stats.Uploaded++
		stats.Bytes += info.Size()
		logger.Debug("uploaded", slog.String("remote_path", remotePath), slog.Int64("bytes", info.Size()))
		return nil
	})
	return stats, err
}
