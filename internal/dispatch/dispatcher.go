// Package dispatch hands saved torrents to an external download agent.
package dispatch

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"mikanto/internal/fileutil"
	"mikanto/internal/logging"
)

// Options are per-task download options.
type Options struct {
	// Dir is the agent-side directory the payload is written to.
	Dir string
}

// Agent is a download agent such as aria2.
type Agent interface {
	AddTorrent(ctx context.Context, path string, opts Options) (string, error)
	AddURI(ctx context.Context, uri string, opts Options) (string, error)
	// BaseDir is the agent's default download directory.
	BaseDir() string
}

// Dispatcher submits tasks to an optional agent.
type Dispatcher struct {
	agent  Agent
	logger *slog.Logger
}

// New returns a Dispatcher. A nil agent disables dispatch.
func New(agent Agent, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{agent: agent, logger: logging.NewComponentLogger(logger, "dispatch")}
}

// Enabled reports whether an agent is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.agent != nil
}

// Submit queues a download into <agent base dir>/<subdir>. The local torrent
// is preferred; remoteURL is used only when localPath is missing. Errors are
// logged and swallowed.
func (d *Dispatcher) Submit(ctx context.Context, remoteURL, localPath, subdir string) {
	if !d.Enabled() {
		return
	}
	logger := logging.WithContext(ctx, d.logger)
	opts := Options{Dir: joinAgentDir(d.agent.BaseDir(), subdir)}

	if localPath != "" && fileutil.RegularFileExists(localPath) {
		gid, err := d.agent.AddTorrent(ctx, localPath, opts)
		if err != nil {
			logger.Error("agent rejected local torrent",
				slog.String("path", localPath),
				slog.String("dir", opts.Dir),
				logging.Error(err),
			)
			return
		}
		logger.Info("task submitted from local torrent", slog.String("gid", gid), slog.String("path", localPath))
		return
	}

	gid, err := d.agent.AddURI(ctx, remoteURL, opts)
	if err != nil {
		logger.Error("agent rejected torrent url",
			slog.String("url", remoteURL),
			slog.String("dir", opts.Dir),
			logging.Error(err),
		)
		return
	}
	logger.Info("task submitted from url", slog.String("gid", gid), slog.String("url", remoteURL))
}

// joinAgentDir joins with forward slashes; the agent may run on another OS
// than this process.
func joinAgentDir(base, subdir string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return subdir
	}
	return path.Join(base, subdir)
}
