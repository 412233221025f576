package remotesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"mikanto/internal/logging"
	"mikanto/internal/services"
)

type sftpSyncer struct {
	target         Target
	keyPath        string
	knownHostsPath string
	timeout        time.Duration
	logger         *slog.Logger
}

func (s *sftpSyncer) Target() string { return s.target.String() }

func (s *sftpSyncer) Sync(ctx context.Context, localDir string) error {
	logger := logging.WithContext(ctx, s.logger)
	auth, err := buildAuthMethods(s.target.Password, s.keyPath)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "remotesync", "sftp auth", s.target.String(), err)
	}
	sshClient, err := dialSSH(ctx, s.target.Host, &ssh.ClientConfig{
		User:            s.target.User,
		Auth:            auth,
		HostKeyCallback: trustOnFirstUse(s.knownHostsPath),
		Timeout:         s.timeout,
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "remotesync", "ssh dial", s.target.Host, err)
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return services.Wrap(services.ErrTransient, "remotesync", "sftp session", s.target.Host, err)
	}
	defer client.Close()

	stats, err := mirror(ctx, localDir, s.target.Root, sftpRemote{client: client}, logger)
	if err != nil {
		return services.Wrap(services.ErrTransient, "remotesync", "sftp mirror", s.target.String(), err)
	}
	logger.Info("remote sync complete",
		slog.String("target", s.target.String()),
		slog.Int("uploaded", stats.Uploaded),
		slog.Int("unchanged", stats.Skipped),
	)
	return nil
}

func dialSSH(ctx context.Context, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), nil
}

type sftpRemote struct {
	client *sftp.Client
}

func (r sftpRemote) Size(remotePath string) (int64, bool, error) {
	info, err := r.client.Stat(remotePath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return info.Size(), true, nil
}

func (r sftpRemote) MkdirAll(remoteDir string) error {
	return r.client.MkdirAll(remoteDir)
}

func (r sftpRemote) Upload(remotePath string, src io.Reader) error {
	dst, err := r.client.OpenFile(remotePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := dst.ReadFrom(src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// buildAuthMethods prefers the URL password, then the configured key, then
// ~/.ssh/id_ed25519 and ~/.ssh/id_rsa.
func buildAuthMethods(password, keyPath string) ([]ssh.AuthMethod, error) {
	if password != "" {
		return []ssh.AuthMethod{ssh.Password(password)}, nil
	}
	candidates := []string{keyPath}
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		candidates = []string{
			filepath.Join(home, ".ssh", "id_ed25519"),
			filepath.Join(home, ".ssh", "id_rsa"),
		}
	}
	for _, candidate := range candidates {
		pemBytes, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(pemBytes)
		if err != nil {
			var ppErr *ssh.PassphraseMissingError
			if errors.As(err, &ppErr) {
				return nil, fmt.Errorf("ssh key %q is passphrase-protected", candidate)
			}
			continue
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return nil, fmt.Errorf("no usable ssh credentials: put a password in the target URL or a key at %s", strings.Join(candidates, ", "))
}
