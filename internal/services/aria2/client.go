package aria2

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"mikanto/internal/dispatch"
	"mikanto/internal/services"
)

const (
	methodGetGlobalOption = "aria2.getGlobalOption"
	methodAddTorrent      = "aria2.addTorrent"
	methodAddURI          = "aria2.addUri"
)

// Config describes how to reach aria2.
type Config struct {
	// Endpoint is the full JSON-RPC URL, e.g. http://localhost:6800/jsonrpc.
	Endpoint string
	Secret   string
}

var _ dispatch.Agent = (*Client)(nil)

// Client talks to one aria2 instance.
type Client struct {
	rpc     *jrpc2.Client
	secret  string
	baseDir string
}

// Option customizes the client.
type Option func(*jhttp.ChannelOptions)

// WithHTTPClient overrides the HTTP client used by the JSON-RPC channel.
func WithHTTPClient(client *http.Client) Option {
	return func(o *jhttp.ChannelOptions) {
		if client != nil {
			o.Client = client
		}
	}
}

// Connect opens a client and reads aria2's global "dir" option once. An
// unreachable server or a missing dir is a configuration error.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "aria2", "connect", "endpoint is empty", nil)
	}
	chOpts := &jhttp.ChannelOptions{}
	for _, opt := range opts {
		opt(chOpts)
	}
	c := &Client{
		rpc:    jrpc2.NewClient(jhttp.NewChannel(endpoint, chOpts), nil),
		secret: strings.TrimSpace(cfg.Secret),
	}

	var global map[string]string
	if err := c.rpc.CallResult(ctx, methodGetGlobalOption, c.params(), &global); err != nil {
		_ = c.rpc.Close()
		return nil, services.Wrap(services.ErrConfiguration, "aria2", "get global option", endpoint, err)
	}
	c.baseDir = strings.TrimSpace(global["dir"])
	if c.baseDir == "" {
		_ = c.rpc.Close()
		return nil, services.Wrap(services.ErrConfiguration, "aria2", "get global option", "server reported no download dir", nil)
	}
	return c, nil
}

// BaseDir returns the download directory reported at connect time.
func (c *Client) BaseDir() string {
	return c.baseDir
}

// AddTorrent uploads the torrent file at path and returns the task GID.
func (c *Client) AddTorrent(ctx context.Context, path string, opts dispatch.Options) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "aria2", "read torrent", path, err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	var gid string
	if err := c.rpc.CallResult(ctx, methodAddTorrent, c.params(encoded, []string{}, taskOptions(opts)), &gid); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "aria2", "add torrent", path, err)
	}
	return gid, nil
}

// AddURI queues uri and returns the task GID.
func (c *Client) AddURI(ctx context.Context, uri string, opts dispatch.Options) (string, error) {
	var gid string
	if err := c.rpc.CallResult(ctx, methodAddURI, c.params([]string{uri}, taskOptions(opts)), &gid); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "aria2", "add uri", uri, err)
	}
	return gid, nil
}

// Close releases the underlying channel.
func (c *Client) Close() error {
	if c == nil || c.rpc == nil {
		return nil
	}
	if err := c.rpc.Close(); err != nil {
		return fmt.Errorf("close aria2 client: %w", err)
	}
	return nil
}

// params prepends the "token:<secret>" argument aria2 expects when an RPC
// secret is configured.
func (c *Client) params(args ...any) []any {
	if c.secret == "" {
		return append([]any{}, args...)
	}
	return append([]any{"token:" + c.secret}, args...)
}

func taskOptions(opts dispatch.Options) map[string]string {
	out := map[string]string{}
	if opts.Dir != "" {
		out["dir"] = opts.Dir
	}
	return out
}
