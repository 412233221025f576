// Package fetch provides the HTTP client shared by feed and torrent downloads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mikanto/internal/config"
	"mikanto/internal/services"
)

const maxBodyBytes = 32 << 20

// Options configures a Client.
type Options struct {
	UserAgent string
	// Proxies maps a URL scheme ("http", "https") to a proxy URL.
	Proxies map[string]string
	Timeout time.Duration
}

// Client issues GET requests with a fixed user agent and per-scheme proxies.
type Client struct {
	http      *http.Client
	userAgent string
}

// OptionsFromConfig builds client options from the [http] settings, letting
// the subscription file's proxy map override the per-scheme entries.
func OptionsFromConfig(cfg *config.Config, overrides map[string]string) Options {
	opts := Options{Proxies: map[string]string{}}
	if cfg != nil {
		opts.UserAgent = cfg.HTTP.UserAgent
		if cfg.HTTP.HTTPProxy != "" {
			opts.Proxies["http"] = cfg.HTTP.HTTPProxy
		}
		if cfg.HTTP.HTTPSProxy != "" {
			opts.Proxies["https"] = cfg.HTTP.HTTPSProxy
		}
		if cfg.HTTP.TimeoutSeconds > 0 {
			opts.Timeout = time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
		}
	}
	for scheme, proxy := range overrides {
		scheme = strings.ToLower(strings.TrimSpace(scheme))
		if scheme == "" {
			continue
		}
		if proxy = strings.TrimSpace(proxy); proxy == "" {
			delete(opts.Proxies, scheme)
			continue
		}
		opts.Proxies[scheme] = proxy
	}
	return opts
}

// New constructs a Client. Proxy URLs that fail to parse are rejected.
func New(opts Options) (*Client, error) {
	proxies := make(map[string]*url.URL, len(opts.Proxies))
	for scheme, raw := range opts.Proxies {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			return nil, services.Wrap(services.ErrConfiguration, "fetch", "proxy", fmt.Sprintf("invalid %s proxy %q", scheme, raw), err)
		}
		proxies[strings.ToLower(scheme)] = parsed
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		return proxies[req.URL.Scheme], nil
	}
	return &Client{
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		userAgent: strings.TrimSpace(opts.UserAgent),
	}, nil
}

// Get fetches target and returns the body. Transport failures, non-2xx
// statuses and oversized bodies are reported as transient errors.
func (c *Client) Get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "fetch", "build request", target, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "get", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrTransient, "fetch", "get", fmt.Sprintf("%s: status %d", target, resp.StatusCode), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "read body", target, err)
	}
	if len(body) > maxBodyBytes {
		return nil, services.Wrap(services.ErrTransient, "fetch", "read body", fmt.Sprintf("%s: body exceeds %d bytes", target, maxBodyBytes), nil)
	}
	return body, nil
}
