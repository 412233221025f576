package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateAria2(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.MaxEntries < 0 {
		return errors.New("history.max_entries must be zero (auto) or positive")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	for key, value := range map[string]string{
		"http.http_proxy":  c.HTTP.HTTPProxy,
		"http.https_proxy": c.HTTP.HTTPSProxy,
	} {
		if value == "" {
			continue
		}
		if _, err := url.Parse(value); err != nil {
			return fmt.Errorf("%s: invalid proxy url: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validateAria2() error {
	if c.Aria2.Port <= 0 || c.Aria2.Port > 65535 {
		return fmt.Errorf("aria2.port must be between 1 and 65535, got %d", c.Aria2.Port)
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Target == "" {
		return nil
	}
	parsed, err := url.Parse(c.Sync.Target)
	if err != nil {
		return fmt.Errorf("sync.target: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "sftp", "ftp", "ftps":
	default:
		return fmt.Errorf("sync.target: unsupported scheme %q (expected sftp, ftp or ftps)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("sync.target: host is required")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
