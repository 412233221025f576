package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv overlays recognized environment variables on top of file values.
// A set variable always wins over the TOML value.
func (c *Config) applyEnv() error {
	stringOverrides := []struct {
		name   string
		target *string
	}{
		{"MTA_CONFIGPATH", &c.Paths.SubscriptionsFile},
		{"MTA_HISTORY_FILE", &c.Paths.HistoryFile},
		{"MTA_TORRENTS_DIR", &c.Paths.ArtifactRoot},
		{"MTA_LOG_DIR", &c.Paths.LogDir},
		{"MTA_USER_AGENT", &c.HTTP.UserAgent},
		{"HTTP_PROXY", &c.HTTP.HTTPProxy},
		{"HTTPS_PROXY", &c.HTTP.HTTPSProxy},
		{"MTA_ARIA2_HOST", &c.Aria2.Host},
		{"MTA_ARIA2_SECRET", &c.Aria2.Secret},
		{"MTA_SYNC_TARGET", &c.Sync.Target},
		{"MTA_SYNC_SSH_KEY", &c.Sync.SSHKeyPath},
		{"API_KEY", &c.LLM.APIKey},
		{"MTA_LLM_BASE_URL", &c.LLM.BaseURL},
		{"MTA_LLM_MODEL", &c.LLM.Model},
		{"MTA_NTFY_TOPIC", &c.Notifications.NtfyTopic},
		{"MTA_LOG_LEVEL", &c.Logging.Level},
	}
	for _, o := range stringOverrides {
		if value, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}

	intOverrides := []struct {
		name   string
		target *int
	}{
		{"MTA_MAX_HISTORY", &c.History.MaxEntries},
		{"MTA_ARIA2_PORT", &c.Aria2.Port},
	}
	for _, o := range intOverrides {
		value, ok := os.LookupEnv(o.name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", o.name, value)
		}
		*o.target = parsed
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeHTTP()
	c.normalizeAria2()
	if err := c.normalizeSync(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SubscriptionsFile) == "" {
		c.Paths.SubscriptionsFile = defaultSubscriptionsFile
	}
	if c.Paths.SubscriptionsFile, err = expandPath(c.Paths.SubscriptionsFile); err != nil {
		return fmt.Errorf("paths.subscriptions_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryFile) == "" {
		c.Paths.HistoryFile = defaultHistoryFile
	}
	if c.Paths.HistoryFile, err = expandPath(c.Paths.HistoryFile); err != nil {
		return fmt.Errorf("paths.history_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.ArtifactRoot) == "" {
		c.Paths.ArtifactRoot = defaultArtifactRoot
	}
	if c.Paths.ArtifactRoot, err = expandPath(c.Paths.ArtifactRoot); err != nil {
		return fmt.Errorf("paths.artifact_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHTTP() {
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
	c.HTTP.HTTPProxy = strings.TrimSpace(c.HTTP.HTTPProxy)
	c.HTTP.HTTPSProxy = strings.TrimSpace(c.HTTP.HTTPSProxy)
	if c.HTTP.TimeoutSeconds < 0 {
		c.HTTP.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeAria2() {
	c.Aria2.Host = strings.TrimSpace(c.Aria2.Host)
	if c.Aria2.Host == "" {
		c.Aria2.Host = defaultAria2Host
	}
	if c.Aria2.Port == 0 {
		c.Aria2.Port = defaultAria2Port
	}
	c.Aria2.Secret = strings.TrimSpace(c.Aria2.Secret)
}

func (c *Config) normalizeSync() error {
	var err error
	c.Sync.Target = strings.TrimSpace(c.Sync.Target)
	if c.Sync.SSHKeyPath, err = expandPath(strings.TrimSpace(c.Sync.SSHKeyPath)); err != nil {
		return fmt.Errorf("sync.ssh_key_path: %w", err)
	}
	if strings.TrimSpace(c.Sync.KnownHostsPath) == "" {
		c.Sync.KnownHostsPath = defaultKnownHostsRelative
	}
	if c.Sync.KnownHostsPath, err = expandPath(c.Sync.KnownHostsPath); err != nil {
		return fmt.Errorf("sync.known_hosts_path: %w", err)
	}
	if c.Sync.TimeoutSeconds <= 0 {
		c.Sync.TimeoutSeconds = defaultSyncTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
