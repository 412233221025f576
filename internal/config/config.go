package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations used by a run.
type Paths struct {
	SubscriptionsFile string `toml:"subscriptions_file"`
	HistoryFile       string `toml:"history_file"`
	ArtifactRoot      string `toml:"artifact_root"`
	LogDir            string `toml:"log_dir"`
}

// History contains configuration for the bounded history log.
type History struct {
	// MaxEntries caps the history file. Zero derives the cap from the
	// number of enabled subscriptions.
	MaxEntries int `toml:"max_entries"`
}

// HTTP contains settings for the shared feed and torrent client.
type HTTP struct {
	UserAgent      string `toml:"user_agent"`
	HTTPProxy      string `toml:"http_proxy"`
	HTTPSProxy     string `toml:"https_proxy"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Aria2 contains connection settings for the aria2 JSON-RPC endpoint.
type Aria2 struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	Secret string `toml:"secret"`
}

// Sync contains the remote mirror target for the artifact tree.
type Sync struct {
	// Target is an sftp:// or ftp:// URL. Empty disables remote sync.
	Target         string `toml:"target"`
	SSHKeyPath     string `toml:"ssh_key_path"`
	KnownHostsPath string `toml:"known_hosts_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains the chat-completion settings used by the subscription editor.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	NewReleases    bool   `toml:"new_releases"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mikanto.
//
// Configuration sections by subsystem:
//   - Paths: subscription list, history log, artifact root, log dir
//   - History: history size cap
//   - HTTP: proxy and user agent for feed/torrent fetches
//   - Aria2: external download agent endpoint
//   - Sync: remote mirror of the artifact tree
//   - LLM: chat-completion endpoint for natural-language subscription edits
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//
// Every value may be overridden by its documented environment variable.
type Config struct {
	Paths         Paths         `toml:"paths"`
	History       History       `toml:"history"`
	HTTP          HTTP          `toml:"http"`
	Aria2         Aria2         `toml:"aria2"`
	Sync          Sync          `toml:"sync"`
	LLM           LLM           `toml:"llm"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mikanto/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: defaults and environment overrides still apply. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mikanto.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// TorrentDir returns the directory that holds downloaded torrent files.
func (c *Config) TorrentDir() string {
	return filepath.Join(c.Paths.ArtifactRoot, "torrents")
}

// EnsureDirectories creates the torrent tree and the history parent directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.TorrentDir(), filepath.Dir(c.Paths.HistoryFile)}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Endpoint returns the JSON-RPC URL for the aria2 instance. Hosts written
// with a scheme ("https://nas") keep it; bare hosts get http.
func (a Aria2) Endpoint() string {
	host := strings.TrimRight(strings.TrimSpace(a.Host), "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return fmt.Sprintf("%s:%d/jsonrpc", host, a.Port)
}

// Aria2Endpoint returns the JSON-RPC URL for the configured aria2 instance.
func (c *Config) Aria2Endpoint() string {
	return c.Aria2.Endpoint()
}

// LLMConfig contains the LLM settings used by the subscription editor.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
