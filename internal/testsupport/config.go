package testsupport

import (
	"path/filepath"
	"testing"

	"mikanto/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SubscriptionsFile = filepath.Join(base, "bangumi_config", "config.json")
	cfgVal.Paths.HistoryFile = filepath.Join(base, "bangumi_config", "history.txt")
	cfgVal.Paths.ArtifactRoot = filepath.Join(base, "bangumi")
	cfgVal.Paths.LogDir = ""
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.Sync.Target = ""
	cfgVal.Sync.KnownHostsPath = filepath.Join(base, "known_hosts")
	cfgVal.LLM.APIKey = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMaxHistory pins the history cap.
func WithMaxHistory(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.MaxEntries = n
	}
}

// WithAria2 points the aria2 settings at host:port.
func WithAria2(host string, port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Aria2.Host = host
		b.cfg.Aria2.Port = port
	}
}

// WithNtfyTopic sets the notification endpoint, typically an httptest URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithLLM points the subscription editor at baseURL with a test key.
func WithLLM(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = "test"
		b.cfg.LLM.BaseURL = baseURL
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ArtifactRoot)
}
