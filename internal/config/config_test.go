package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mikanto/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"MTA_CONFIGPATH", "MTA_HISTORY_FILE", "MTA_TORRENTS_DIR", "MTA_LOG_DIR",
		"MTA_MAX_HISTORY", "MTA_USER_AGENT", "HTTP_PROXY", "HTTPS_PROXY",
		"MTA_ARIA2_HOST", "MTA_ARIA2_PORT", "MTA_ARIA2_SECRET", "MTA_SYNC_TARGET",
		"MTA_SYNC_SSH_KEY", "API_KEY", "MTA_LLM_BASE_URL", "MTA_LLM_MODEL",
		"MTA_NTFY_TOPIC", "MTA_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Paths.HistoryFile) {
		t.Fatalf("expected absolute history path, got %q", cfg.Paths.HistoryFile)
	}
	if !strings.HasSuffix(cfg.Paths.SubscriptionsFile, filepath.Join(".cache", "bangumi_config", "config.json")) {
		t.Fatalf("unexpected subscriptions path %q", cfg.Paths.SubscriptionsFile)
	}
	if cfg.Aria2.Host != "localhost" || cfg.Aria2.Port != 6800 {
		t.Fatalf("unexpected aria2 defaults: %+v", cfg.Aria2)
	}
	if cfg.HTTP.UserAgent == "" {
		t.Fatal("expected default user agent")
	}
	if cfg.Sync.Target != "" {
		t.Fatalf("expected sync disabled by default, got %q", cfg.Sync.Target)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mikanto.toml")

	type payload struct {
		Paths struct {
			HistoryFile string `toml:"history_file"`
		} `toml:"paths"`
		Aria2 struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		} `toml:"aria2"`
	}
	var custom payload
	custom.Paths.HistoryFile = filepath.Join(tempDir, "file-history.txt")
	custom.Aria2.Host = "file-host"
	custom.Aria2.Port = 7000
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	envHistory := filepath.Join(tempDir, "env-history.txt")
	t.Setenv("MTA_HISTORY_FILE", envHistory)
	t.Setenv("MTA_ARIA2_PORT", "6900")
	t.Setenv("MTA_MAX_HISTORY", "25")
	t.Setenv("HTTPS_PROXY", "http://127.0.0.1:7890")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected file %q to be used, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.HistoryFile != envHistory {
		t.Fatalf("expected env history path, got %q", cfg.Paths.HistoryFile)
	}
	if cfg.Aria2.Host != "file-host" {
		t.Fatalf("expected aria2 host from file, got %q", cfg.Aria2.Host)
	}
	if cfg.Aria2.Port != 6900 {
		t.Fatalf("expected aria2 port from env, got %d", cfg.Aria2.Port)
	}
	if cfg.History.MaxEntries != 25 {
		t.Fatalf("expected max history 25, got %d", cfg.History.MaxEntries)
	}
	if cfg.HTTP.HTTPSProxy != "http://127.0.0.1:7890" {
		t.Fatalf("unexpected https proxy %q", cfg.HTTP.HTTPSProxy)
	}
	if got := cfg.Aria2Endpoint(); got != "http://file-host:6900/jsonrpc" {
		t.Fatalf("unexpected aria2 endpoint %q", got)
	}
}

func TestLoadRejectsInvalidEnvInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MTA_MAX_HISTORY", "many")

	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected error for non-numeric MTA_MAX_HISTORY")
	}
}

func TestValidateSyncTarget(t *testing.T) {
	tests := []struct {
		target  string
		wantErr bool
	}{
		{target: "", wantErr: false},
		{target: "sftp://user@nas.local/bangumi", wantErr: false},
		{target: "ftp://user:pw@nas.local:2121/bangumi", wantErr: false},
		{target: "s3://bucket/path", wantErr: true},
		{target: "sftp:///missing-host", wantErr: true},
	}
	for _, tc := range tests {
		cfg := config.Default()
		cfg.Sync.Target = tc.target
		err := cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("target %q: wantErr=%v got %v", tc.target, tc.wantErr, err)
		}
	}
}

func TestHistoryCapacity(t *testing.T) {
	cfg := config.Default()
	if got := cfg.HistoryCapacity(0); got != 300 {
		t.Fatalf("expected floor of 300, got %d", got)
	}
	if got := cfg.HistoryCapacity(10); got != 480 {
		t.Fatalf("expected 48 per subscription, got %d", got)
	}
	cfg.History.MaxEntries = 12
	if got := cfg.HistoryCapacity(10); got != 12 {
		t.Fatalf("expected configured cap, got %d", got)
	}
}

func TestEnsureDirectoriesCreatesTorrentAndHistoryDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ArtifactRoot = filepath.Join(base, "bangumi")
	cfg.Paths.HistoryFile = filepath.Join(base, "state", "history.txt")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.TorrentDir(), filepath.Join(base, "state")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "mikanto.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.LLM.Model != config.Default().LLM.Model {
		t.Fatalf("unexpected sample model %q", cfg.LLM.Model)
	}
}

func TestAria2EndpointKeepsScheme(t *testing.T) {
	cases := map[string]string{
		"localhost":         "http://localhost:6800/jsonrpc",
		"https://nas.local": "https://nas.local:6800/jsonrpc",
		"http://10.0.0.2/":  "http://10.0.0.2:6800/jsonrpc",
	}
	for host, want := range cases {
		got := config.Aria2{Host: host, Port: 6800}.Endpoint()
		if got != want {
			t.Fatalf("Endpoint(%q) = %q, want %q", host, got, want)
		}
	}
}
