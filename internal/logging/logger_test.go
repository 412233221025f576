package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mikanto/internal/config"
	"mikanto/internal/logging"
	"mikanto/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Format: format, Level: level, OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return logger, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		return string(data)
	}
}

func TestConsoleLinePrefixesComponentAndSubscription(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")

	ctx := services.WithSubscription(context.Background(), "Show S02")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline")).
		Info("torrent saved", slog.String("path", "/tmp/a b.torrent"), slog.Int("count", 2))

	out := read()
	if !strings.Contains(out, " INFO pipeline: [Show S02] torrent saved") {
		t.Fatalf("unexpected prefix: %q", out)
	}
	if !strings.Contains(out, `path="/tmp/a b.torrent"`) {
		t.Fatalf("expected quoted path: %q", out)
	}
	if !strings.Contains(out, "count=2") {
		t.Fatalf("expected count attribute: %q", out)
	}
	if strings.Contains(out, "component=") || strings.Contains(out, "subscription=") {
		t.Fatalf("prefix attributes should not repeat as key/value: %q", out)
	}
}

func TestConsoleRespectsLevel(t *testing.T) {
	logger, read := newFileLogger(t, "console", "warn")
	logger.Info("quiet")
	logger.Warn("loud", logging.Error(errors.New("boom")))

	out := read()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN loud error=boom") {
		t.Fatalf("expected warn line, got %q", out)
	}
}

func TestConsoleGroupsFlattenKeys(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	logger.WithGroup("aria2").Info("submitted", slog.String("gid", "abc"))

	if out := read(); !strings.Contains(out, "aria2.gid=abc") {
		t.Fatalf("expected grouped key, got %q", out)
	}
}

func TestJSONFormatCarriesContextFields(t *testing.T) {
	logger, read := newFileLogger(t, "json", "info")

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithStage(ctx, "dispatch")
	logging.WithContext(ctx, logger).Info("done")

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if payload[logging.FieldRunID] != "run-1" || payload[logging.FieldStage] != "dispatch" {
		t.Fatalf("missing context fields: %v", payload)
	}
	if payload["level"] != "info" || payload["msg"] != "done" {
		t.Fatalf("unexpected level/msg: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key: %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Error("written to file")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("unexpected log file contents: %q", data)
	}
}

func TestWarnWithHintAddsFields(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")
	logging.WarnWithHint(logger, "feed skipped", "feed_fetch_failed", "check proxy settings")

	out := read()
	if !strings.Contains(out, "event_type=feed_fetch_failed") || !strings.Contains(out, `error_hint="check proxy settings"`) {
		t.Fatalf("missing hint fields: %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "x")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
