package main

import (
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"mikanto/internal/preflight"
)

func TestCheckKind(t *testing.T) {
	tests := []struct {
		name   string
		result preflight.Result
		want   statusKind
	}{
		{"passed", preflight.Result{Passed: true}, statusOK},
		{"skipped", preflight.Result{Skipped: true}, statusInfo},
		{"optional failure", preflight.Result{Optional: true}, statusWarn},
		{"required failure", preflight.Result{}, statusError},
	}
	for _, tc := range tests {
		if got := checkKind(tc.result); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRenderStatusLinePlain(t *testing.T) {
	got := renderStatusLine("aria2", statusWarn, "connection refused", false)
	want := "  aria2:             [WARN] connection refused"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := renderStatusLine("LLM", statusInfo, "", false); !strings.HasSuffix(got, "[INFO]") {
		t.Fatalf("expected bare tag, got %q", got)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	text.EnableColors()
	got := renderStatusLine("History", statusError, "missing", true)
	if !strings.HasPrefix(got, "\x1b[") || !strings.Contains(got, "[ERROR] missing") {
		t.Fatalf("expected colored error line, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("  mikanto status ", false)
	if len(lines) != 2 || lines[0] != "== mikanto status ==" || lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected header %q", lines)
	}
}
