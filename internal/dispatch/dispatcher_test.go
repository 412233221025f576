package dispatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mikanto/internal/dispatch"
	"mikanto/internal/logging"
)

type call struct {
	kind   string
	target string
	dir    string
}

type fakeAgent struct {
	base  string
	err   error
	calls []call
}

func (f *fakeAgent) AddTorrent(_ context.Context, path string, opts dispatch.Options) (string, error) {
	f.calls = append(f.calls, call{kind: "torrent", target: path, dir: opts.Dir})
	return "gid-1", f.err
}

func (f *fakeAgent) AddURI(_ context.Context, uri string, opts dispatch.Options) (string, error) {
	f.calls = append(f.calls, call{kind: "uri", target: uri, dir: opts.Dir})
	return "gid-2", f.err
}

func (f *fakeAgent) BaseDir() string { return f.base }

func TestSubmitPrefersLocalFile(t *testing.T) {
	local := filepath.Join(t.TempDir(), "ep.torrent")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	agent := &fakeAgent{base: "/downloads"}
	d := dispatch.New(agent, logging.NewNop())

	d.Submit(context.Background(), "https://mikan.example/ep.torrent", local, "Show")

	if len(agent.calls) != 1 {
		t.Fatalf("expected one call, got %v", agent.calls)
	}
	got := agent.calls[0]
	if got.kind != "torrent" || got.target != local {
		t.Fatalf("expected local torrent submission, got %+v", got)
	}
	if got.dir != "/downloads/Show" {
		t.Fatalf("unexpected dir %q", got.dir)
	}
}

func TestSubmitFallsBackToURL(t *testing.T) {
	agent := &fakeAgent{base: "/downloads/"}
	d := dispatch.New(agent, logging.NewNop())

	d.Submit(context.Background(), "https://mikan.example/ep.torrent", filepath.Join(t.TempDir(), "missing.torrent"), "Show")

	if len(agent.calls) != 1 || agent.calls[0].kind != "uri" {
		t.Fatalf("expected url submission, got %v", agent.calls)
	}
	if agent.calls[0].dir != "/downloads/Show" {
		t.Fatalf("unexpected dir %q", agent.calls[0].dir)
	}
}

func TestSubmitSwallowsAgentErrors(t *testing.T) {
	agent := &fakeAgent{base: "/d", err: errors.New("rpc down")}
	d := dispatch.New(agent, logging.NewNop())
	d.Submit(context.Background(), "u", "", "S")
	if len(agent.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(agent.calls))
	}
}

func TestDisabledDispatcherIsNoop(t *testing.T) {
	d := dispatch.New(nil, logging.NewNop())
	if d.Enabled() {
		t.Fatal("dispatcher without agent should be disabled")
	}
	d.Submit(context.Background(), "u", "p", "S")
}
