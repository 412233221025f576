package remotesync

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"mikanto/internal/logging"
)

type memRemote struct {
	files map[string][]byte
	dirs  map[string]bool
}

func newMemRemote() *memRemote {
	return &memRemote{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (m *memRemote) Size(p string) (int64, bool, error) {
	data, ok := m.files[p]
	return int64(len(data)), ok, nil
}

func (m *memRemote) MkdirAll(dir string) error {
	m.dirs[dir] = true
	return nil
}

func (m *memRemote) Upload(p string, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.files[p] = buf.Bytes()
	return nil
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMirrorUploadsMissingAndChangedFiles(t *testing.T) {
	local := t.TempDir()
	writeTree(t, local, map[string]string{
		"torrents/Show/ep1.torrent": "aaaa",
		"torrents/Show/ep2.torrent": "bbbb",
		"torrents/Other/x.torrent":  "cc",
	})
	remote := newMemRemote()
	remote.files["/bangumi/torrents/Show/ep1.torrent"] = []byte("AAAA")
	remote.files["/bangumi/torrents/Other/x.torrent"] = []byte("c")

	stats, err := mirror(context.Background(), local, "/bangumi", remote, logging.NewNop())
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if stats.Uploaded != 2 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if string(remote.files["/bangumi/torrents/Show/ep2.torrent"]) != "bbbb" {
		t.Fatal("missing file was not uploaded")
	}
	if string(remote.files["/bangumi/torrents/Other/x.torrent"]) != "cc" {
		t.Fatal("size-changed file was not replaced")
	}
	if string(remote.files["/bangumi/torrents/Show/ep1.torrent"]) != "AAAA" {
		t.Fatal("same-size file should be left alone")
	}
	if !remote.dirs["/bangumi/torrents/Show"] {
		t.Fatalf("expected remote directory creation, got %v", remote.dirs)
	}
}

func TestMirrorStopsOnCancelledContext(t *testing.T) {
	local := t.TempDir()
	writeTree(t, local, map[string]string{"a.torrent": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mirror(ctx, local, "/r", newMemRemote(), logging.NewNop()); err == nil {
		t.Fatal("expected context error")
	}
}

type recordingFTP struct {
	made   []string
	stored map[string]string
}

func (r *recordingFTP) FileSize(string) (int64, error) { return 0, os.ErrNotExist }

func (r *recordingFTP) MakeDir(p string) error {
	r.made = append(r.made, p)
	return nil
}

func (r *recordingFTP) Stor(p string, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	if r.stored == nil {
		r.stored = map[string]string{}
	}
	r.stored[p] = string(data)
	return nil
}

func TestFTPRemoteCreatesEachSegment(t *testing.T) {
	conn := &recordingFTP{}
	local := t.TempDir()
	writeTree(t, local, map[string]string{"torrents/S/e.torrent": "data"})

	stats, err := mirror(context.Background(), local, "/share/bangumi", &ftpRemote{conn: conn}, logging.NewNop())
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if stats.Uploaded != 1 {
		t.Fatalf("expected one upload, got %+v", stats)
	}
	want := []string{"/share", "/share/bangumi", "/share/bangumi/torrents", "/share/bangumi/torrents/S"}
	if len(conn.made) != len(want) {
		t.Fatalf("MakeDir calls = %v, want %v", conn.made, want)
	}
	for i := range want {
		if conn.made[i] != want[i] {
			t.Fatalf("MakeDir calls = %v, want %v", conn.made, want)
		}
	}
	if conn.stored["/share/bangumi/torrents/S/e.torrent"] != "data" {
		t.Fatalf("unexpected stored files %v", conn.stored)
	}
}
