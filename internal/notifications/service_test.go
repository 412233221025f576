package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mikanto/internal/config"
	"mikanto/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyNewReleases(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("noop returned %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop returned %v", err)
	}
}

func TestNotifyNewReleasesListsTitles(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL + "/mikanto"

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyNewReleases(context.Background(), []string{"Show - 01", "Show - 02"}); err != nil {
		t.Fatalf("NotifyNewReleases: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected one request, got %d", len(*got))
	}
	req := (*got)[0]
	if req.title != "mikanto - 2 new releases" {
		t.Fatalf("unexpected title %q", req.title)
	}
	if req.body != "Show - 01\nShow - 02" {
		t.Fatalf("unexpected body %q", req.body)
	}
	if req.tags != "mikanto,new" {
		t.Fatalf("unexpected tags %q", req.tags)
	}
}

func TestNotifyNewReleasesTruncatesLongLists(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL

	titles := make([]string, 12)
	for i := range titles {
		titles[i] = "t"
	}
	if err := notifications.NewService(&cfg).NotifyNewReleases(context.Background(), titles); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix((*got)[0].body, "... and 2 more") {
		t.Fatalf("expected truncation marker, got %q", (*got)[0].body)
	}
}

func TestNotifyRespectsToggles(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.NewReleases = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	_ = svc.NotifyNewReleases(context.Background(), []string{"a"})
	_ = svc.NotifyError(context.Background(), errors.New("boom"), "run")
	if len(*got) != 0 {
		t.Fatalf("expected no requests, got %d", len(*got))
	}
}

func TestNotifyErrorHighPriority(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL

	if err := notifications.NewService(&cfg).NotifyError(context.Background(), errors.New("history write failed"), "run"); err != nil {
		t.Fatal(err)
	}
	req := (*got)[0]
	if req.priority != "high" || req.body != "Error during run: history write failed" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL

	if err := notifications.NewService(&cfg).TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403")
	}
}
