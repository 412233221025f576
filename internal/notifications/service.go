package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mikanto/internal/config"
)

const (
	userAgent       = "mikanto/0.1"
	defaultNtfyHost = "https://ntfy.sh/"
	// maxListedTitles bounds the titles written into a single notification.
	maxListedTitles = 10
)

// Service is the notification surface used by the pipeline and CLI.
type Service interface {
	NotifyNewReleases(ctx context.Context, titles []string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op one when the topic is
// empty. A bare topic name is published to ntfy.sh.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	if !strings.Contains(topic, "://") {
		topic = defaultNtfyHost + strings.TrimLeft(topic, "/")
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		newReleases: cfg.Notifications.NewReleases,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	newReleases bool
	errors      bool
}

func (n *ntfyService) NotifyNewReleases(ctx context.Context, titles []string) error {
	if !n.newReleases || len(titles) == 0 {
		return nil
	}
	var b strings.Builder
	for i, title := range titles {
		if i == maxListedTitles {
			fmt.Fprintf(&b, "... and %d more", len(titles)-maxListedTitles)
			break
		}
		b.WriteString(strings.TrimSpace(title))
		b.WriteByte('\n')
	}
	heading := "1 new release"
	if len(titles) != 1 {
		heading = fmt.Sprintf("%d new releases", len(titles))
	}
	return n.send(ctx, payload{
		title:   "mikanto - " + heading,
		message: strings.TrimRight(b.String(), "\n"),
		tags:    []string{"mikanto", "new"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var b strings.Builder
	b.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		b.WriteString(" during ")
		b.WriteString(contextLabel)
	}
	b.WriteString(": ")
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "mikanto - Error",
		message:  b.String(),
		tags:     []string{"mikanto", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "mikanto - Test",
		message:  "Notification system test",
		tags:     []string{"mikanto", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyNewReleases(context.Context, []string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error  { return nil }
func (noopService) TestNotification(context.Context) error            { return nil }
