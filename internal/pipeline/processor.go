package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"mikanto/internal/artifact"
	"mikanto/internal/dispatch"
	"mikanto/internal/feed"
	"mikanto/internal/logging"
	"mikanto/internal/services"
	"mikanto/internal/subscriptions"
	"mikanto/internal/textutil"
)

// Processor turns one subscription into newly saved torrents.
type Processor struct {
	client     artifact.Getter
	fetcher    *artifact.Fetcher
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewProcessor wires the feed client, fetcher, and dispatcher. A nil
// dispatcher disables agent submission.
func NewProcessor(client artifact.Getter, fetcher *artifact.Fetcher, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *Processor {
	return &Processor{
		client:     client,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		logger:     logging.NewComponentLogger(logger, "processor"),
	}
}

// Process returns the titles newly handled for sub, in feed order. Titles in
// seen are skipped; seen itself is not modified. Any failure before the
// entry loop yields an empty result.
func (p *Processor) Process(ctx context.Context, sub subscriptions.Subscription, seen map[string]struct{}) []string {
	logger := logging.WithContext(ctx, p.logger)

	var rule *regexp.Regexp
	if pattern := sub.Rule; pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			logger.Error("invalid title rule; subscription skipped",
				logging.String("rule", pattern),
				logging.Error(err),
			)
			return nil
		}
		rule = compiled
	}

	data, err := p.client.Get(services.WithStage(ctx, "feed"), sub.URL)
	if err != nil {
		logger.Error("feed request failed", logging.String("url", sub.URL), logging.Error(err))
		return nil
	}
	parsed, err := feed.Parse(data)
	if err != nil {
		logger.Error("feed parse failed", logging.String("url", sub.URL), logging.Error(err))
		return nil
	}

	saveDir := ResolveSaveDir(sub.SaveDir, parsed.Title)
	if saveDir == "" {
		logger.Error("save directory unresolved; subscription skipped",
			logging.String("url", sub.URL),
			logging.String("feed_title", parsed.Title),
		)
		return nil
	}

	var found []string
	cache := make(map[string]struct{})
	for _, item := range parsed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		if rule != nil && !rule.MatchString(title) {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		if _, ok := cache[title]; ok {
			continue
		}
		if item.TorrentURL == "" {
			continue
		}

		logger.Info("new episode found", logging.String("title", title), logging.String("savedir", saveDir))
		localPath, ok := p.fetcher.Fetch(services.WithStage(ctx, "artifact"), item.TorrentURL, saveDir, title)
		if !ok {
			continue
		}
		if p.dispatcher.Enabled() {
			p.dispatcher.Submit(services.WithStage(ctx, "dispatch"), item.TorrentURL, localPath, saveDir)
		}
		cache[title] = struct{}{}
		found = append(found, title)
	}
	return found
}

// ResolveSaveDir returns the explicit savedir, or one derived from the feed
// channel title.
func ResolveSaveDir(explicit, feedTitle string) string {
	if dir := strings.TrimSpace(explicit); dir != "" {
		return dir
	}
	return textutil.SaveDirFromFeedTitle(feedTitle)
}
