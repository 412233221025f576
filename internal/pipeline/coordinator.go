package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"mikanto/internal/history"
	"mikanto/internal/logging"
	"mikanto/internal/notifications"
	"mikanto/internal/remotesync"
	"mikanto/internal/services"
	"mikanto/internal/subscriptions"
)

// Result summarizes one run.
type Result struct {
	RunID string
	// New holds the discovered titles in discovery order.
	New []string
	// Subscriptions counts the subscriptions that were polled.
	Subscriptions int
	Synced        bool
}

// Coordinator runs every enabled subscription once.
type Coordinator struct {
	subs         []subscriptions.Subscription
	history      *history.Store
	processor    *Processor
	syncer       remotesync.Syncer
	artifactRoot string
	notifier     notifications.Service
	logger       *slog.Logger
}

// CoordinatorOption configures optional collaborators.
type CoordinatorOption func(*Coordinator)

// WithSyncer mirrors artifactRoot through syncer after a run with new items.
func WithSyncer(syncer remotesync.Syncer, artifactRoot string) CoordinatorOption {
	return func(c *Coordinator) {
		c.syncer = syncer
		c.artifactRoot = artifactRoot
	}
}

// WithNotifier sets the notification service.
func WithNotifier(notifier notifications.Service) CoordinatorOption {
	return func(c *Coordinator) { c.notifier = notifier }
}

// NewCoordinator constructs a coordinator over subs.
func NewCoordinator(subs []subscriptions.Subscription, store *history.Store, processor *Processor, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		subs:      subs,
		history:   store,
		processor: processor,
		syncer:    remotesync.Noop{},
		notifier:  notifications.NewService(nil),
		logger:    logging.NewComponentLogger(logger, "coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls the subscriptions sequentially. Only history read and write
// failures are returned; everything else is logged and skipped.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("subscriptions", len(c.subs)),
	)

	seen, err := c.history.Load()
	if err != nil {
		return result, err
	}

	for _, sub := range c.subs {
		if ctx.Err() != nil {
			logger.Warn("run interrupted; remaining subscriptions skipped", logging.Error(ctx.Err()))
			break
		}
		if !sub.Enabled() || strings.TrimSpace(sub.URL) == "" {
			continue
		}
		result.Subscriptions++
		subCtx := services.WithSubscription(ctx, subscriptionLabel(sub))
		found := c.processor.Process(subCtx, sub, seen)
		for _, title := range found {
			seen[title] = struct{}{}
		}
		result.New = append(result.New, found...)
	}

	if len(result.New) == 0 {
		logger.Info("no new updates", logging.String(logging.FieldEventType, "run_idle"))
		return result, nil
	}
	logger.Info("new items discovered",
		logging.String(logging.FieldEventType, "run_new_items"),
		logging.Int("count", len(result.New)),
	)

	newestFirst := slices.Clone(result.New)
	slices.Reverse(newestFirst)
	if err := c.history.AppendBounded(newestFirst); err != nil {
		return result, err
	}

	result.Synced = c.sync(services.WithStage(ctx, "sync"), logger)

	if err := c.notifier.NotifyNewReleases(ctx, result.New); err != nil {
		logger.Warn("new release notification failed", logging.Error(err))
	}
	return result, nil
}

func (c *Coordinator) sync(ctx context.Context, logger *slog.Logger) bool {
	if remotesync.IsNoop(c.syncer) {
		return false
	}
	logger.Info("syncing artifact tree", logging.String("target", c.syncer.Target()))
	if err := c.syncer.Sync(ctx, c.artifactRoot); err != nil {
		err = services.Wrap(services.ErrTransient, "coordinator", "sync", c.syncer.Target(), err)
		logging.WarnWithHint(logger, "remote sync failed", "sync_failed",
			"check sync.target credentials and reachability; the next run with new items retries",
			logging.Error(err),
		)
		if notifyErr := c.notifier.NotifyError(ctx, err, "remote sync"); notifyErr != nil {
			logger.Debug("error notification failed", logging.Error(notifyErr))
		}
		return false
	}
	logger.Info("remote sync complete", logging.String("target", c.syncer.Target()))
	return true
}

func subscriptionLabel(sub subscriptions.Subscription) string {
	if title := strings.TrimSpace(sub.Title); title != "" {
		return title
	}
	return sub.URL
}
