package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mikanto/internal/artifact"
	"mikanto/internal/config"
	"mikanto/internal/dispatch"
	"mikanto/internal/fetch"
	"mikanto/internal/history"
	"mikanto/internal/logging"
	"mikanto/internal/notifications"
	"mikanto/internal/pipeline"
	"mikanto/internal/remotesync"
	"mikanto/internal/runlock"
	"mikanto/internal/services"
	"mikanto/internal/services/aria2"
	"mikanto/internal/subscriptions"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var useAria2 bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll every enabled subscription once",
		Long: `Fetch each enabled subscription feed, save new torrents under
<artifact_root>/torrents/<savedir>, record their titles in the history file,
and mirror the artifact tree to sync.target when anything new was found.

With --aria2 every saved torrent is also submitted to aria2.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			notifier := notifications.NewService(cfg)
			result, err := runOnce(runCtx, cfg, logger, notifier, useAria2)
			if err != nil {
				if !services.IsFatal(err) {
					return err
				}
				message, hint := fatalRunSummary(result)
				logging.WarnWithHint(logger, message, "run_aborted", hint, logging.Error(err))
				if notifyErr := notifier.NotifyError(runCtx, err, "mikanto run"); notifyErr != nil {
					logger.Debug("error notification failed", logging.Error(notifyErr))
				}
				return err
			}
			printRunSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useAria2, "aria2", false, "Submit new torrents to aria2")
	return cmd
}

// runOnce wires the collaborators for a single pass. Configuration problems
// are returned before any feed is requested.
func runOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier notifications.Service, useAria2 bool) (pipeline.Result, error) {
	list, err := subscriptions.Load(cfg.Paths.SubscriptionsFile)
	if err != nil {
		return pipeline.Result{}, err
	}
	if len(list.Mikan) == 0 {
		logger.Warn("subscription file has no \"mikan\" entries", logging.String("path", cfg.Paths.SubscriptionsFile))
	}

	lock, err := runlock.Acquire(cfg.Paths.HistoryFile)
	if err != nil {
		return pipeline.Result{}, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("run lock release failed", logging.Error(err))
		}
	}()

	client, err := fetch.New(fetch.OptionsFromConfig(cfg, list.Proxy))
	if err != nil {
		return pipeline.Result{}, err
	}

	var agent dispatch.Agent
	if useAria2 {
		settings := cfg.Aria2
		if list.Aria2 != nil {
			settings = list.Aria2.Settings(cfg.Aria2)
		}
		rpc, err := aria2.Connect(ctx, aria2.Config{Endpoint: settings.Endpoint(), Secret: settings.Secret})
		if err != nil {
			return pipeline.Result{}, err
		}
		defer rpc.Close()
		logger.Info("aria2 connected",
			logging.String("endpoint", settings.Endpoint()),
			logging.String("dir", rpc.BaseDir()),
		)
		agent = rpc
	}

	syncer, err := remotesync.New(cfg, logger)
	if err != nil {
		return pipeline.Result{}, err
	}

	store := history.Open(cfg.Paths.HistoryFile, cfg.HistoryCapacity(list.EnabledCount()))
	fetcher := artifact.New(client, cfg.TorrentDir(), logger)
	processor := pipeline.NewProcessor(client, fetcher, dispatch.New(agent, logger), logger)
	coordinator := pipeline.NewCoordinator(list.Mikan, store, processor, logger,
		pipeline.WithSyncer(syncer, cfg.Paths.ArtifactRoot),
		pipeline.WithNotifier(notifier),
	)
	return coordinator.Run(ctx)
}

// fatalRunSummary describes a fatal run error. Saved items mean the feeds
// were already polled and only the history write failed.
func fatalRunSummary(result pipeline.Result) (message, hint string) {
	if len(result.New) > 0 {
		return fmt.Sprintf("history not updated after saving %d new item(s)", len(result.New)),
			"fix the history file location; unrecorded items are fetched again on the next run"
	}
	return "run aborted before polling", "fix the settings or subscription file and rerun"
}

func printRunSummary(out io.Writer, result pipeline.Result) {
	if len(result.New) == 0 {
		fmt.Fprintf(out, "No new updates (%d subscriptions checked)\n", result.Subscriptions)
		return
	}
	fmt.Fprintf(out, "%d new item(s) from %d subscriptions\n", len(result.New), result.Subscriptions)
	for _, title := range result.New {
		fmt.Fprintf(out, "  %s\n", title)
	}
	if result.Synced {
		fmt.Fprintln(out, "Artifact tree synced")
	}
}
