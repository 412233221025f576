package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mikanto/internal/config"
	"mikanto/internal/services"
	"mikanto/internal/services/llm"
	"mikanto/internal/subscriptions"
)

func newSubsCommand(ctx *commandContext) *cobra.Command {
	subsCmd := &cobra.Command{
		Use:   "subs",
		Short: "Inspect and edit the subscription file",
	}
	subsCmd.AddCommand(newSubsListCommand(ctx))
	subsCmd.AddCommand(newSubsEditCommand(ctx))
	return subsCmd
}

func newSubsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			list, err := subscriptions.Load(cfg.Paths.SubscriptionsFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list.Mikan) == 0 {
				fmt.Fprintln(out, "No subscriptions")
				return nil
			}
			rows := make([][]string, 0, len(list.Mikan))
			for _, sub := range list.Mikan {
				rows = append(rows, []string{sub.Title, yesNo(sub.Enabled()), sub.SaveDir, sub.Rule, sub.URL})
			}
			renderRows(out, []string{"Title", "Enabled", "Savedir", "Rule", "URL"}, rows, nil)
			return nil
		},
	}
}

func newSubsEditCommand(ctx *commandContext) *cobra.Command {
	var prompt string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Add or update a subscription from a natural-language request",
		Example: `  mikanto subs edit --prompt "subscribe to Frieren, rss https://mikanani.me/RSS/Bangumi?bangumiId=3141, only 1080p"
  mikanto subs edit --prompt "pause Frieren" --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			request := strings.TrimSpace(prompt)
			if request == "" {
				request = strings.TrimSpace(strings.Join(args, " "))
			}
			if request == "" {
				return services.Wrap(services.ErrValidation, "subs", "edit", "a request is required (--prompt)", nil)
			}
			return editSubscriptions(cmd.Context(), cmd.OutOrStdout(), cfg, request, dryRun)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Natural-language description of the change")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the extracted edit without writing the file")
	return cmd
}

func editSubscriptions(ctx context.Context, out io.Writer, cfg *config.Config, request string, dryRun bool) error {
	llmCfg := cfg.GetLLM()
	if llmCfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "subs", "edit", "llm.api_key (or API_KEY) is required", nil)
	}
	list, err := subscriptions.LoadOrEmpty(cfg.Paths.SubscriptionsFile)
	if err != nil {
		return err
	}

	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
	record := client.ExtractSubscriptionEdit(ctx, request)

	encoded, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode edit: %w", err)
	}
	fmt.Fprintf(out, "Extracted edit:\n%s\n", encoded)

	result, err := subscriptions.ApplyEdit(list, record)
	if err != nil {
		return err
	}
	switch {
	case result.Created:
		fmt.Fprintf(out, "New subscription %q\n", result.Title)
	case len(result.Changed) == 0:
		fmt.Fprintf(out, "Subscription %q unchanged\n", result.Title)
	default:
		fmt.Fprintf(out, "Updated %q: %s\n", result.Title, strings.Join(result.Changed, ", "))
	}
	if dryRun {
		fmt.Fprintln(out, "Dry run; subscription file not written")
		return nil
	}
	if err := subscriptions.Save(cfg.Paths.SubscriptionsFile, list); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", cfg.Paths.SubscriptionsFile)
	return nil
}
