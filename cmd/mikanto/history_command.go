package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mikanto/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently processed titles, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := history.Open(cfg.Paths.HistoryFile, 0).Entries(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "History is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for i, title := range entries {
				rows = append(rows, []string{strconv.Itoa(i + 1), title})
			}
			renderRows(out, []string{"#", "Title"}, rows, []columnAlignment{alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	return cmd
}
