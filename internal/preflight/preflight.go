package preflight

import (
	"context"
	"path/filepath"

	"mikanto/internal/config"
)

// Result reports the outcome of a single preflight check. A failed Optional
// check only matters for some invocations (aria2 without --aria2) and is
// shown as a warning.
type Result struct {
	Name     string
	Passed   bool
	Skipped  bool
	Optional bool
	Detail   string
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Artifact directory", cfg.TorrentDir()),
		CheckDirectoryAccess("History directory", filepath.Dir(cfg.Paths.HistoryFile)),
	}

	subsResult, list := CheckSubscriptions(cfg.Paths.SubscriptionsFile)
	results = append(results, subsResult)

	aria2Settings := cfg.Aria2
	if list != nil && list.Aria2 != nil {
		aria2Settings = list.Aria2.Settings(cfg.Aria2)
	}
	results = append(results,
		CheckAria2(ctx, aria2Settings),
		CheckSyncTarget(ctx, cfg.Sync),
	)

	if cfg.LLM.APIKey == "" {
		results = append(results, Result{Name: "LLM", Passed: true, Skipped: true, Detail: "API key not set (subs edit unavailable)"})
	} else {
		results = append(results, CheckLLM(ctx, "LLM", cfg.GetLLM()))
	}
	return results
}
