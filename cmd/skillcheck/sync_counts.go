package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilldocs/skillcheck/pkg/config"
	"github.com/skilldocs/skillcheck/pkg/counts"
	"github.com/skilldocs/skillcheck/pkg/presenter"
)

// SyncCountsConfig holds configuration for the sync-counts command
type SyncCountsConfig struct {
	DryRun     bool
	Categories []string
}

// NewSyncCountsConfig creates a new SyncCountsConfig with default values
func NewSyncCountsConfig() *SyncCountsConfig {
	return &SyncCountsConfig{
		DryRun:     false,
		Categories: nil,
	}
}

var syncCountsCmd = &cobra.Command{
	Use:   "sync-counts",
	Short: "Update rule counts quoted in summary documents",
	Long: `Count the rule documents of each skill and patch the numbers quoted in
summary documents such as the README skill table and the AGENTS tree.

The documents and their patterns come from the counts.documents setting and
default to README.md and AGENTS.md.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		syncConfig := getSyncCountsConfigFromFlags(cmd)

		discovery, err := newDiscovery(cfg)
		if err != nil {
			return err
		}

		categories := syncConfig.Categories
		if len(categories) == 0 {
			categories = cfg.Counts.Categories
		}
		if len(categories) == 0 {
			if categories, err = discovery.ListSkillNames(); err != nil {
				return err
			}
		}

		syncer, err := counts.NewSyncer(discovery, countTargets(cfg.Counts.Documents), counts.WithDryRun(syncConfig.DryRun))
		if err != nil {
			return err
		}

		results, err := syncer.Sync(cmd.Context(), categories)
		if err != nil {
			return err
		}

		reportSyncResults(results, syncConfig.DryRun)
		return nil
	},
}

func init() {
	defaults := NewSyncCountsConfig()
	syncCountsCmd.Flags().Bool("dry-run", defaults.DryRun, "Print a diff of the changes without writing them")
	syncCountsCmd.Flags().StringSlice("category", defaults.Categories, "Skill categories to update (default: every discovered skill)")
}

// getSyncCountsConfigFromFlags extracts sync-counts configuration from command flags
func getSyncCountsConfigFromFlags(cmd *cobra.Command) *SyncCountsConfig {
	syncConfig := NewSyncCountsConfig()

	if dryRun, err := cmd.Flags().GetBool("dry-run"); err == nil {
		syncConfig.DryRun = dryRun
	}
	if categories, err := cmd.Flags().GetStringSlice("category"); err == nil {
		syncConfig.Categories = categories
	}

	return syncConfig
}

func countTargets(documents []config.DocumentConfig) []counts.Target {
	targets := make([]counts.Target, 0, len(documents))
	for _, doc := range documents {
		targets = append(targets, counts.Target{Path: doc.Path, Name: doc.Name, Pattern: doc.Pattern})
	}
	return targets
}

func reportSyncResults(results []counts.Result, dryRun bool) {
	for _, result := range results {
		switch {
		case !result.Found:
			presenter.Warning(fmt.Sprintf("%s not found.", result.Path))
		case !result.Changed:
			presenter.Info(fmt.Sprintf("No changes needed in %s.", result.Path))
		default:
			for _, update := range result.Updates {
				presenter.Info(update)
			}
			if dryRun {
				presenter.Info(result.Diff)
				presenter.Info(fmt.Sprintf("%s would be updated (dry run).", result.Path))
			} else {
				presenter.Success(fmt.Sprintf("%s updated successfully.", result.Path))
			}
		}
	}
}
