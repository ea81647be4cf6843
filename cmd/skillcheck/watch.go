package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skilldocs/skillcheck/pkg/logger"
	"github.com/skilldocs/skillcheck/pkg/presenter"
	"github.com/skilldocs/skillcheck/pkg/validation"
	"github.com/skilldocs/skillcheck/pkg/watch"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	DebounceTime int
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceTime: int(watch.DefaultDebounce / time.Millisecond),
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run validation whenever rule documents change",
	Long: `Validate once, then keep watching the skills root and validate again
after every burst of changes to descriptors or rule documents.

Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		watchConfig := getWatchConfigFromFlags(cmd)

		discovery, err := newDiscovery(cfg)
		if err != nil {
			return err
		}
		validator := validation.New(discovery, presenter.Default())

		run := func(ctx context.Context) {
			report := validator.Run(ctx)
			logger.G(ctx).WithField("run_id", report.RunID).Debug("watch run complete")
		}

		watcher, err := watch.New(watch.Config{
			Root:     discovery.Root(),
			Ext:      discovery.RuleExt(),
			Ignore:   discovery.Ignore(),
			Debounce: time.Duration(watchConfig.DebounceTime) * time.Millisecond,
		}, func(ctx context.Context, event watch.Event) {
			presenter.Info(fmt.Sprintf("\nChange detected: %s (%s)\n", event.Path, event.Op))
			run(ctx)
		})
		if err != nil {
			return err
		}

		run(ctx)
		presenter.Info("\nWatching for changes... Press Ctrl+C to stop")
		return watcher.Run(ctx)
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")
}

// getWatchConfigFromFlags extracts watch configuration from command flags
func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()

	if debounceTime, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounceTime
	}

	return config
}
