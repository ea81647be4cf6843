package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skilldocs/skillcheck/pkg/config"
	"github.com/skilldocs/skillcheck/pkg/logger"
	"github.com/skilldocs/skillcheck/pkg/presenter"
	"github.com/skilldocs/skillcheck/pkg/skills"
)

// errValidationFailed signals a completed run that found problems. It has
// already been reported, so main only turns it into the exit status.
var errValidationFailed = errors.New("validation failed")

var (
	cfg             config.Config
	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "skillcheck",
	Short: "Check skill documentation for consistency",
	Long: `skillcheck verifies that every skill descriptor (SKILL.md) and the rule
documents in its rules directory reference each other, and that every rule
document carries well-formed frontmatter and a description after its title.

Running skillcheck without a subcommand is the same as "skillcheck validate".`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateCmd.RunE(cmd, args)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("root", skills.DefaultRoot, "Directory containing one subdirectory per skill")
	flags.String("descriptor", skills.DefaultDescriptorName, "Skill descriptor file name")
	flags.String("rules-dir", skills.DefaultRulesDirName, "Name of the rules directory inside each skill")
	flags.String("rule-ext", skills.DefaultRuleExt, "Rule document extension")
	flags.StringSlice("ignore", nil, "Root-relative path globs to skip (doublestar syntax)")
	flags.StringSlice("skills", nil, "Only check skills whose directory name matches one of these globs")
	flags.String("log-level", logger.DefaultLevel, "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", "fmt", "Log format (fmt, text, json)")
	flags.String("color", "auto", "Color output (auto, always, never)")
	flags.BoolP("quiet", "q", false, "Only print violations and the verdict")
	flags.String("profile", "", "Configuration profile to apply")

	viper.BindPFlag("root", flags.Lookup("root"))
	viper.BindPFlag("descriptor", flags.Lookup("descriptor"))
	viper.BindPFlag("rules_dir", flags.Lookup("rules-dir"))
	viper.BindPFlag("rule_ext", flags.Lookup("rule-ext"))
	viper.BindPFlag("ignore", flags.Lookup("ignore"))
	viper.BindPFlag("skills", flags.Lookup("skills"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("color", flags.Lookup("color"))
	viper.BindPFlag("quiet", flags.Lookup("quiet"))
	viper.BindPFlag("profile", flags.Lookup("profile"))

	rootCmd.AddCommand(withTracing(validateCmd))
	rootCmd.AddCommand(withTracing(syncCountsCmd))
	rootCmd.AddCommand(withTracing(listCmd))
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and configures logging, output and tracing
// before any command runs
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(viper.GetViper()); err != nil {
		return err
	}

	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded

	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	presenter.SetColorMode(presenter.ParseColorMode(cfg.Color))
	presenter.SetQuiet(cfg.Quiet)

	shutdown, err := initTracing(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to initialize tracing")
	}
	shutdownTracing = shutdown

	if used := viper.ConfigFileUsed(); used != "" {
		logger.G(cmd.Context()).WithField("config_file", used).Debug("configuration loaded")
	}
	return nil
}

// newDiscovery builds skill discovery from the loaded configuration
func newDiscovery(c config.Config) (*skills.Discovery, error) {
	return skills.NewDiscovery(
		skills.WithRoot(c.Root),
		skills.WithLayout(c.Descriptor, c.RulesDir, c.RuleExt),
		skills.WithIgnore(c.Ignore...),
		skills.WithNameFilter(c.Skills...),
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if shutdownErr := shutdownTracing(context.Background()); shutdownErr != nil {
		logger.G(context.Background()).WithError(shutdownErr).Warn("failed to flush traces")
	}

	if err != nil {
		if !errors.Is(err, errValidationFailed) {
			presenter.Error(err, "")
		}
		os.Exit(1)
	}
}
