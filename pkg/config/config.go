// Package config loads skillcheck settings from flags, environment and an
// optional YAML file through viper.
package config

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by skillcheck
const EnvPrefix = "SKILLCHECK"

// Config holds all settings for a run
type Config struct {
	Root       string   `mapstructure:"root"`
	Descriptor string   `mapstructure:"descriptor"`
	RulesDir   string   `mapstructure:"rules_dir"`
	RuleExt    string   `mapstructure:"rule_ext"`
	Ignore     []string `mapstructure:"ignore"`
	Skills     []string `mapstructure:"skills"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Color     string `mapstructure:"color"`
	Quiet     bool   `mapstructure:"quiet"`

	Counts  CountsConfig  `mapstructure:"counts"`
	Tracing TracingConfig `mapstructure:"tracing"`

	Profile  string                    `mapstructure:"profile"`
	Profiles map[string]map[string]any `mapstructure:"profiles"`
}

// CountsConfig configures the rule count synchronisation
type CountsConfig struct {
	// Categories lists the skill directories whose counts are published.
	// Empty means every discovered skill.
	Categories []string         `mapstructure:"categories"`
	Documents  []DocumentConfig `mapstructure:"documents"`
}

// DocumentConfig describes one document patched with rule counts. Pattern
// must contain {category} and two capture groups surrounding the count.
type DocumentConfig struct {
	Path    string `mapstructure:"path"`
	Name    string `mapstructure:"name"`
	Pattern string `mapstructure:"pattern"`
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Sampler string  `mapstructure:"sampler"`
	Ratio   float64 `mapstructure:"ratio"`
}

// DefaultDocuments mirrors the README table and the AGENTS tree comments
var DefaultDocuments = []DocumentConfig{
	{
		Path:    "README.md",
		Name:    "README",
		Pattern: `(\|\s+\[.*?\]\(skills/{category}/SKILL\.md\)\s+\|\s+\*\*)\d+(\*\*\s+\|)`,
	},
	{
		Path:    "AGENTS.md",
		Name:    "AGENTS",
		Pattern: `({category}/.*?# )\d+( rules)`,
	},
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", "skills")
	v.SetDefault("descriptor", "SKILL.md")
	v.SetDefault("rules_dir", "rules")
	v.SetDefault("rule_ext", ".md")
	v.SetDefault("ignore", []string{})
	v.SetDefault("skills", []string{})
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "fmt")
	v.SetDefault("color", "auto")
	v.SetDefault("quiet", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampler", "ratio")
	v.SetDefault("tracing.ratio", 1.0)
}

// Init configures v to read SKILLCHECK_* variables and an optional
// .skillcheck.yaml from the working directory or $HOME/.skillcheck/config.yaml.
// A missing file is not an error; a malformed one is.
func Init(v *viper.Viper) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(".skillcheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.skillcheck")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// Load unmarshals v into a Config, applies the selected profile and fills
// in defaults that cannot be expressed as viper defaults
func Load(v *viper.Viper) (Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if cfg.Profile != "" {
		// viper lowercases map keys read from files and Set
		profile, ok := cfg.Profiles[strings.ToLower(cfg.Profile)]
		if !ok {
			return cfg, errors.Errorf("profile '%s' not found in configuration", cfg.Profile)
		}
		if err := applyProfile(&cfg, profile); err != nil {
			return cfg, err
		}
	}

	if len(cfg.Counts.Documents) == 0 {
		cfg.Counts.Documents = append([]DocumentConfig(nil), DefaultDocuments...)
	}

	return cfg, nil
}

// applyProfile decodes profile on top of cfg. Keys absent from the profile
// keep their current values.
func applyProfile(cfg *Config, profile map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}

	if err := decoder.Decode(profile); err != nil {
		return errors.Wrap(err, "failed to apply profile configuration")
	}
	return nil
}
