package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skilldocs/skillcheck/pkg/skills"
)

// OutputFormat defines the format of the output
type OutputFormat string

const (
	TableFormat OutputFormat = "table"
	JSONFormat  OutputFormat = "json"
	YAMLFormat  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --format value
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch format := OutputFormat(value); format {
	case TableFormat, JSONFormat, YAMLFormat:
		return format, nil
	default:
		return "", errors.Errorf("unsupported format '%s', must be one of: table, json, yaml", value)
	}
}

// SkillOutput is one listed skill
type SkillOutput struct {
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Rules       int    `json:"rules" yaml:"rules"`
	HasRules    bool   `json:"has_rules" yaml:"has_rules"`
	Directory   string `json:"directory" yaml:"directory"`
}

// SkillListOutput represents the output of the list command
type SkillListOutput struct {
	Skills []SkillOutput
	Format OutputFormat
}

// Counter reports rule counts per skill category
type Counter interface {
	RuleCount(category string) (count int, ok bool, err error)
}

// NewSkillListOutput creates a SkillListOutput, counting the rules of each skill
func NewSkillListOutput(found []*skills.Skill, counter Counter, format OutputFormat) (*SkillListOutput, error) {
	output := &SkillListOutput{
		Skills: make([]SkillOutput, 0, len(found)),
		Format: format,
	}

	for _, skill := range found {
		count, ok, err := counter.RuleCount(skill.Name)
		if err != nil {
			return nil, err
		}
		output.Skills = append(output.Skills, SkillOutput{
			Name:        skill.Name,
			Title:       skill.Title,
			Description: skill.Description,
			Rules:       count,
			HasRules:    ok,
			Directory:   skill.Directory,
		})
	}

	return output, nil
}

// Render formats and renders the skill list to the specified writer
func (o *SkillListOutput) Render(w io.Writer) error {
	switch o.Format {
	case JSONFormat:
		return o.renderJSON(w)
	case YAMLFormat:
		return o.renderYAML(w)
	default:
		return o.renderTable(w)
	}
}

func (o *SkillListOutput) renderJSON(w io.Writer) error {
	type jsonOutput struct {
		Skills []SkillOutput `json:"skills"`
	}

	jsonData, err := json.MarshalIndent(jsonOutput{Skills: o.Skills}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func (o *SkillListOutput) renderYAML(w io.Writer) error {
	type yamlOutput struct {
		Skills []SkillOutput `yaml:"skills"`
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(yamlOutput{Skills: o.Skills}); err != nil {
		return errors.Wrap(err, "error generating YAML output")
	}
	return encoder.Close()
}

func (o *SkillListOutput) renderTable(w io.Writer) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "TITLE", "RULES", "DIRECTORY").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, skill := range o.Skills {
		rules := strconv.Itoa(skill.Rules)
		if !skill.HasRules {
			rules = "-"
		}
		title := skill.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		t.Row(skill.Name, title, rules, skill.Directory)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered skills and their rule counts",
	Long:  `List every skill found under the skills root with its descriptor title, rule count and directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := ParseOutputFormat(formatFlag)
		if err != nil {
			return err
		}

		discovery, err := newDiscovery(cfg)
		if err != nil {
			return err
		}

		found, err := discovery.DiscoverSkills()
		if err != nil {
			return errors.Wrap(err, "failed to discover skills")
		}

		output, err := NewSkillListOutput(found, discovery, format)
		if err != nil {
			return err
		}
		return output.Render(os.Stdout)
	},
}

func init() {
	listCmd.Flags().StringP("format", "o", string(TableFormat), "Output format (table, json, yaml)")
}
