package main

import (
	"github.com/spf13/cobra"

	"github.com/skilldocs/skillcheck/pkg/presenter"
	"github.com/skilldocs/skillcheck/pkg/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate skill descriptors and rule documents",
	Long: `Run both validation phases over the skills root:

  1. Referential integrity: every rule file is linked from its SKILL.md and
     every rule linked from SKILL.md exists.
  2. Frontmatter and structure: every rule document has the required
     frontmatter fields with valid values and a description after its title.

Exits with status 1 if any violation is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		discovery, err := newDiscovery(cfg)
		if err != nil {
			return err
		}

		report := validation.New(discovery, presenter.Default()).Run(cmd.Context())
		if !report.Passed() {
			return errValidationFailed
		}
		return nil
	},
}
