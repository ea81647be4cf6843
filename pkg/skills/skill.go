// Package skills discovers skill directories and checks the referential
// integrity between each skill descriptor (SKILL.md) and the rule documents
// stored in its rules directory.
package skills

// Skill represents a discovered skill directory
type Skill struct {
	Name           string // Directory name, used as the skill category
	Title          string // name from the descriptor frontmatter, if any
	Description    string // description from the descriptor frontmatter, if any
	Directory      string // Path to the skill directory
	DescriptorPath string // Path to the SKILL.md file
	RulesDir       string // Path to the co-located rules directory
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}
