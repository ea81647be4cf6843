package skills

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/skilldocs/skillcheck/pkg/walker"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const (
	// DefaultRoot is the conventional directory holding one subdirectory per skill
	DefaultRoot = "skills"
	// DefaultDescriptorName is the conventional skill descriptor file name
	DefaultDescriptorName = "SKILL.md"
	// DefaultRulesDirName is the conventional rules subdirectory name
	DefaultRulesDirName = "rules"
	// DefaultRuleExt is the rule document extension
	DefaultRuleExt = ".md"
)

// Discovery finds skill descriptors beneath a root directory
type Discovery struct {
	root           string
	descriptorName string
	rulesDirName   string
	ruleExt        string
	ignore         []string
	filter         *NameFilter
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithRoot sets the directory searched for skill descriptors
func WithRoot(root string) Option {
	return func(d *Discovery) error {
		if root == "" {
			return errors.New("skills root must not be empty")
		}
		d.root = root
		return nil
	}
}

// WithLayout overrides the descriptor file name, rules directory name and
// rule document extension. Empty values keep the defaults.
func WithLayout(descriptorName, rulesDirName, ruleExt string) Option {
	return func(d *Discovery) error {
		if descriptorName != "" {
			d.descriptorName = descriptorName
		}
		if rulesDirName != "" {
			d.rulesDirName = rulesDirName
		}
		if ruleExt != "" {
			d.ruleExt = ruleExt
		}
		return nil
	}
}

// WithIgnore excludes root-relative paths matching the doublestar patterns
func WithIgnore(patterns ...string) Option {
	return func(d *Discovery) error {
		d.ignore = append(d.ignore, patterns...)
		return nil
	}
}

// WithNameFilter restricts discovery to skills whose directory name matches
// one of the glob patterns. No patterns selects every skill.
func WithNameFilter(patterns ...string) Option {
	return func(d *Discovery) error {
		filter, err := NewNameFilter(patterns...)
		if err != nil {
			return err
		}
		d.filter = filter
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{
		root:           DefaultRoot,
		descriptorName: DefaultDescriptorName,
		rulesDirName:   DefaultRulesDirName,
		ruleExt:        DefaultRuleExt,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.filter == nil {
		d.filter = &NameFilter{}
	}

	return d, nil
}

// Root returns the directory searched for skills
func (d *Discovery) Root() string { return d.root }

// DescriptorName returns the skill descriptor file name
func (d *Discovery) DescriptorName() string { return d.descriptorName }

// RulesDirName returns the name of the rules subdirectory
func (d *Discovery) RulesDirName() string { return d.rulesDirName }

// RuleExt returns the rule document extension
func (d *Discovery) RuleExt() string { return d.ruleExt }

// Ignore returns the configured ignore patterns
func (d *Discovery) Ignore() []string { return d.ignore }

// Selected reports whether the skill named name passes the name filter
func (d *Discovery) Selected(name string) bool {
	return d.filter.Match(name)
}

// DescriptorPaths returns every descriptor path under the root, sorted
func (d *Discovery) DescriptorPaths() ([]string, error) {
	return walker.Walk(d.root, walker.NameEquals(d.descriptorName), walker.WithIgnore(d.ignore...))
}

// DiscoverSkills finds all selected skills under the root, in path order.
// Descriptors that cannot be read still yield a Skill; their read error is
// returned alongside so the caller can report it.
func (d *Discovery) DiscoverSkills() ([]*Skill, error) {
	paths, walkErr := d.DescriptorPaths()

	skills := make([]*Skill, 0, len(paths))
	for _, path := range paths {
		skill := d.newSkill(path)
		if !d.Selected(skill.Name) {
			continue
		}
		if md, err := loadMetadata(path); err == nil {
			skill.Title = md.Name
			skill.Description = md.Description
		}
		skills = append(skills, skill)
	}

	return skills, walkErr
}

// GetSkill returns a specific skill by directory name
func (d *Discovery) GetSkill(name string) (*Skill, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	for _, skill := range skills {
		if skill.Name == name {
			return skill, nil
		}
	}

	return nil, errors.Errorf("skill '%s' not found", name)
}

// ListSkillNames returns the names of all selected skills
func (d *Discovery) ListSkillNames() ([]string, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(skills))
	for _, skill := range skills {
		names = append(names, skill.Name)
	}

	return names, nil
}

// RuleCount returns the number of rule documents directly under
// <root>/<category>/<rules>. ok is false when that directory does not exist.
func (d *Discovery) RuleCount(category string) (count int, ok bool, err error) {
	files, exists, err := ListRuleFiles(filepath.Join(d.root, category, d.rulesDirName), d.ruleExt)
	if err != nil || !exists {
		return 0, exists, err
	}
	return len(files), true, nil
}

// SkillForRule returns the directory name of the skill owning a rule
// document, i.e. the parent of the nearest rules directory in its path
func (d *Discovery) SkillForRule(rulePath string) string {
	dir := filepath.Dir(rulePath)
	for dir != "." && dir != string(filepath.Separator) {
		if filepath.Base(dir) == d.rulesDirName {
			return filepath.Base(filepath.Dir(dir))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func (d *Discovery) newSkill(descriptorPath string) *Skill {
	dir := filepath.Dir(descriptorPath)
	return &Skill{
		Name:           filepath.Base(dir),
		Directory:      dir,
		DescriptorPath: descriptorPath,
		RulesDir:       filepath.Join(dir, d.rulesDirName),
	}
}

// loadMetadata reads the descriptor frontmatter. It is informational only;
// the referential checks work on the raw descriptor text.
func loadMetadata(path string) (*Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse frontmatter")
	}
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	return &Metadata{
		Name:        name,
		Description: description,
	}, nil
}
