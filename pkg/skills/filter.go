package skills

import (
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// NameFilter selects skills by directory name using glob patterns such as
// "nextdns-*". The zero value selects every skill.
type NameFilter struct {
	patterns []glob.Glob
	raw      []string
}

// NewNameFilter compiles the given patterns
func NewNameFilter(patterns ...string) (*NameFilter, error) {
	f := &NameFilter{}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid skill pattern '%s'", pattern)
		}
		f.patterns = append(f.patterns, g)
		f.raw = append(f.raw, pattern)
	}
	return f, nil
}

// Match reports whether name is selected
func (f *NameFilter) Match(name string) bool {
	if f == nil || len(f.patterns) == 0 {
		return true
	}
	for _, g := range f.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns
func (f *NameFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return f.raw
}
