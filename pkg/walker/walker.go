// Package walker enumerates files beneath a directory tree in a pinned,
// lexical order so that every report built on top of it is reproducible.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Predicate decides whether a file path (as produced by filepath.Join on the
// walk root) is part of the result
type Predicate func(path string, entry fs.DirEntry) bool

// Option configures a walk
type Option func(*walkConfig) error

type walkConfig struct {
	ignore []string
}

// WithIgnore excludes root-relative slash paths matching any of the given
// doublestar patterns. Matching directories are not descended into.
func WithIgnore(patterns ...string) Option {
	return func(c *walkConfig) error {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("invalid ignore pattern '%s'", pattern)
			}
		}
		c.ignore = append(c.ignore, patterns...)
		return nil
	}
}

// Walk returns every file under root accepted by match, sorted. A root that
// does not exist yields an empty result. Directories that cannot be read are
// skipped and reported in the returned error, together with the paths that
// were found elsewhere in the tree.
func Walk(root string, match Predicate, opts ...Option) ([]string, error) {
	cfg := &walkConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, "failed to stat %s", root)
	}

	var (
		results []string
		faults  *multierror.Error
	)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			faults = multierror.Append(faults, errors.Wrapf(err, "failed to read %s", path))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && cfg.ignored(root, path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if match == nil || match(path, d) {
			results = append(results, path)
		}
		return nil
	})
	if walkErr != nil {
		faults = multierror.Append(faults, errors.Wrapf(walkErr, "failed to walk %s", root))
	}

	sort.Strings(results)
	if results == nil {
		results = []string{}
	}
	return results, faults.ErrorOrNil()
}

func (c *walkConfig) ignored(root, path string) bool {
	return IsIgnored(root, path, c.ignore)
}

// IsIgnored reports whether path, made relative to root, matches any of the
// doublestar patterns
func IsIgnored(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Dirs returns root and every directory beneath it that is not ignored,
// sorted. A root that does not exist yields an empty result.
func Dirs(root string, opts ...Option) ([]string, error) {
	cfg := &walkConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return []string{}, nil
	}

	dirs := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && cfg.ignored(root, path) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(dirs)
	return dirs, nil
}

// NameEquals accepts files whose base name is exactly name
func NameEquals(name string) Predicate {
	return func(_ string, entry fs.DirEntry) bool {
		return entry.Name() == name
	}
}

// HasExt accepts files whose name ends with ext
func HasExt(ext string) Predicate {
	return func(_ string, entry fs.DirEntry) bool {
		return strings.HasSuffix(entry.Name(), ext)
	}
}

// UnderSegment accepts files whose path contains segment as a whole
// directory component, e.g. "rules" matches skills/a/rules/x.md
func UnderSegment(segment string) Predicate {
	needle := string(filepath.Separator) + segment + string(filepath.Separator)
	return func(path string, _ fs.DirEntry) bool {
		return strings.Contains(path, needle)
	}
}

// All accepts files that every predicate accepts
func All(preds ...Predicate) Predicate {
	return func(path string, entry fs.DirEntry) bool {
		for _, p := range preds {
			if !p(path, entry) {
				return false
			}
		}
		return true
	}
}
