// Package counts keeps the per-skill rule counts quoted in summary documents
// (a README table, an agents tree) in step with the rule files on disk.
package counts

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"github.com/sirupsen/logrus"

	"github.com/skilldocs/skillcheck/pkg/logger"
)

// CategoryPlaceholder is replaced by the quoted category name in target patterns
const CategoryPlaceholder = "{category}"

// Counter reports how many rule documents a skill category holds. ok is
// false when the category has no rules directory.
type Counter interface {
	RuleCount(category string) (count int, ok bool, err error)
}

// Target is a document patched with rule counts. Pattern holds two capture
// groups around the number to replace.
type Target struct {
	Path    string
	Name    string
	Pattern string
}

// Result describes what happened to one target document
type Result struct {
	Path    string
	Found   bool
	Changed bool
	// Updates lists "[<name>] Updated <category> count to <n>" lines
	Updates []string
	// Diff is the unified diff of the change, set in dry-run mode
	Diff string
}

// Syncer patches target documents with current rule counts
type Syncer struct {
	counter Counter
	targets []Target
	dryRun  bool
}

// Option configures a Syncer
type Option func(*Syncer)

// WithDryRun computes diffs without writing any document
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) {
		s.dryRun = dryRun
	}
}

// NewSyncer validates the targets and creates a Syncer
func NewSyncer(counter Counter, targets []Target, opts ...Option) (*Syncer, error) {
	if counter == nil {
		return nil, errors.New("a rule counter is required")
	}
	for _, target := range targets {
		if target.Path == "" {
			return nil, errors.New("count target path must not be empty")
		}
		if !strings.Contains(target.Pattern, CategoryPlaceholder) {
			return nil, errors.Errorf("count pattern for %s must contain %s", target.Path, CategoryPlaceholder)
		}
		if _, err := compile(target.Pattern, "x"); err != nil {
			return nil, errors.Wrapf(err, "invalid count pattern for %s", target.Path)
		}
	}

	s := &Syncer{
		counter: counter,
		targets: targets,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sync updates every target for the given categories, in order
func (s *Syncer) Sync(ctx context.Context, categories []string) ([]Result, error) {
	counts, err := s.collect(categories)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(s.targets))
	for _, target := range s.targets {
		result, err := s.syncTarget(ctx, target, categories, counts)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// collect reads each category count once so every document agrees
func (s *Syncer) collect(categories []string) (map[string]int, error) {
	counts := make(map[string]int, len(categories))
	for _, category := range categories {
		count, ok, err := s.counter.RuleCount(category)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count rules for %s", category)
		}
		if ok {
			counts[category] = count
		}
	}
	return counts, nil
}

func (s *Syncer) syncTarget(ctx context.Context, target Target, categories []string, counts map[string]int) (Result, error) {
	log := logger.G(ctx).WithFields(logrus.Fields{"document": target.Path, "dry_run": s.dryRun})
	result := Result{Path: target.Path}

	if _, err := os.Stat(target.Path); err != nil {
		if os.IsNotExist(err) {
			log.Debug("count target not found")
			return result, nil
		}
		return result, errors.Wrapf(err, "failed to stat %s", target.Path)
	}
	result.Found = true

	data, err := lockedfile.Read(target.Path)
	if err != nil {
		return result, errors.Wrapf(err, "failed to read %s", target.Path)
	}
	content := string(data)

	updated, updates, err := Apply(content, target, categories, counts)
	if err != nil {
		return result, err
	}
	result.Updates = updates
	if updated == content {
		log.Debug("count target already up to date")
		return result, nil
	}
	result.Changed = true

	if s.dryRun {
		result.Diff = udiff.Unified(target.Path, target.Path, content, updated)
		return result, nil
	}

	err = lockedfile.Transform(target.Path, func(current []byte) ([]byte, error) {
		next, _, err := Apply(string(current), target, categories, counts)
		if err != nil {
			return nil, err
		}
		return []byte(next), nil
	})
	if err != nil {
		return result, errors.Wrapf(err, "failed to update %s", target.Path)
	}

	log.WithField("updates", len(updates)).Info("count target updated")
	return result, nil
}

// Apply replaces the count captured by target.Pattern for each category
// with a known count. Every occurrence is replaced. The returned update
// lines name the categories whose text actually changed.
func Apply(content string, target Target, categories []string, counts map[string]int) (string, []string, error) {
	var updates []string
	for _, category := range categories {
		count, ok := counts[category]
		if !ok {
			continue
		}

		re, err := compile(target.Pattern, category)
		if err != nil {
			return content, updates, errors.Wrapf(err, "invalid count pattern for %s", target.Path)
		}
		if !re.MatchString(content) {
			continue
		}

		next := re.ReplaceAllString(content, "${1}"+strconv.Itoa(count)+"${2}")
		if next != content {
			content = next
			updates = append(updates, fmt.Sprintf("[%s] Updated %s count to %d", target.Name, category, count))
		}
	}
	return content, updates, nil
}

func compile(pattern, category string) (*regexp.Regexp, error) {
	return regexp.Compile(strings.ReplaceAll(pattern, CategoryPlaceholder, regexp.QuoteMeta(category)))
}
