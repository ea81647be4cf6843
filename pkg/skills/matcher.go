package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/skilldocs/skillcheck/pkg/types/findings"
)

// Check is the outcome of one referential check on one item: a rule file
// for the unregistered-rule check, a link target for the missing-reference
// check. Err is nil when the item passed.
type Check struct {
	Item string
	Err  *findings.ValidationError
}

// Passed reports whether the item passed
func (c Check) Passed() bool {
	return c.Err == nil
}

// Errors returns the violations among checks, in order
func Errors(checks []Check) []findings.ValidationError {
	var errs []findings.ValidationError
	for _, c := range checks {
		if c.Err != nil {
			errs = append(errs, *c.Err)
		}
	}
	return errs
}

// Exists reports whether a path is present on the host file system
type Exists func(path string) bool

// PathExists is the default Exists, backed by os.Stat
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListRuleFiles returns the names of the rule documents directly inside
// rulesDir, sorted. exists is false when rulesDir is absent or not a
// directory, in which case there is nothing to check.
func ListRuleFiles(rulesDir, ext string) (names []string, exists bool, err error) {
	info, err := os.Stat(rulesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "failed to stat %s", rulesDir)
	}
	if !info.IsDir() {
		return nil, false, nil
	}

	entries, err := os.ReadDir(rulesDir)
	if err != nil {
		return nil, true, errors.Wrapf(err, "failed to read rules directory %s", rulesDir)
	}

	names = make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, true, nil
}

// UnregisteredRules checks that every rule file is linked from the
// descriptor as the literal substring "(rules/<file>)". Links written any
// other way are not recognised.
func UnregisteredRules(descriptorPath, content string, ruleFiles []string) []Check {
	return UnregisteredRulesIn(descriptorPath, DefaultRulesDirName, content, ruleFiles)
}

// UnregisteredRulesIn is UnregisteredRules for a rules directory with a
// non-default name
func UnregisteredRulesIn(descriptorPath, rulesDirName, content string, ruleFiles []string) []Check {
	checks := make([]Check, 0, len(ruleFiles))
	for _, file := range ruleFiles {
		check := Check{Item: file}
		if !strings.Contains(content, "("+rulesDirName+"/"+file+")") {
			err := findings.New(findings.KindUnregistered, descriptorPath,
				fmt.Sprintf("Rule '%s' exists but is not registered in %s", file, descriptorPath))
			check.Err = &err
		}
		checks = append(checks, check)
	}
	return checks
}

// referencePattern matches markdown links such as [Title](rules/name.md)
// and captures the path after the rules directory
func referencePattern(rulesDirName, ext string) *regexp.Regexp {
	return regexp.MustCompile(`\[.*?\]\(` + regexp.QuoteMeta(rulesDirName) + `/(.*?` + regexp.QuoteMeta(ext) + `)\)`)
}

var defaultReferencePattern = referencePattern(DefaultRulesDirName, DefaultRuleExt)

// ExtractReferences returns every rule reference in the descriptor text, in
// order and without deduplication
func ExtractReferences(content string) []string {
	return extractReferences(defaultReferencePattern, content)
}

func extractReferences(pattern *regexp.Regexp, content string) []string {
	matches := pattern.FindAllStringSubmatch(content, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}

// MissingReferences checks that every rule referenced by the descriptor
// resolves to a file under rulesDir
func MissingReferences(descriptorPath, rulesDir, content string, exists Exists) []Check {
	return missingReferences(defaultReferencePattern, descriptorPath, rulesDir, content, exists)
}

// MissingReferencesIn is MissingReferences for a non-default rules
// directory name or rule extension
func MissingReferencesIn(descriptorPath, rulesDir, rulesDirName, ext, content string, exists Exists) []Check {
	return missingReferences(referencePattern(rulesDirName, ext), descriptorPath, rulesDir, content, exists)
}

func missingReferences(pattern *regexp.Regexp, descriptorPath, rulesDir, content string, exists Exists) []Check {
	if exists == nil {
		exists = PathExists
	}

	refs := extractReferences(pattern, content)
	checks := make([]Check, 0, len(refs))
	for _, ref := range refs {
		check := Check{Item: ref}
		rulePath := filepath.Join(rulesDir, ref)
		if !exists(rulePath) {
			err := findings.New(findings.KindMissingReference, descriptorPath,
				fmt.Sprintf("Rule referenced in %s does not exist: %s", descriptorPath, rulePath))
			check.Err = &err
		}
		checks = append(checks, check)
	}
	return checks
}
