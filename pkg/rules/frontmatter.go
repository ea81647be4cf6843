// Package rules validates the shape of individual rule documents: the
// leading frontmatter block and the body that follows it.
//
// The frontmatter is never parsed as YAML. Checks are line patterns over the
// raw text, so values that are not quoted are accepted for tags even when
// they are not written as a list.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skilldocs/skillcheck/pkg/types/findings"
)

// Delimiter opens and closes the frontmatter block
const Delimiter = "---"

// RequiredFields are the keys every rule frontmatter must declare
var RequiredFields = []string{"title", "impact", "impactDescription", "type", "tags"}

var (
	// ImpactLevels are the accepted values of impact
	ImpactLevels = []string{"HIGH", "MEDIUM", "LOW"}
	// RuleTypes are the accepted values of type
	RuleTypes = []string{"capability", "efficiency"}
)

var (
	requiredFieldPatterns = compileFieldPatterns(RequiredFields)

	// \s* may cross a line break, so a value on an indented continuation
	// line is still read
	impactPattern     = regexp.MustCompile(`(?m)^impact:\s*(.*)$`)
	typePattern       = regexp.MustCompile(`(?m)^type:\s*(.*)$`)
	quotedTagsPattern = regexp.MustCompile(`(?m)^tags:\s*'.*'`)
)

func compileFieldPatterns(fields []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(fields))
	for _, field := range fields {
		patterns[field] = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(field) + `:`)
	}
	return patterns
}

// Document is a rule document split around its frontmatter delimiters
type Document struct {
	Path        string
	Frontmatter string
	Body        string
}

// Split separates content into frontmatter and body. Content must start
// with the delimiter; it is then cut at every delimiter occurrence and only
// the first three segments are kept, so the body ends at the next
// occurrence of the delimiter if there is one.
func Split(path, content string) (*Document, *findings.ValidationError) {
	if !strings.HasPrefix(content, Delimiter) {
		err := findings.New(findings.KindNoFrontmatter, path, fmt.Sprintf("No frontmatter in %s", path))
		return nil, &err
	}

	parts := strings.Split(content, Delimiter)
	if len(parts) < 3 {
		err := findings.New(findings.KindInvalidFormat, path, fmt.Sprintf("Invalid format in %s", path))
		return nil, &err
	}

	return &Document{
		Path:        path,
		Frontmatter: parts[1],
		Body:        parts[2],
	}, nil
}

// ValidateRequiredFields reports one error per required key that does not
// start a line of the frontmatter
func ValidateRequiredFields(path, frontmatter string) []findings.ValidationError {
	var errs []findings.ValidationError
	for _, field := range RequiredFields {
		if !requiredFieldPatterns[field].MatchString(frontmatter) {
			errs = append(errs, findings.New(findings.KindMissingField, path,
				fmt.Sprintf("Missing field '%s' in %s", field, path)))
		}
	}
	return errs
}

// ValidateFieldValues checks the enumerated keys. Only the first impact and
// type lines are considered; absent lines are left to
// ValidateRequiredFields.
func ValidateFieldValues(path, frontmatter string) []findings.ValidationError {
	var errs []findings.ValidationError

	if value, ok := firstValue(impactPattern, frontmatter); ok && !contains(ImpactLevels, value) {
		errs = append(errs, findings.New(findings.KindInvalidValue, path,
			fmt.Sprintf("Invalid impact in %s: %s", path, value)))
	}

	if value, ok := firstValue(typePattern, frontmatter); ok && !contains(RuleTypes, value) {
		errs = append(errs, findings.New(findings.KindInvalidValue, path,
			fmt.Sprintf("Invalid type in %s: %s", path, value)))
	}

	return errs
}

// ValidateTags rejects a tags value written as a single-quoted scalar,
// whatever it contains. Double-quoted and bare scalars are let through.
func ValidateTags(path, frontmatter string) []findings.ValidationError {
	if !quotedTagsPattern.MatchString(frontmatter) {
		return nil
	}
	return []findings.ValidationError{
		findings.New(findings.KindInvalidTags, path, fmt.Sprintf(
			"Invalid tags format in %s: tags must be an array (use '- item' format), not a string", path)),
	}
}

// ValidateFrontmatter runs every frontmatter check. The checks are
// independent and all of them contribute to the result.
func ValidateFrontmatter(path, frontmatter string) []findings.ValidationError {
	var errs []findings.ValidationError
	errs = append(errs, ValidateRequiredFields(path, frontmatter)...)
	errs = append(errs, ValidateFieldValues(path, frontmatter)...)
	errs = append(errs, ValidateTags(path, frontmatter)...)
	return errs
}

// ValidateDocument validates a whole rule document: the delimiter layout,
// then the frontmatter checks and the body structure check
func ValidateDocument(path, content string) []findings.ValidationError {
	doc, splitErr := Split(path, content)
	if splitErr != nil {
		return []findings.ValidationError{*splitErr}
	}

	errs := ValidateFrontmatter(path, doc.Frontmatter)
	errs = append(errs, ValidateStructure(path, doc.Body)...)
	return errs
}

func firstValue(pattern *regexp.Regexp, frontmatter string) (string, bool) {
	m := pattern.FindStringSubmatch(frontmatter)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
