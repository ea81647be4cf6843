package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skilldocs/skillcheck/pkg/types/findings"
)

// h1Pattern matches a top-level heading: a single '#' and whitespace. The
// heading text may be empty, and the whitespace may run onto the next line.
var h1Pattern = regexp.MustCompile(`(?m)^#\s+.*$`)

// ValidateStructure requires non-blank content after the first top-level
// heading of body. A body without such a heading passes.
func ValidateStructure(path, body string) []findings.ValidationError {
	loc := h1Pattern.FindStringIndex(body)
	if loc == nil {
		return nil
	}

	if strings.TrimSpace(body[loc[1]:]) != "" {
		return nil
	}

	return []findings.ValidationError{
		findings.New(findings.KindMissingDescription, path,
			fmt.Sprintf("Missing description after H1 in %s", path)),
	}
}
