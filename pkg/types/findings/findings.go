// Package findings defines the violation records produced by the skill
// document checks.
package findings

// Kind classifies a ValidationError by the check that produced it
type Kind string

const (
	// KindUnregistered marks a rule file the skill descriptor never links to
	KindUnregistered Kind = "unregistered-rule"
	// KindMissingReference marks a descriptor link to a rule file that does not exist
	KindMissingReference Kind = "missing-reference"
	// KindNoFrontmatter marks a rule document that does not open with a delimiter
	KindNoFrontmatter Kind = "no-frontmatter"
	// KindInvalidFormat marks a rule document with fewer than two delimiters
	KindInvalidFormat Kind = "invalid-format"
	// KindMissingField marks a required frontmatter key that is absent
	KindMissingField Kind = "missing-field"
	// KindInvalidValue marks an enumerated frontmatter key with an unknown value
	KindInvalidValue Kind = "invalid-value"
	// KindInvalidTags marks a tags value written as a quoted scalar
	KindInvalidTags Kind = "invalid-tags"
	// KindMissingDescription marks a top-level heading with nothing after it
	KindMissingDescription Kind = "missing-description"
)

// ValidationError is a single recoverable violation. Subject is the path of
// the descriptor or rule document at fault; Message is the full human
// readable line, already naming the subject.
type ValidationError struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Subject string `json:"subject" yaml:"subject"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return e.Message
}

// New creates a ValidationError
func New(kind Kind, subject, message string) ValidationError {
	return ValidationError{
		Kind:    kind,
		Subject: subject,
		Message: message,
	}
}

// Subjects returns the distinct subjects of errs in first-seen order
func Subjects(errs []ValidationError) []string {
	seen := make(map[string]struct{}, len(errs))
	subjects := make([]string, 0, len(errs))
	for _, e := range errs {
		if _, ok := seen[e.Subject]; ok {
			continue
		}
		seen[e.Subject] = struct{}{}
		subjects = append(subjects, e.Subject)
	}
	return subjects
}
