package findings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorImplementsError(t *testing.T) {
	var err error = New(KindMissingField, "skills/a/rules/x.md", "Missing field 'title' in skills/a/rules/x.md")
	assert.EqualError(t, err, "Missing field 'title' in skills/a/rules/x.md")
}

func TestSubjects(t *testing.T) {
	errs := []ValidationError{
		New(KindMissingField, "b.md", "one"),
		New(KindMissingField, "a.md", "two"),
		New(KindInvalidValue, "b.md", "three"),
	}

	assert.Equal(t, []string{"b.md", "a.md"}, Subjects(errs))
	assert.Empty(t, Subjects(nil))
}
