package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilldocs/skillcheck/pkg/types/findings"
)

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing bool
	}{
		{"description after heading", "\n# Title\n\nSome text.\n", false},
		{"only whitespace after heading", "\n# Title\n\n   \n\t\n", true},
		{"heading at end", "\n# Title", true},
		{"no heading", "\nJust text.\n", false},
		{"empty body", "", false},
		{"second level heading only", "\n## Title\n", false},
		{"subheading counts as content", "\n# Title\n## Details\n", false},
		{"first heading is used", "\n# First\n\ntext\n# Second\n", false},
		{"hash without space is not a heading", "\n#Title\n", false},
		{"empty heading", "\n# \n", true},
		{"empty heading takes the next line as its text", "\n# \nDescription\n", true},
		{"empty heading followed by a paragraph", "\n# \nTitle\n\nDescription\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStructure("r.md", tt.body)
			if !tt.missing {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, findings.KindMissingDescription, errs[0].Kind)
			assert.Equal(t, "Missing description after H1 in r.md", errs[0].Message)
		})
	}
}

func TestValidateDocumentStructure(t *testing.T) {
	errs := ValidateDocument("r.md", "---\nfrontmatter\n---\n# Title\n\n")
	require.NotEmpty(t, errs)
	assert.Equal(t, "Missing description after H1 in r.md", errs[len(errs)-1].Message)

	errs = ValidateDocument("r.md", "---\nfrontmatter\n---\n# Title\n\nDescription.\n")
	for _, e := range errs {
		assert.NotEqual(t, findings.KindMissingDescription, e.Kind)
	}
}
