package acceptance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, code := run(t, t.TempDir(), "version")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `"version"`)
	assert.Contains(t, stdout, `"gitCommit"`)
}

func TestVersionCommandHelp(t *testing.T) {
	stdout, _, code := run(t, t.TempDir(), "version", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, strings.ToLower(stdout), "usage")
}
