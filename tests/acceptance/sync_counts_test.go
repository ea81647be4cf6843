package acceptance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readme = `| Skill | Rules |
| --- | --- |
| [NextDNS CLI](skills/nextdns-cli/SKILL.md) | **9** | CLI usage |
`

func TestSyncCounts(t *testing.T) {
	dir := passingWorkspace(t)
	writeFile(t, filepath.Join(dir, "README.md"), readme)

	stdout, _, code := run(t, dir, "sync-counts", "--dry-run")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "[README] Updated nextdns-cli count to 1")
	assert.Contains(t, stdout, "+| [NextDNS CLI](skills/nextdns-cli/SKILL.md) | **1** | CLI usage |")
	assert.Contains(t, stdout, "AGENTS.md not found.")

	unchanged, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, readme, string(unchanged))

	stdout, _, code = run(t, dir, "sync-counts")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "README.md updated successfully.")

	updated, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(updated), "| **1** |")

	stdout, _, _ = run(t, dir, "sync-counts")
	assert.Contains(t, stdout, "No changes needed in README.md.")
}

func TestListJSON(t *testing.T) {
	dir := passingWorkspace(t)

	stdout, _, code := run(t, dir, "list", "--format", "json")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `"name": "nextdns-cli"`)
	assert.Contains(t, stdout, `"rules": 1`)
}
