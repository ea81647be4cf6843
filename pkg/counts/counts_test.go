package counts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	readmePattern = `(\|\s+\[.*?\]\(skills/{category}/SKILL\.md\)\s+\|\s+\*\*)\d+(\*\*\s+\|)`
	agentsPattern = `({category}/.*?# )\d+( rules)`
)

type fakeCounter map[string]int

func (f fakeCounter) RuleCount(category string) (int, bool, error) {
	if category == "broken" {
		return 0, false, errors.New("permission denied")
	}
	count, ok := f[category]
	return count, ok, nil
}

const readme = `# Skills

| Skill | Rules | Description |
| --- | --- | --- |
| [**NextDNS API**](skills/nextdns-api/SKILL.md) | **17** | API usage |
| [**NextDNS CLI**](skills/nextdns-cli/SKILL.md) | **4** | CLI usage |
`

const agents = "skills/\n├── nextdns-api/            # 17 rules\n├── nextdns-cli/            # 4 rules\n"

func TestApply(t *testing.T) {
	target := Target{Path: "README.md", Name: "README", Pattern: readmePattern}
	counts := map[string]int{"nextdns-api": 18, "nextdns-cli": 4}

	updated, updates, err := Apply(readme, target, []string{"nextdns-api", "nextdns-cli", "unknown"}, counts)
	require.NoError(t, err)
	assert.Contains(t, updated, "| [**NextDNS API**](skills/nextdns-api/SKILL.md) | **18** |")
	assert.Contains(t, updated, "| [**NextDNS CLI**](skills/nextdns-cli/SKILL.md) | **4** |")
	assert.Equal(t, []string{"[README] Updated nextdns-api count to 18"}, updates)
}

func TestApplyAgentsTree(t *testing.T) {
	target := Target{Path: "AGENTS.md", Name: "AGENTS", Pattern: agentsPattern}

	updated, updates, err := Apply(agents, target, []string{"nextdns-api", "nextdns-cli"},
		map[string]int{"nextdns-api": 20, "nextdns-cli": 5})
	require.NoError(t, err)
	assert.Equal(t, "skills/\n├── nextdns-api/            # 20 rules\n├── nextdns-cli/            # 5 rules\n", updated)
	assert.Len(t, updates, 2)
}

func TestApplyQuotesCategory(t *testing.T) {
	target := Target{Name: "T", Pattern: agentsPattern}
	content := "a.b/ # 1 rules\naxb/ # 1 rules\n"

	updated, _, err := Apply(content, target, []string{"a.b"}, map[string]int{"a.b": 9})
	require.NoError(t, err)
	assert.Equal(t, "a.b/ # 9 rules\naxb/ # 1 rules\n", updated)
}

func TestNewSyncerValidation(t *testing.T) {
	_, err := NewSyncer(nil, nil)
	assert.Error(t, err)

	_, err = NewSyncer(fakeCounter{}, []Target{{Path: "", Pattern: agentsPattern}})
	assert.Error(t, err)

	_, err = NewSyncer(fakeCounter{}, []Target{{Path: "README.md", Pattern: `(\d+)`}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{category}")

	_, err = NewSyncer(fakeCounter{}, []Target{{Path: "README.md", Pattern: `({category}`}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid count pattern")
}

func writeTargets(t *testing.T) (string, []Target) {
	t.Helper()
	dir := t.TempDir()
	readmePath := filepath.Join(dir, "README.md")
	agentsPath := filepath.Join(dir, "AGENTS.md")
	require.NoError(t, os.WriteFile(readmePath, []byte(readme), 0o644))
	require.NoError(t, os.WriteFile(agentsPath, []byte(agents), 0o644))
	return dir, []Target{
		{Path: readmePath, Name: "README", Pattern: readmePattern},
		{Path: agentsPath, Name: "AGENTS", Pattern: agentsPattern},
		{Path: filepath.Join(dir, "CLAUDE.md"), Name: "CLAUDE", Pattern: agentsPattern},
	}
}

func TestSync(t *testing.T) {
	_, targets := writeTargets(t)
	syncer, err := NewSyncer(fakeCounter{"nextdns-api": 18, "nextdns-cli": 4}, targets)
	require.NoError(t, err)

	results, err := syncer.Sync(context.Background(), []string{"nextdns-api", "nextdns-cli", "nextdns-ui"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Found)
	assert.True(t, results[0].Changed)
	assert.Equal(t, []string{"[README] Updated nextdns-api count to 18"}, results[0].Updates)
	assert.Empty(t, results[0].Diff)

	assert.True(t, results[1].Changed)
	assert.False(t, results[2].Found)

	data, err := os.ReadFile(targets[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "| **18** |")

	data, err = os.ReadFile(targets[1].Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nextdns-api/            # 18 rules")

	again, err := syncer.Sync(context.Background(), []string{"nextdns-api", "nextdns-cli"})
	require.NoError(t, err)
	assert.False(t, again[0].Changed)
	assert.False(t, again[1].Changed)
}

func TestSyncDryRun(t *testing.T) {
	_, targets := writeTargets(t)
	syncer, err := NewSyncer(fakeCounter{"nextdns-api": 18}, targets[:1], WithDryRun(true))
	require.NoError(t, err)

	results, err := syncer.Sync(context.Background(), []string{"nextdns-api"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Changed)
	assert.Contains(t, results[0].Diff, "-| [**NextDNS API**](skills/nextdns-api/SKILL.md) | **17** | API usage |")
	assert.Contains(t, results[0].Diff, "+| [**NextDNS API**](skills/nextdns-api/SKILL.md) | **18** | API usage |")

	data, err := os.ReadFile(targets[0].Path)
	require.NoError(t, err)
	assert.Equal(t, readme, string(data), "dry run must not write")
}

func TestSyncCounterError(t *testing.T) {
	_, targets := writeTargets(t)
	syncer, err := NewSyncer(fakeCounter{}, targets)
	require.NoError(t, err)

	_, err = syncer.Sync(context.Background(), []string{"broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count rules for broken")
}
