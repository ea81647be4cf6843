package acceptance

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const ruleDoc = `---
title: Use the profile flag
impact: MEDIUM
impactDescription: avoids touching the wrong profile
type: capability
tags:
  - cli
---
# Use the profile flag

Pass the profile explicitly.
`

func passingWorkspace(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "skills", "nextdns-cli", "SKILL.md"),
		"# NextDNS CLI\n\n- [Profiles](rules/profiles.md)\n")
	writeFile(t, filepath.Join(dir, "skills", "nextdns-cli", "rules", "profiles.md"), ruleDoc)
	return dir
}

func TestValidatePasses(t *testing.T) {
	dir := passingWorkspace(t)

	stdout, stderr, code := run(t, dir)

	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "🔍 Checking referential integrity...")
	assert.Contains(t, stdout, "Skill: nextdns-cli")
	assert.Contains(t, stdout, "✓ profiles")
	assert.True(t, strings.HasSuffix(stdout, "✅ All validations passed!\n"))
}

func TestValidateFails(t *testing.T) {
	dir := passingWorkspace(t)
	writeFile(t, filepath.Join(dir, "skills", "nextdns-cli", "rules", "orphan.md"), "# Orphan\n")

	stdout, _, code := run(t, dir, "validate")

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "❌ ERROR: Rule 'orphan.md' exists but is not registered in skills/nextdns-cli/SKILL.md")
	assert.Contains(t, stdout, "❌ ERROR: No frontmatter in skills/nextdns-cli/rules/orphan.md")
	assert.Contains(t, stdout, "❌ Validations failed: 2 error(s) in 2 document(s).")
}

func TestValidateIsRepeatable(t *testing.T) {
	dir := passingWorkspace(t)
	writeFile(t, filepath.Join(dir, "skills", "nextdns-cli", "rules", "orphan.md"), "# Orphan\n")

	first, _, firstCode := run(t, dir)
	second, _, secondCode := run(t, dir)

	assert.Equal(t, first, second)
	assert.Equal(t, firstCode, secondCode)
}

func TestValidateRootFlag(t *testing.T) {
	dir := passingWorkspace(t)

	stdout, _, code := run(t, t.TempDir(), "validate", "--root", filepath.Join(dir, "skills"), "--quiet")

	assert.Equal(t, 0, code)
	assert.NotContains(t, stdout, "Skill:")
	assert.Contains(t, stdout, "All validations passed!")
}
