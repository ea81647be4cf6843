package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Equal(t, BuildTime, info.BuildTime)
	assert.Contains(t, info.GoVersion, "go")
}

func TestInfo_String(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GitCommit: "abc123",
		BuildTime: "2026-10-01T09:00:00Z",
		GoVersion: "go1.25.1",
	}

	assert.Equal(t, "Version: 1.0.0, GitCommit: abc123, BuildTime: 2026-10-01T09:00:00Z, GoVersion: go1.25.1", info.String())
}

func TestInfo_JSONFormat(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GitCommit: "abc123",
		BuildTime: "2026-10-01T09:00:00Z",
		GoVersion: "go1.25.1",
	}

	jsonString, err := info.JSON()
	require.NoError(t, err)

	expectedJSON := `{
  "version": "1.0.0",
  "gitCommit": "abc123",
  "buildTime": "2026-10-01T09:00:00Z",
  "goVersion": "go1.25.1"
}`
	assert.Equal(t, expectedJSON, jsonString)

	var parsed Info
	require.NoError(t, json.Unmarshal([]byte(jsonString), &parsed))
	assert.Equal(t, info, parsed)
}
