package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/topo2geojson/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJobs(t *testing.T) {
	path := writeConfig(t, `
output: out
dedup: true
topologies:
  - name: swiss
    input: swiss.topo.json
    objects: [cantons, lakes]
  - input: https://example.com/world.topo.json
    output: out/world
    dedup: false
    compact: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []processor.Job{
		{
			Name:      "swiss",
			Input:     "swiss.topo.json",
			OutputDir: "out",
			Objects:   []string{"cantons", "lakes"},
			Dedup:     true,
		},
		{
			Name:      "https://example.com/world.topo.json",
			Input:     "https://example.com/world.topo.json",
			OutputDir: "out/world",
			Compact:   true,
		},
	}, cfg.Jobs())
}

func TestJobsDefaultOutput(t *testing.T) {
	cfg := &Config{Topologies: []Topology{{Input: "topo.json"}}}
	jobs := cfg.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, DefaultOutput, jobs[0].OutputDir)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "no topologies",
			content: "output: data\n",
			errMsg:  "no topologies configured",
		},
		{
			name:    "missing input",
			content: "topologies:\n  - name: a\n",
			errMsg:  "input is required",
		},
		{
			name:    "duplicate names",
			content: "topologies:\n  - {name: a, input: a.json}\n  - {name: a, input: b.json}\n",
			errMsg:  `duplicate name "a"`,
		},
		{
			name:    "invalid yaml",
			content: "topologies: [\n",
			errMsg:  "yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, cfg)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
