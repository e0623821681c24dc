package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/topo2geojson/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJobsFromFlags(t *testing.T) {
	jobs, err := buildJobs(Options{
		Input:  "topo.json",
		Output: "data",
		Limit:  []string{"lakes"},
		Dedup:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, []processor.Job{{
		Name:      "topo.json",
		Input:     "topo.json",
		OutputDir: "data",
		Objects:   []string{"lakes"},
		Dedup:     true,
	}}, jobs)
}

func TestBuildJobsFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topologies:
  - {name: swiss, input: swiss.json}
  - {name: world, input: world.json, bbox: true}
  - {name: moon, input: moon.json}
`), 0644))

	jobs, err := buildJobs(Options{
		ConfigFile: path,
		Input:      "ignored.json",
		Limit:      []string{"world", "mars", "swiss", "world"},
		Compact:    true,
	})
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, "world", jobs[0].Name)
	assert.True(t, jobs[0].BBox)
	assert.True(t, jobs[0].Compact)
	assert.Equal(t, "swiss", jobs[1].Name)
	assert.False(t, jobs[1].BBox)
	assert.True(t, jobs[1].Compact)
}

func TestBuildJobsMissingConfig(t *testing.T) {
	_, err := buildJobs(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
