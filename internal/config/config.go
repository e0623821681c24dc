// Package config handles batch configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/topo2geojson/internal/processor"

	"gopkg.in/yaml.v3"
)

// DefaultOutput is used when neither the file nor an entry names an
// output directory.
const DefaultOutput = "data"

// Config represents the root configuration file structure.
type Config struct {
	Output     string     `yaml:"output,omitempty"`
	Topologies []Topology `yaml:"topologies"`
	Compact    bool       `yaml:"compact,omitempty"`
	Dedup      bool       `yaml:"dedup,omitempty"`
	BBox       bool       `yaml:"bbox,omitempty"`
}

// Topology represents a single topology conversion entry. Unset flags
// inherit the root values.
type Topology struct {
	Compact *bool    `yaml:"compact,omitempty"`
	Dedup   *bool    `yaml:"dedup,omitempty"`
	BBox    *bool    `yaml:"bbox,omitempty"`
	Name    string   `yaml:"name"`
	Input   string   `yaml:"input"`
	Output  string   `yaml:"output,omitempty"`
	Objects []string `yaml:"objects,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every entry has an input and that names are unique.
func (c *Config) Validate() error {
	if len(c.Topologies) == 0 {
		return errors.New("no topologies configured")
	}

	seen := make(map[string]bool, len(c.Topologies))
	for i, t := range c.Topologies {
		if t.Input == "" {
			return fmt.Errorf("topology #%d (%s): input is required", i, t.Name)
		}
		name := t.name()
		if seen[name] {
			return fmt.Errorf("topology #%d: duplicate name %q", i, name)
		}
		seen[name] = true
	}

	return nil
}

// Jobs expands the configuration into conversion jobs, in file order.
func (c *Config) Jobs() []processor.Job {
	output := c.Output
	if output == "" {
		output = DefaultOutput
	}

	jobs := make([]processor.Job, 0, len(c.Topologies))
	for _, t := range c.Topologies {
		job := processor.Job{
			Name:      t.name(),
			Input:     t.Input,
			OutputDir: output,
			Objects:   t.Objects,
			Compact:   pick(t.Compact, c.Compact),
			Dedup:     pick(t.Dedup, c.Dedup),
			BBox:      pick(t.BBox, c.BBox),
		}
		if t.Output != "" {
			job.OutputDir = t.Output
		}
		jobs = append(jobs, job)
	}

	return jobs
}

// name falls back to the input when the entry is unnamed.
func (t Topology) name() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Input
}

func pick(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
