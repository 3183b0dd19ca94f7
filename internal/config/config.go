// Package config reads the project configuration a cthulhud invocation
// runs under: which drivers to register, which source roots to scan, and
// whether to preload a standard-library preamble. Adapted from the
// teacher's internal/config, which held a flat set of version/extension
// constants (config.SourceFileExtensions, config.TrimSourceExt) rather than
// a loaded document — this core replaces that hard-coded extension list
// with driver-reported extensions (internal/driver.Driver.Extensions) and
// keeps only what a cthulhu.yaml document actually needs to describe.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DriverConfig names one driver to register and where its sources live.
type DriverConfig struct {
	ID    string   `yaml:"id"`
	Roots []string `yaml:"roots"`
}

// ProjectConfig is the parsed shape of a cthulhu.yaml project file.
type ProjectConfig struct {
	Drivers        []DriverConfig `yaml:"drivers"`
	StdlibPreamble bool           `yaml:"stdlibPreamble"`
}

// Load reads and parses a cthulhu.yaml project file at path.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Roots returns every source root across every configured driver, in
// declaration order, so a host can walk them without caring which driver
// claims which root.
func (c *ProjectConfig) Roots() []string {
	var out []string
	for _, d := range c.Drivers {
		out = append(out, d.Roots...)
	}
	return out
}

// DriverIDs returns the configured driver ids in declaration order.
func (c *ProjectConfig) DriverIDs() []string {
	out := make([]string, len(c.Drivers))
	for i, d := range c.Drivers {
		out[i] = d.ID
	}
	return out
}
