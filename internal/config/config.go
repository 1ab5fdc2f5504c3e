// Package config holds the handful of knobs spec.md §6 recognizes:
// whether the optimizer runs, whether reflection metadata is emitted,
// the string-builder threshold, and the heap budget. A project checks
// one of these in as `udonc.config.yaml` beside its sources; Default()
// returns the spec's own defaults, which are not the zero value (the zero
// value leaves the optimizer off).
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the compiler's full set of recognized options (spec.md §6).
type Config struct {
	Optimize               bool `yaml:"optimize"`
	Reflect                bool `yaml:"reflect"`
	UseStringBuilder       bool `yaml:"useStringBuilder"`
	StringBuilderThreshold int  `yaml:"stringBuilderThreshold"`
	HeapLimit              int  `yaml:"heapLimit"`
}

// Default matches the configuration spec.md §6 describes absent a
// project file: the optimizer runs, reflection metadata is off, the
// backend's StringBuilder collapse of `+` chains is off (internal/lower
// still lowers a long concatenation chain to a StringBuilder on its own),
// and the heap has no enforced ceiling.
func Default() Config {
	return Config{
		Optimize:               true,
		Reflect:                false,
		UseStringBuilder:       false,
		StringBuilderThreshold: 6,
		HeapLimit:              0,
	}
}

// LoadYAML reads a project's `udonc.config.yaml`, starting from
// Default() so a file that only overrides one field leaves the rest at
// their spec-mandated defaults.
func LoadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
