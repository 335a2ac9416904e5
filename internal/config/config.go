// Package config provides configuration loading and management.
package config

import (
	"time"

	"github.com/opmodel/modgraph/internal/descriptor"
)

// DefaultDebounce is the default quiet period of `mod watch`.
const DefaultDebounce = 500 * time.Millisecond

// WatchConfig contains `mod watch` settings.
type WatchConfig struct {
	// Debounce is the quiet period after the last descriptor change before
	// the registry is refreshed.
	// Env: MODGRAPH_WATCH_DEBOUNCE, Default: 500ms
	Debounce time.Duration `mapstructure:"debounce" json:"debounce,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	// Env: MODGRAPH_LOG_TIMESTAMPS
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty"`
}

// Config represents the modgraph configuration.
// Loaded from ~/.modgraph/config.yaml, validated against the embedded CUE
// schema.
type Config struct {
	// Descriptor is the module descriptor filename.
	// Env: MODGRAPH_DESCRIPTOR, Default: project.cue
	Descriptor string `mapstructure:"descriptor" json:"descriptor,omitempty"`

	// Project is the default project root.
	// Env: MODGRAPH_PROJECT, Default: current directory
	Project string `mapstructure:"project" json:"project,omitempty"`

	// Ignore are doublestar patterns, relative to the project root, that
	// are never watched.
	Ignore []string `mapstructure:"ignore" json:"ignore,omitempty"`

	// Watch contains `mod watch` settings.
	Watch WatchConfig `mapstructure:"watch" json:"watch"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" json:"log"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		Descriptor: descriptor.DefaultFilename,
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// WithDefaults returns a copy of c with unset values taken from
// DefaultConfig.
func (c *Config) WithDefaults() *Config {
	out := DefaultConfig()
	out.Merge(c)
	return out
}

// Merge overwrites the fields of c with the non-zero fields of other.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Descriptor != "" {
		c.Descriptor = other.Descriptor
	}
	if other.Project != "" {
		c.Project = other.Project
	}
	if len(other.Ignore) > 0 {
		c.Ignore = append([]string(nil), other.Ignore...)
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Log.Timestamps != nil {
		ts := *other.Log.Timestamps
		c.Log.Timestamps = &ts
	}
}

// IsEmpty reports whether no field is set.
func (c *Config) IsEmpty() bool {
	return c.Descriptor == "" &&
		c.Project == "" &&
		len(c.Ignore) == 0 &&
		c.Watch.Debounce == 0 &&
		c.Log.Timestamps == nil
}

// DefaultConfigTemplate is written by `modgraph config init`.
const DefaultConfigTemplate = `# modgraph configuration
#
# Precedence: command-line flag > MODGRAPH_* environment variable > this file.

# Module descriptor filename. The extension selects the format:
# .cue, .yaml/.yml or .toml.
descriptor: project.cue

# Default project root. Empty means the current directory.
# project: ~/src/my-project

# Doublestar patterns, relative to the project root, that are never watched.
ignore:
  - "**/testdata/**"

watch:
  # Quiet period after the last descriptor change before refreshing.
  debounce: 500ms

log:
  timestamps: true
`
