package config

import (
	"os"

	"github.com/opmodel/modgraph/internal/descriptor"
	"github.com/opmodel/modgraph/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is one configuration value with its provenance.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolvedConfig is the fully resolved CLI configuration.
type ResolvedConfig struct {
	ConfigPath ResolvedValue
	Project    ResolvedValue
	Descriptor ResolvedValue

	// Config is the loaded file merged with defaults.
	Config *Config
}

// Values returns the resolved values in display order.
func (r *ResolvedConfig) Values() []ResolvedValue {
	return []ResolvedValue{r.ConfigPath, r.Project, r.Descriptor}
}

// resolveString applies flag > env > config > default to one key.
func resolveString(key, flagValue, envVar, configValue, defaultValue string) ResolvedValue {
	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, flagValue},
		{SourceEnv, os.Getenv(envVar)},
		{SourceConfig, configValue},
		{SourceDefault, defaultValue},
	}

	result := ResolvedValue{
		Key:      key,
		Shadowed: make(map[ConfigSource]string),
	}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	return result
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) MODGRAPH_CONFIG env, (3) ~/.modgraph/config.yaml
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}
	return resolveString("config", opts.FlagValue, EnvConfig, "", paths.ConfigFile), nil
}

// ResolveAllOptions contains the raw inputs of ResolveAll.
type ResolveAllOptions struct {
	ConfigFlag     string
	ProjectFlag    string
	DescriptorFlag string

	// Loader reads the config file. nil uses NewLoader().
	Loader *Loader
}

// ResolveAll loads the config file and resolves every flag-backed key.
func ResolveAll(opts ResolveAllOptions) (*ResolvedConfig, error) {
	configPath, err := ResolveConfigPath(ResolveConfigPathOptions{FlagValue: opts.ConfigFlag})
	if err != nil {
		return nil, err
	}

	loader := opts.Loader
	if loader == nil {
		loader = NewLoader()
	}
	fileCfg, err := loader.Load(configPath.Value)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedConfig{
		ConfigPath: configPath,
		Project:    resolveString("project", opts.ProjectFlag, EnvProject, fileCfg.Project, "."),
		Descriptor: resolveString("descriptor", opts.DescriptorFlag, EnvDescriptor, fileCfg.Descriptor, descriptor.DefaultFilename),
	}

	cfg := fileCfg.WithDefaults()
	cfg.Project = resolved.Project.Value
	cfg.Descriptor = resolved.Descriptor.Value
	resolved.Config = cfg

	return resolved, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
