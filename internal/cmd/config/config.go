// Package config provides CLI command implementations for the config command group.
package config

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return newConfigCmd(cfg, afero.NewOsFs())
}

func newConfigCmd(cfg *cmdtypes.GlobalConfig, fs afero.Fs) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for modgraph.`,
	}

	c.AddCommand(newInitCmd(cfg, fs))
	c.AddCommand(newVetCmd(cfg, fs))

	return c
}

// configPath returns the resolved --config path, falling back to the
// default location when the root command did not run.
func configPath(cfg *cmdtypes.GlobalConfig) (string, error) {
	if cfg != nil && cfg.ConfigPath != "" {
		return cfg.ConfigPath, nil
	}
	return config.GetConfigFile()
}
