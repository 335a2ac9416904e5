// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	configcmd "github.com/opmodel/modgraph/internal/cmd/config"
	"github.com/opmodel/modgraph/internal/cmd/mod"
	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/config"
	"github.com/opmodel/modgraph/internal/output"
)

// rootFlags are the persistent flags of the root command.
type rootFlags struct {
	config     string
	project    string
	descriptor string
	verbose    bool
	timestamps bool
}

// NewRootCmd creates the root command for modgraph.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	cfg := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "modgraph",
		Short: "Multi-module project graph tool",
		Long: `modgraph discovers the module descriptors of a multi-module project,
orders them so that nested modules come before their parents, and answers
questions about which module owns a file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeGlobals(cmd, &flags, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "Path to config file (env: MODGRAPH_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&flags.project, "project", "p", "", "Project root directory (env: MODGRAPH_PROJECT)")
	rootCmd.PersistentFlags().StringVar(&flags.descriptor, "descriptor", "", "Descriptor filename (env: MODGRAPH_DESCRIPTOR)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&flags.timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(mod.NewModCmd(cfg))
	rootCmd.AddCommand(configcmd.NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd(cfg))

	return rootCmd
}

// initializeGlobals sets up logging and resolves configuration into cfg.
func initializeGlobals(cmd *cobra.Command, flags *rootFlags, cfg *cmdtypes.GlobalConfig) error {
	resolved, err := config.ResolveAll(config.ResolveAllOptions{
		ConfigFlag:     flags.config,
		ProjectFlag:    flags.project,
		DescriptorFlag: flags.descriptor,
	})
	if err != nil {
		// A broken config file must not block `config init` or `config vet`.
		output.Debug("config load error", "error", err)
		resolved, err = config.ResolveAll(config.ResolveAllOptions{
			ConfigFlag:     flags.config,
			ProjectFlag:    flags.project,
			DescriptorFlag: flags.descriptor,
			Loader:         config.NewLoaderFs(afero.NewMemMapFs()),
		})
		if err != nil {
			return err
		}
	}

	cfg.Config = resolved.Config
	cfg.Resolved = resolved
	cfg.ConfigPath = resolved.ConfigPath.Value
	cfg.Project = resolved.Project.Value
	cfg.Descriptor = resolved.Descriptor.Value
	cfg.Verbose = flags.verbose

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: flags.verbose}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(flags.timestamps)
	} else if resolved.Config.Log.Timestamps != nil {
		logCfg.Timestamps = resolved.Config.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if flags.verbose {
		config.LogResolvedValues(resolved.Values())
	}

	return nil
}
