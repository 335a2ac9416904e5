package config

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/config"
	"github.com/opmodel/modgraph/internal/output"
)

func newVetCmd(cfg *cmdtypes.GlobalConfig, fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the modgraph configuration file",
		Long: `Validate the modgraph configuration file against the internal schema.

The command validates the configuration file at ~/.modgraph/config.yaml by
default. Use --config flag to specify a different location.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, cfg, fs)
		},
	}
}

func runVet(c *cobra.Command, cfg *cmdtypes.GlobalConfig, fs afero.Fs) error {
	configFile, err := configPath(cfg)
	if err != nil {
		return fmt.Errorf("getting config file path: %w", err)
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.ValidateFile(config.NewLoaderFs(fs), configFile); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			w := c.ErrOrStderr()
			fmt.Fprintln(w, "Error: config validation failed")
			fmt.Fprintf(w, "  File: %s\n\n", configFile)
			for _, e := range validationErrs {
				fmt.Fprintf(w, "  %s: %s\n", e.Field, e.Message)
			}
			return &cmdtypes.ExitError{Code: cmdtypes.ExitValidationError, Err: err, Printed: true}
		}
		return cmdutil.Fail("config vet failed", err)
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Config file is valid: "+configFile))
	return nil
}
