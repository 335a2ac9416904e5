package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/output"
	"github.com/opmodel/modgraph/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(_ *cmdtypes.GlobalConfig) *cobra.Command {
	var outFlags cmdutil.OutputFlags

	c := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show modgraph version information.

Displays:
  - modgraph version, commit, and build date
  - Go toolchain and CUE SDK versions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outFlags.Parse()
			if err != nil {
				return cmdutil.Fail("invalid flags", err)
			}

			info := version.Get()
			if format == output.FormatTable {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			return cmdutil.WriteStructured(cmd.OutOrStdout(), info, format)
		},
	}

	outFlags.AddTo(c, output.FormatTable, output.FormatYAML, output.FormatJSON)
	return c
}
