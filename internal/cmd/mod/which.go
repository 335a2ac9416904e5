package mod

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/output"
)

// NewWhichCmd creates the mod which command.
func NewWhichCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var quiet bool

	c := &cobra.Command{
		Use:   "which <file>",
		Short: "Print the module that owns a file",
		Long: `Print the module that owns a file: the registered module whose directory is
the nearest one, walking up from the file, that holds a descriptor.

Exits with code 5 when that descriptor is not registered or none exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, cfg, cmdutil.WorkspaceOptions{})
			if err != nil {
				return err
			}

			abs, err := filepath.Abs(args[0])
			if err != nil {
				return cmdutil.Fail("resolving path", err)
			}

			m, ok := ws.Registry.NearestEnclosing(abs)
			if !ok {
				return cmdutil.Fail("module lookup failed", oerrors.NewNotFoundError(
					"no registered module encloses "+args[0],
					abs,
					"run 'modgraph mod list --pending' to check for unparsed descriptors",
				))
			}

			if quiet {
				fmt.Fprintln(cmd.OutOrStdout(), m.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				output.FormatModuleName(m.Name),
				output.StyleDim.Render(relPath(ws.Registry.ProjectRoot(), m.Path)))
			return nil
		},
	}

	c.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the module name")
	return c
}
