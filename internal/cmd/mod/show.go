package mod

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/output"
)

// NewShowCmd creates the mod show command.
func NewShowCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var outFlags cmdutil.OutputFlags

	c := &cobra.Command{
		Use:   "show [name|path]",
		Short: "Show the project metadata of a module",
		Long: `Show the project metadata of one module: its descriptor, effective version,
parent and children.

The argument may be a module name (as printed by 'mod list'), a module
directory, a descriptor file, or any file inside a module. Without an
argument the focused module is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outFlags.Parse()
			if err != nil {
				return cmdutil.Fail("invalid flags", err)
			}

			ws, err := openWorkspace(cmd, cfg, cmdutil.WorkspaceOptions{})
			if err != nil {
				return err
			}

			var target string
			if len(args) > 0 {
				target = args[0]
			}
			m, err := resolveModule(ws.Registry, target)
			if err != nil {
				return cmdutil.Fail("module lookup failed", err)
			}

			md, err := ws.Metadata.Get(m.Name)
			if err != nil {
				return cmdutil.Fail("reading module metadata", err)
			}
			return cmdutil.WriteStructured(cmd.OutOrStdout(), md, format)
		},
	}

	outFlags.AddTo(c, output.FormatYAML, output.FormatJSON)
	return c
}
