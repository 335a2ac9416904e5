package mod

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/output"
)

// NewFocusCmd creates the mod focus command.
func NewFocusCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "focus <name|path>",
		Short: "Focus a module and print its prompt",
		Long: `Focus a module and print the prompt line for it.

The argument is resolved like 'mod show'. The focus lasts for the lifetime
of the process; use 'mod watch' to keep it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, cfg, cmdutil.WorkspaceOptions{})
			if err != nil {
				return err
			}

			m, err := resolveModule(ws.Registry, args[0])
			if err != nil {
				return cmdutil.Fail("module lookup failed", err)
			}

			if current, ok := ws.Registry.Focused(); ok && current.Path == m.Path {
				fmt.Fprintln(cmd.OutOrStdout(), output.FormatPrompt(ws.Prompt.Project(), m.Name))
				return nil
			}
			if err := ws.Registry.SetFocused(m); err != nil {
				return cmdutil.Fail("focusing module", err)
			}
			return nil
		},
	}
}
