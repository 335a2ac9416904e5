package mod

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/output"
)

// NewTreeCmd creates the mod tree command.
func NewTreeCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the module hierarchy",
		Long: `Show the registered modules as a directory tree rooted at the project,
with each module's effective version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTree(cmd, cfg)
		},
	}
}

func runTree(cmd *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	ws, err := openWorkspace(cmd, cfg, cmdutil.WorkspaceOptions{})
	if err != nil {
		return err
	}

	modules := make(map[string]string)
	for _, m := range ws.Registry.Modules() {
		md, err := ws.Metadata.Get(m.Name)
		if err != nil {
			return cmdutil.Fail("reading module metadata", err)
		}
		desc := md.Version
		if md.Inherited {
			desc = output.StyleDim.Render(desc)
		}
		modules[m.Name] = desc
	}

	if len(modules) == 0 {
		output.Warn("no modules found", "root", ws.Registry.ProjectRoot())
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderModuleTree(filepath.Base(ws.Registry.ProjectRoot()), modules))
	return nil
}
