// Package mod provides the `modgraph mod` command group.
package mod

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/config"
	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/output"
	"github.com/opmodel/modgraph/internal/workspace"
)

// NewModCmd creates the mod command group.
func NewModCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mod",
		Short: "Module graph operations",
		Long:  `Commands for listing, inspecting and watching the modules of a project.`,
	}

	cmd.AddCommand(
		NewListCmd(cfg),
		NewTreeCmd(cfg),
		NewShowCmd(cfg),
		NewWhichCmd(cfg),
		NewFocusCmd(cfg),
		NewWatchCmd(cfg),
	)

	return cmd
}

// openWorkspace opens the project configured in cfg. Errors are printed
// and carry their exit code.
func openWorkspace(cmd *cobra.Command, cfg *cmdtypes.GlobalConfig, opts cmdutil.WorkspaceOptions) (*cmdutil.Workspace, error) {
	c := cfg.Config
	if c == nil {
		c = config.DefaultConfig()
	}
	if opts.PromptWriter == nil {
		opts.PromptWriter = cmd.OutOrStdout()
	}

	ws, err := cmdutil.OpenWorkspace(cmd.Context(), c, opts)
	if err != nil {
		return nil, cmdutil.Fail("opening workspace", err)
	}
	return ws, nil
}

// resolveModule finds the module named by target. An empty target means
// the focused module. Otherwise target is tried as a module name, then as
// a path: a module directory, a descriptor file, or any file inside a
// module.
func resolveModule(reg *workspace.Registry, target string) (*workspace.Module, error) {
	if target == "" {
		if m, ok := reg.Focused(); ok {
			return m, nil
		}
		return nil, oerrors.NewNotFoundError("no module is focused", reg.ProjectRoot(),
			"create a "+reg.DescriptorFilename()+" at the project root")
	}

	if target == output.RootModuleLabel {
		if m, ok := reg.Root(); ok {
			return m, nil
		}
	}
	if m, ok := reg.ModuleByName(target); ok {
		return m, nil
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		if m, ok := reg.Module(filepath.Join(abs, reg.DescriptorFilename())); ok {
			return m, nil
		}
	}
	if m, ok := reg.Module(abs); ok {
		return m, nil
	}
	if m, ok := reg.NearestEnclosing(abs); ok {
		return m, nil
	}

	return nil, oerrors.NewNotFoundError(
		"no module matches "+target,
		reg.ProjectRoot(),
		"run 'modgraph mod list' to see registered modules",
	)
}

// relPath returns path relative to the project root when it lies inside it.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
