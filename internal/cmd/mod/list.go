package mod

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/output"
	"github.com/opmodel/modgraph/internal/workspace"
)

// moduleEntry is one line of `mod list` output.
type moduleEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Version   string `json:"version,omitempty"`
	Inherited bool   `json:"inherited,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// NewListCmd creates the mod list command.
func NewListCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		outFlags cmdutil.OutputFlags
		pending  bool
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "List registered modules",
		Long: `List the registered modules of the project.

Modules are printed in registry order: every module comes before the modules
whose directories contain it, so the project root is always last.

Use --pending to also show descriptors that are waiting for content or
failed to parse.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outFlags.Parse()
			if err != nil {
				return cmdutil.Fail("invalid flags", err)
			}
			return runList(cmd, cfg, format, pending)
		},
	}

	outFlags.AddTo(c, output.FormatTable, output.FormatYAML, output.FormatJSON)
	c.Flags().BoolVar(&pending, "pending", false, "Include pending and failed descriptors")

	return c
}

func runList(cmd *cobra.Command, cfg *cmdtypes.GlobalConfig, format output.OutputFormat, withPending bool) error {
	ws, err := openWorkspace(cmd, cfg, cmdutil.WorkspaceOptions{})
	if err != nil {
		return err
	}

	entries, err := listEntries(ws, withPending)
	if err != nil {
		return cmdutil.Fail("listing modules", err)
	}

	if format != output.FormatTable {
		return cmdutil.WriteStructured(cmd.OutOrStdout(), entries, format)
	}

	if len(entries) == 0 {
		output.Warn("no modules found", "root", ws.Registry.ProjectRoot(), "descriptor", ws.Registry.DescriptorFilename())
		return nil
	}

	rows := make([]output.ModuleRow, 0, len(entries))
	for _, e := range entries {
		version := e.Version
		if e.Inherited {
			version += output.StyleDim.Render(" (inherited)")
		}
		rows = append(rows, output.ModuleRow{
			Name:    e.Name,
			Path:    e.Path,
			Version: version,
			Status:  e.Status,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), output.RenderModuleTable(rows))
	return nil
}

func listEntries(ws *cmdutil.Workspace, withPending bool) ([]moduleEntry, error) {
	reg := ws.Registry
	root := reg.ProjectRoot()
	focused := reg.FocusedName()

	entries := make([]moduleEntry, 0)
	for _, m := range reg.Modules() {
		md, err := ws.Metadata.Get(m.Name)
		if err != nil {
			return nil, err
		}
		status := output.StatusRegistered
		if m.Name == focused {
			status = output.StatusFocused
		}
		entries = append(entries, moduleEntry{
			Name:      m.Name,
			Path:      relPath(root, m.Path),
			Version:   md.Version,
			Inherited: md.Inherited,
			Status:    status,
		})
	}

	if withPending {
		for _, p := range reg.Pending() {
			entries = append(entries, pendingEntry(root, p))
		}
	}

	return entries, nil
}

func pendingEntry(root string, p workspace.PendingPath) moduleEntry {
	e := moduleEntry{
		Name:   relPath(root, filepath.Dir(p.Path)),
		Path:   relPath(root, p.Path),
		Status: output.StatusPending,
	}
	if e.Name == "." {
		e.Name = ""
	}
	if p.Err != nil {
		e.Status = output.StatusFailed
		e.Error = p.Err.Error()
	}
	return e
}
