package mod

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opmodel/modgraph/internal/cmdtypes"
	"github.com/opmodel/modgraph/internal/cmdutil"
	"github.com/opmodel/modgraph/internal/metadata"
	"github.com/opmodel/modgraph/internal/output"
)

// NewWatchCmd creates the mod watch command.
func NewWatchCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var diff bool

	c := &cobra.Command{
		Use:   "watch",
		Short: "Watch descriptors and refresh the module graph",
		Long: `Watch the project for descriptor changes and refresh the module graph after
each burst of changes.

Newly registered or re-parsed modules are logged. With --diff, the project
metadata of every module is compared before and after each refresh and the
differences are printed.

Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, cfg, diff)
		},
	}

	c.Flags().BoolVar(&diff, "diff", false, "Print metadata differences after each refresh")
	return c
}

func runWatch(cmd *cobra.Command, cfg *cmdtypes.GlobalConfig, diff bool) error {
	w := &watcher{out: cmd.OutOrStdout(), diff: diff, color: output.IsTTY()}

	ws, err := openWorkspace(cmd, cfg, cmdutil.WorkspaceOptions{OnChange: w.onChange})
	if err != nil {
		return err
	}
	if err := w.start(ws); err != nil {
		return cmdutil.Fail("initial refresh failed", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output.Info("watching for descriptor changes",
		"root", ws.Registry.ProjectRoot(),
		"descriptor", ws.Registry.DescriptorFilename(),
	)
	if err := ws.Tracker.Run(ctx); err != nil {
		return cmdutil.Fail("watch failed", err)
	}
	return nil
}

// watcher refreshes the registry after tracker bursts.
type watcher struct {
	out   io.Writer
	diff  bool
	color bool

	mu   sync.Mutex
	ws   *cmdutil.Workspace
	last map[string]interface{}
}

// start performs the initial refresh and takes the first snapshot.
func (w *watcher) start(ws *cmdutil.Workspace) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ws = ws
	ws.Metadata.OnInvalidate(func(ids []string) {
		modules := make([]string, 0, len(ids))
		for _, id := range ids {
			if name, ok := metadata.ModuleName(id); ok {
				if name == "" {
					name = output.RootModuleLabel
				}
				modules = append(modules, name)
			}
		}
		output.Debug("metadata invalidated", "modules", modules)
	})

	modules := ws.Registry.Refresh()
	output.Info(fmt.Sprintf("registered %d module(s)", len(ws.Registry.Modules())))
	for _, m := range modules {
		output.ModuleLogger(m.Name).Debug("registered", "path", m.Path)
	}

	if !w.diff {
		return nil
	}
	snap, err := ws.Snapshot()
	if err != nil {
		return err
	}
	w.last = snap
	return nil
}

// onChange is the tracker callback. The changed paths are already marked
// dirty in the tracker, so a refresh picks them up.
func (w *watcher) onChange(_ context.Context, changed []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ws == nil {
		return nil
	}
	output.Debug("descriptors changed", "count", len(changed))

	for _, m := range w.ws.Registry.Refresh() {
		md, err := w.ws.Metadata.Get(m.Name)
		if err != nil {
			return err
		}
		output.ModuleLogger(m.Name).Info("registered",
			"id", metadata.ProjectIdentifier(m.Name),
			"version", md.Version,
		)
	}
	for _, p := range w.ws.Registry.Pending() {
		if p.Err == nil {
			output.Debug("awaiting content", "path", p.Path)
		}
	}

	if !w.diff {
		return nil
	}

	snap, err := w.ws.Snapshot()
	if err != nil {
		return err
	}
	result, err := output.DiffSnapshots(w.last, snap, w.color)
	if err != nil {
		return err
	}
	w.last = snap

	if !result.IsEmpty() {
		fmt.Fprintln(w.out, output.RenderDiff(result, output.GetStyles()))
	}
	return nil
}
