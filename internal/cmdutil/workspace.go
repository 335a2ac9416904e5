package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/opmodel/modgraph/internal/config"
	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/metadata"
	"github.com/opmodel/modgraph/internal/output"
	"github.com/opmodel/modgraph/internal/watch"
	"github.com/opmodel/modgraph/internal/workspace"
)

// WorkspaceOptions configures OpenWorkspace.
type WorkspaceOptions struct {
	// OnChange is passed to the tracker and fires after debounced
	// descriptor changes. Only used by `mod watch`.
	OnChange func(ctx context.Context, changed []string) error

	// PromptWriter receives focus prompts. nil means stdout.
	PromptWriter io.Writer
}

// Workspace bundles the registry with the collaborators wired into it.
type Workspace struct {
	Registry *workspace.Registry
	Tracker  *watch.Tracker
	Metadata *metadata.Service
	Prompt   *output.PromptSink
}

// OpenWorkspace scans the project named by cfg and returns a registry fed
// by a descriptor tracker and invalidating a metadata service.
func OpenWorkspace(ctx context.Context, cfg *config.Config, opts WorkspaceOptions) (*Workspace, error) {
	root, err := projectRoot(cfg.Project)
	if err != nil {
		return nil, err
	}

	var tracker *watch.Tracker
	scan := func() error {
		var err error
		tracker, err = watch.New(watch.Config{
			BaseDir:    root,
			Descriptor: cfg.Descriptor,
			Ignore:     cfg.Ignore,
			Debounce:   cfg.Watch.Debounce,
			OnChange:   opts.OnChange,
		})
		return err
	}
	if err := output.RunWithSpinner(ctx, scan, output.WithTitle("Scanning "+root)); err != nil {
		return nil, err
	}

	provider := &lazyProvider{}
	svc := metadata.NewService(provider)
	prompt := output.NewPromptSink(opts.PromptWriter, filepath.Base(root))

	reg, err := workspace.New(root,
		workspace.WithDescriptorFilename(cfg.Descriptor),
		workspace.WithChangeTracker(tracker),
		workspace.WithConsumer(workspace.DefaultConsumer),
		workspace.WithInvalidator(svc),
		workspace.WithFocusSink(prompt),
	)
	if err != nil {
		return nil, err
	}
	provider.set(metadata.NewRegistryProvider(reg))

	// The root descriptor seeds discovery even when ignore patterns hide it
	// from the tracker.
	rootDescriptor := filepath.Join(root, cfg.Descriptor)
	if fi, err := os.Stat(rootDescriptor); err == nil && !fi.IsDir() {
		reg.MarkPending(rootDescriptor)
	}

	output.Debug("workspace opened", "root", root, "descriptor", cfg.Descriptor)

	return &Workspace{
		Registry: reg,
		Tracker:  tracker,
		Metadata: svc,
		Prompt:   prompt,
	}, nil
}

// Snapshot returns the metadata of every registered module keyed by
// display name, for diffing.
func (w *Workspace) Snapshot() (map[string]interface{}, error) {
	snap := make(map[string]interface{})
	for _, m := range w.Registry.Modules() {
		md, err := w.Metadata.Get(m.Name)
		if err != nil {
			return nil, err
		}
		key := m.Name
		if key == "" {
			key = output.RootModuleLabel
		}
		snap[key] = md
	}
	return snap, nil
}

// projectRoot expands and checks the configured project directory.
func projectRoot(project string) (string, error) {
	if project == "" {
		project = "."
	}
	expanded, err := config.ExpandPath(project)
	if err != nil {
		return "", fmt.Errorf("expanding project path: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolving project path: %w", err)
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return "", oerrors.NewNotFoundError("project directory does not exist", abs,
			"pass --project or set MODGRAPH_PROJECT")
	case os.IsPermission(err):
		return "", oerrors.Wrap(oerrors.ErrPermission, "reading "+abs)
	case err != nil:
		return "", fmt.Errorf("checking project directory: %w", err)
	case !info.IsDir():
		return "", oerrors.NewValidationError("project root is not a directory", abs, "project", "")
	}
	return abs, nil
}

// lazyProvider breaks the construction cycle between the registry, which
// needs the service as invalidator, and the provider, which reads the
// registry.
type lazyProvider struct {
	mu sync.RWMutex
	p  metadata.Provider
}

func (l *lazyProvider) set(p metadata.Provider) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p = p
}

func (l *lazyProvider) Compute(moduleName string) (*metadata.ProjectMetadata, error) {
	l.mu.RLock()
	p := l.p
	l.mu.RUnlock()
	if p == nil {
		return nil, fmt.Errorf("metadata provider not ready")
	}
	return p.Compute(moduleName)
}
