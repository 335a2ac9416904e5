package workspace

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/opmodel/modgraph/internal/descriptor"
	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/output"
)

// DefaultConsumer is the key the registry uses when asking its
// ChangeTracker for dirty files.
const DefaultConsumer = "workspace.registry"

// Registry is the module cache of one project. All methods are safe for
// concurrent use; a single mutex serialises refreshes and reads.
//
// Collaborators are called with the mutex held and must not call back into
// the Registry.
type Registry struct {
	mu sync.Mutex

	fs          afero.Fs
	filename    string
	consumer    string
	tracker     ChangeTracker
	reader      ContentReader
	parser      Parser
	invalidator Invalidator
	sink        FocusSink
	discoverer  *discoverer

	root     string
	modules  map[string]*Module
	order    []string
	pending  map[string]struct{}
	failures map[string]error
	focused  string
}

// Option configures a Registry.
type Option func(*Registry)

// WithFS sets the filesystem used for stat calls and the default reader.
func WithFS(fs afero.Fs) Option {
	return func(r *Registry) {
		r.fs = fs
	}
}

// WithDescriptorFilename sets the descriptor filename. The default parser
// is chosen from its extension.
func WithDescriptorFilename(name string) Option {
	return func(r *Registry) {
		r.filename = name
	}
}

// WithChangeTracker sets the source of changed files.
func WithChangeTracker(t ChangeTracker) Option {
	return func(r *Registry) {
		r.tracker = t
	}
}

// WithConsumer sets the key passed to the ChangeTracker.
func WithConsumer(key string) Option {
	return func(r *Registry) {
		r.consumer = key
	}
}

// WithContentReader overrides how descriptor content is read.
func WithContentReader(cr ContentReader) Option {
	return func(r *Registry) {
		r.reader = cr
	}
}

// WithParser overrides the descriptor parser.
func WithParser(p Parser) Option {
	return func(r *Registry) {
		r.parser = p
	}
}

// WithInvalidator sets the metadata invalidator notified after each
// registration.
func WithInvalidator(inv Invalidator) Option {
	return func(r *Registry) {
		r.invalidator = inv
	}
}

// WithFocusSink sets the sink notified on focus changes.
func WithFocusSink(s FocusSink) Option {
	return func(r *Registry) {
		r.sink = s
	}
}

// New creates an empty registry for the project rooted at root. A relative
// root is made absolute. Collaborators that are not configured are replaced
// by no-op implementations.
func New(root string, opts ...Option) (*Registry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %q: %w", root, err)
	}

	r := &Registry{
		fs:       afero.NewOsFs(),
		filename: descriptor.DefaultFilename,
		consumer: DefaultConsumer,
		root:     filepath.Clean(abs),
		modules:  make(map[string]*Module),
		pending:  make(map[string]struct{}),
		failures: make(map[string]error),
	}
	for _, opt := range opts {
		opt(r)
	}

	fi, err := r.fs.Stat(r.root)
	if err != nil {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("project root %s does not exist", r.root),
			r.root,
			"pass an existing directory with --project",
		)
	}
	if !fi.IsDir() {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("project root %s is not a directory", r.root),
			r.root, "", "",
		)
	}

	if r.tracker == nil {
		r.tracker = noopTracker{}
	}
	if r.reader == nil {
		r.reader = FileReader{FS: r.fs}
	}
	if r.parser == nil {
		p, err := descriptor.NewParser(r.filename)
		if err != nil {
			return nil, err
		}
		r.parser = p
	}
	if r.invalidator == nil {
		r.invalidator = noopInvalidator{}
	}
	if r.sink == nil {
		r.sink = noopFocusSink{}
	}

	r.discoverer = &discoverer{
		fs:          r.fs,
		resolver:    Resolver{FS: r.fs, Descriptor: r.filename},
		reader:      r.reader,
		parser:      r.parser,
		projectRoot: r.root,
	}

	return r, nil
}

// ProjectRoot returns the absolute project root directory.
func (r *Registry) ProjectRoot() string {
	return r.root
}

// DescriptorFilename returns the descriptor filename the registry tracks.
func (r *Registry) DescriptorFilename() string {
	return r.filename
}

// Resolver returns the path resolver bound to the registry's filesystem.
func (r *Registry) Resolver() Resolver {
	return r.discoverer.resolver
}

// MarkPending adds descriptor paths to the pending set. Paths whose base
// name is not the descriptor filename are ignored.
func (r *Registry) MarkPending(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addPending(paths)
}

// Refresh reconciles the cache with reported changes and returns the
// modules registered or replaced by this pass, in registration order.
func (r *Registry) Refresh() []*Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refresh()
}

// PendingPath is a descriptor awaiting a successful parse.
type PendingPath struct {
	Path string

	// Err is the last parse failure, nil when the file simply had no
	// content yet.
	Err error
}

// Pending returns the pending descriptors sorted by path.
func (r *Registry) Pending() []PendingPath {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	paths := make([]string, 0, len(r.pending))
	for p := range r.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]PendingPath, 0, len(paths))
	for _, p := range paths {
		out = append(out, PendingPath{Path: p, Err: r.failures[p]})
	}
	return out
}

func (r *Registry) addPending(paths []string) {
	for _, p := range paths {
		if filepath.Base(p) == r.filename {
			r.pending[filepath.Clean(p)] = struct{}{}
		}
	}
}

// refresh runs one pass. Pending descriptors found by discovery are
// processed within the same pass; each path is attempted at most once.
func (r *Registry) refresh() []*Module {
	r.addPending(r.tracker.DirtyFiles(r.consumer))
	if len(r.pending) == 0 {
		return nil
	}

	queue := make([]string, 0, len(r.pending))
	for p := range r.pending {
		queue = append(queue, p)
	}
	sort.Strings(queue)

	attempted := make(map[string]struct{}, len(queue))
	visited := newVisitSet()
	var registered []*Module

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if _, ok := attempted[path]; ok {
			continue
		}
		attempted[path] = struct{}{}

		data, ok := r.discoverer.read(path)
		if !ok {
			continue
		}

		desc, err := r.parser.Parse(path, data)
		if err != nil {
			if prev, ok := r.failures[path]; ok && prev.Error() == err.Error() {
				output.Debug("descriptor still pending", "path", path, "err", err)
			} else {
				output.Warn("descriptor left pending", "path", path, "err", err)
			}
			r.failures[path] = err
			continue
		}

		seen := len(visited.order)
		r.discoverer.discover(path, desc, visited)
		for _, p := range visited.order[seen:] {
			if p == path {
				continue
			}
			if _, known := r.modules[p]; known {
				continue
			}
			if _, ok := r.pending[p]; !ok {
				r.pending[p] = struct{}{}
				output.Debug("discovered descriptor", "path", p, "from", path)
			}
			if _, ok := attempted[p]; !ok {
				queue = append(queue, p)
			}
		}

		m := newModule(r.root, path, desc)
		r.put(m)
		delete(r.pending, path)
		delete(r.failures, path)
		registered = append(registered, m)
		output.ModuleLogger(m.Name).Debug("registered", "path", path)
	}

	if len(registered) == 0 {
		return nil
	}

	r.order = sortOrder(r.order, r.modules)

	for _, m := range registered {
		if err := r.invalidator.EvictAndPropagate(m.Name); err != nil {
			output.Warn("metadata invalidation failed", "module", displayName(m.Name), "err", err)
		}
	}

	return registered
}

// put inserts m or replaces the module at the same path in place.
func (r *Registry) put(m *Module) {
	if _, ok := r.modules[m.Path]; !ok {
		r.order = append(r.order, m.Path)
	}
	r.modules[m.Path] = m
}

func displayName(name string) string {
	if name == "" {
		return output.RootModuleLabel
	}
	return name
}
