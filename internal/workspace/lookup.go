package workspace

import (
	"fmt"
	"path/filepath"

	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/output"
)

// Module returns the module whose descriptor is at path.
func (r *Registry) Module(path string) (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	m, ok := r.modules[filepath.Clean(path)]
	return m, ok
}

// ModuleByName returns the module with the given name. The project root
// module is named "".
func (r *Registry) ModuleByName(name string) (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	for _, p := range r.order {
		if m := r.modules[p]; m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Root returns the module at the project root.
func (r *Registry) Root() (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	m, ok := r.modules[r.rootPath()]
	return m, ok
}

// Modules returns all modules, descendants before ancestors.
func (r *Registry) Modules() []*Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	out := make([]*Module, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.modules[p])
	}
	return out
}

// ModuleNames returns the names of all modules.
func (r *Registry) ModuleNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	names := make([]string, 0, len(r.order))
	for _, p := range r.order {
		names = append(names, r.modules[p].Name)
	}
	return names
}

// NearestEnclosing returns the module owning file: the first directory,
// walking up from file, that holds a descriptor decides the answer. If that
// descriptor is not registered the result is not found.
func (r *Registry) NearestEnclosing(file string) (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	dir := filepath.Clean(file)
	if fi, err := r.fs.Stat(dir); err != nil || !fi.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, r.filename)
		if fi, err := r.fs.Stat(candidate); err == nil && !fi.IsDir() {
			m, ok := r.modules[candidate]
			return m, ok
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, false
		}
		dir = parent
	}
}

// Focused returns the focused module. Until focus is set explicitly it
// defaults to the project root module, once that is registered.
func (r *Registry) Focused() (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	return r.focusedModule()
}

// FocusedName returns the name of the focused module, or "" when nothing
// is focused.
func (r *Registry) FocusedName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh()

	if m, ok := r.focusedModule(); ok {
		return m.Name
	}
	return ""
}

// SetFocused focuses m and notifies the focus sink. Focusing the module
// that is already focused does nothing.
func (r *Registry) SetFocused(m *Module) error {
	if m == nil {
		return fmt.Errorf("focusing module: %w", oerrors.ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modules[m.Path]; !ok {
		return oerrors.NewNotFoundError(
			fmt.Sprintf("module %s is not registered", displayName(m.Name)),
			m.Path,
			"",
		)
	}
	if m.Path == r.focused {
		return nil
	}

	r.focused = m.Path
	output.ModuleLogger(m.Name).Debug("focused")
	if err := r.sink.FocusChanged(m.Name); err != nil {
		output.Warn("focus notification failed", "module", displayName(m.Name), "err", err)
	}
	return nil
}

func (r *Registry) focusedModule() (*Module, bool) {
	if r.focused == "" {
		if _, ok := r.modules[r.rootPath()]; ok {
			r.focused = r.rootPath()
		}
	}
	m, ok := r.modules[r.focused]
	return m, ok
}

func (r *Registry) rootPath() string {
	return filepath.Join(r.root, r.filename)
}
