// Package workspace discovers, caches and orders the module descriptors of a
// multi-module project tree and answers path and name lookups against that
// cache.
//
// A Registry is refreshed lazily: every read first folds the changes reported
// by its ChangeTracker into the pending set, parses whatever pending
// descriptors have content, follows their parent and child references to pull
// in related descriptors, and re-sorts the cache so that descendants precede
// their ancestors.
package workspace

import (
	"path/filepath"
	"strings"

	"github.com/opmodel/modgraph/internal/descriptor"
)

const sep = string(filepath.Separator)

// Module is one registered descriptor. Modules are immutable; a re-parse
// replaces the Module at the same path.
type Module struct {
	// Path is the absolute, cleaned path of the descriptor file.
	Path string

	// Root is the directory containing the descriptor.
	Root string

	// Name is Root relative to the project root. The project root module
	// has the empty name.
	Name string

	// Descriptor is the parsed document.
	Descriptor *descriptor.Descriptor
}

// IsProjectRoot reports whether m is the module at the project root.
func (m *Module) IsProjectRoot() bool {
	return m.Name == ""
}

func newModule(projectRoot, path string, desc *descriptor.Descriptor) *Module {
	root := filepath.Dir(path)
	return &Module{
		Path:       path,
		Root:       root,
		Name:       moduleName(projectRoot, root),
		Descriptor: desc,
	}
}

// moduleName strips the project root prefix from dir. Directories outside
// the project keep their absolute path as name.
func moduleName(projectRoot, dir string) string {
	name := strings.TrimPrefix(withSep(dir), withSep(projectRoot))
	return strings.TrimSuffix(name, sep)
}

// withSep returns dir with exactly one trailing separator.
func withSep(dir string) string {
	if strings.HasSuffix(dir, sep) {
		return dir
	}
	return dir + sep
}

// isWithin reports whether path is dir or lies below it.
func isWithin(dir, path string) bool {
	return path == dir || strings.HasPrefix(path, withSep(dir))
}
