package workspace

import (
	"github.com/spf13/afero"

	"github.com/opmodel/modgraph/internal/descriptor"
)

// ChangeTracker reports files touched since consumer last asked.
type ChangeTracker interface {
	DirtyFiles(consumer string) []string
}

// ContentReader reads raw descriptor content.
type ContentReader interface {
	ReadFile(path string) ([]byte, error)
}

// Parser decodes descriptor content.
type Parser interface {
	Parse(path string, data []byte) (*descriptor.Descriptor, error)
}

// Invalidator evicts cached metadata for a module and propagates the
// eviction downstream.
type Invalidator interface {
	EvictAndPropagate(moduleName string) error
}

// FocusSink is told about focus changes.
type FocusSink interface {
	FocusChanged(moduleName string) error
}

// FileReader reads descriptors from an afero filesystem.
type FileReader struct {
	FS afero.Fs
}

// ReadFile implements ContentReader.
func (r FileReader) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(r.FS, path)
}

type noopTracker struct{}

func (noopTracker) DirtyFiles(string) []string { return nil }

type noopInvalidator struct{}

func (noopInvalidator) EvictAndPropagate(string) error { return nil }

type noopFocusSink struct{}

func (noopFocusSink) FocusChanged(string) error { return nil }
