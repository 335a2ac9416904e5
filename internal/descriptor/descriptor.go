// Package descriptor defines the per-module descriptor document and the
// decoders that turn its textual forms (CUE, YAML, TOML) into a Descriptor.
//
// Only two relations are structural: an optional parent reference and the
// list of child module references. Everything else is carried as payload
// and never inspected by the workspace registry.
package descriptor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultFilename is the descriptor filename used when none is configured.
const DefaultFilename = "project.cue"

// ParentRef is the optional parent declaration of a descriptor.
type ParentRef struct {
	// RelativePath points at the parent descriptor. Empty means
	// "../<descriptor filename>".
	RelativePath string `json:"relativePath,omitempty" yaml:"relativePath,omitempty" toml:"relativePath"`
}

// Descriptor is the decoded content of one descriptor file.
type Descriptor struct {
	// Name is the display name declared in the file. Informational only;
	// the registry derives module names from paths.
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`

	// Version is the declared version. Children without one inherit it.
	Version string `json:"version,omitempty" yaml:"version,omitempty" toml:"version"`

	// Parent is nil when the descriptor declares no parent.
	Parent *ParentRef `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent"`

	// Modules are child module references in declaration order.
	Modules []string `json:"modules,omitempty" yaml:"modules,omitempty" toml:"modules"`

	// Dependencies is opaque payload.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies"`
}

// HasParent reports whether the descriptor declares a parent.
func (d *Descriptor) HasParent() bool {
	return d != nil && d.Parent != nil
}

// ParentPath returns the declared relative path of the parent descriptor,
// or the default "../<filename>" when the declaration omits one.
func (d *Descriptor) ParentPath(filename string) string {
	if d.Parent != nil && strings.TrimSpace(d.Parent.RelativePath) != "" {
		return strings.TrimSpace(d.Parent.RelativePath)
	}
	return DefaultRelativePath(filename)
}

// ChildModules returns the non-blank child references in declaration order.
func (d *Descriptor) ChildModules() []string {
	if d == nil {
		return nil
	}
	children := make([]string, 0, len(d.Modules))
	for _, m := range d.Modules {
		if m = strings.TrimSpace(m); m != "" {
			children = append(children, m)
		}
	}
	return children
}

// DefaultRelativePath returns the implicit parent reference for filename.
func DefaultRelativePath(filename string) string {
	return ".." + string(filepath.Separator) + filename
}

// Decoder turns raw descriptor content into a Descriptor.
type Decoder interface {
	Decode(path string, data []byte) (*Descriptor, error)
}

// ForFilename returns the decoder matching the extension of filename.
func ForFilename(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		return NewCUEDecoder()
	case ".yaml", ".yml":
		return YAMLDecoder{}, nil
	case ".toml":
		return TOMLDecoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q (expected .cue, .yaml, .yml or .toml)", filename)
	}
}

// SupportedExtensions lists the descriptor file extensions ForFilename accepts.
func SupportedExtensions() []string {
	return []string{".cue", ".yaml", ".yml", ".toml"}
}
