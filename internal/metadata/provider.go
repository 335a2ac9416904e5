package metadata

import (
	"fmt"

	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/workspace"
)

// ModuleSource is the part of the workspace registry the provider reads.
type ModuleSource interface {
	Module(path string) (*workspace.Module, bool)
	ModuleByName(name string) (*workspace.Module, bool)
	Resolver() workspace.Resolver
}

// RegistryProvider derives metadata from registered modules.
type RegistryProvider struct {
	src ModuleSource
}

// NewRegistryProvider returns a provider reading from src.
func NewRegistryProvider(src ModuleSource) *RegistryProvider {
	return &RegistryProvider{src: src}
}

// Compute implements Provider. A module without a declared version takes
// the version of its nearest registered ancestor.
func (p *RegistryProvider) Compute(moduleName string) (*ProjectMetadata, error) {
	m, ok := p.src.ModuleByName(moduleName)
	if !ok {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("module %q is not registered", moduleName),
			"",
			"run 'modgraph mod list --pending' to see modules awaiting a parse",
		)
	}

	md := &ProjectMetadata{
		Identifier:   ProjectIdentifier(m.Name),
		Module:       m.Name,
		Path:         m.Path,
		Version:      m.Descriptor.Version,
		Dependencies: append([]string(nil), m.Descriptor.Dependencies...),
	}

	if parent, ok := p.parentOf(m); ok {
		md.Parent = parent.Name
		md.ParentPath = parent.Path
	}

	resolver := p.src.Resolver()
	for _, ref := range m.Descriptor.ChildModules() {
		if child, ok := p.src.Module(resolver.Resolve(m.Path, ref)); ok {
			md.Children = append(md.Children, child.Name)
		}
	}

	if md.Version == "" {
		md.Version = p.inheritedVersion(m)
		md.Inherited = md.Version != ""
	}

	return md, nil
}

func (p *RegistryProvider) parentOf(m *workspace.Module) (*workspace.Module, bool) {
	if !m.Descriptor.HasParent() {
		return nil, false
	}
	resolver := p.src.Resolver()
	parentPath := resolver.Resolve(m.Path, m.Descriptor.ParentPath(resolver.Descriptor))
	return p.src.Module(parentPath)
}

// inheritedVersion walks up declared parents until one carries a version.
func (p *RegistryProvider) inheritedVersion(m *workspace.Module) string {
	visited := map[string]struct{}{m.Path: {}}
	for {
		parent, ok := p.parentOf(m)
		if !ok {
			return ""
		}
		if _, seen := visited[parent.Path]; seen {
			return ""
		}
		visited[parent.Path] = struct{}{}

		if parent.Descriptor.Version != "" {
			return parent.Descriptor.Version
		}
		m = parent
	}
}
