package workspace

import (
	"bytes"

	"github.com/spf13/afero"

	"github.com/opmodel/modgraph/internal/descriptor"
	"github.com/opmodel/modgraph/internal/output"
)

// visitSet is the per-pass cycle guard. It remembers visit order so that
// newly found descriptors are queued deterministically.
type visitSet struct {
	seen  map[string]struct{}
	order []string
}

func newVisitSet() *visitSet {
	return &visitSet{seen: make(map[string]struct{})}
}

func (v *visitSet) add(path string) {
	if _, ok := v.seen[path]; ok {
		return
	}
	v.seen[path] = struct{}{}
	v.order = append(v.order, path)
}

func (v *visitSet) has(path string) bool {
	_, ok := v.seen[path]
	return ok
}

// discoverer follows parent and child references from a parsed descriptor.
type discoverer struct {
	fs          afero.Fs
	resolver    Resolver
	reader      ContentReader
	parser      Parser
	projectRoot string
}

// discover marks path visited and walks its parent and children. Targets
// that do not exist or lie outside the project root are skipped. Targets
// that cannot be read or parsed are visited but not walked.
func (d *discoverer) discover(path string, desc *descriptor.Descriptor, visited *visitSet) {
	visited.add(path)

	if desc.HasParent() {
		parent := d.resolver.Resolve(path, desc.ParentPath(d.resolver.Descriptor))
		d.follow(path, parent, visited)
	}

	for _, child := range desc.ChildModules() {
		d.follow(path, d.resolver.Resolve(path, child), visited)
	}
}

func (d *discoverer) follow(from, target string, visited *visitSet) {
	if visited.has(target) {
		return
	}
	if !isWithin(d.projectRoot, target) {
		output.Debug("skipping reference outside project", "from", from, "target", target)
		return
	}
	if !d.exists(target) {
		output.Debug("skipping unresolved reference", "from", from, "target", target)
		return
	}

	visited.add(target)

	data, ok := d.read(target)
	if !ok {
		return
	}
	desc, err := d.parser.Parse(target, data)
	if err != nil {
		output.Debug("related descriptor not parsed", "path", target, "err", err)
		return
	}
	d.discover(target, desc, visited)
}

func (d *discoverer) exists(path string) bool {
	fi, err := d.fs.Stat(path)
	return err == nil && !fi.IsDir()
}

// read returns the content of path, or false when the file is missing,
// unreadable or blank.
func (d *discoverer) read(path string) ([]byte, bool) {
	if !d.exists(path) {
		return nil, false
	}
	data, err := d.reader.ReadFile(path)
	if err != nil {
		output.Debug("descriptor not readable", "path", path, "err", err)
		return nil, false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false
	}
	return data, true
}
