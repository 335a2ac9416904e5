package workspace

import (
	"strings"

	"github.com/spf13/afero"
)

// Resolver turns relative descriptor references into descriptor paths.
// It only stats the filesystem, never writes to it.
type Resolver struct {
	FS afero.Fs

	// Descriptor is the filename appended when a reference names a
	// directory.
	Descriptor string
}

// Resolve resolves ref against base. base may be a descriptor file or a
// directory. ref is a "/" or "\" separated reference that may start with
// any number of ".." segments; without them it names a direct child.
func (r Resolver) Resolve(base, ref string) string {
	base = trimSep(base)

	for r.isFile(base) {
		base = trimSep(parentDir(base))
	}

	segments := splitRef(ref)
	climb := 0
	for climb < len(segments) && segments[climb] == ".." {
		climb++
	}

	for i := 0; i < climb; i++ {
		base = parentDir(base)
	}

	base = trimSep(base)
	if base == sep {
		base = ""
	}

	var b strings.Builder
	b.WriteString(base)
	for _, seg := range segments[climb:] {
		if seg == "" || seg == "." {
			continue
		}
		b.WriteString(sep)
		b.WriteString(seg)
	}
	b.WriteString(sep)

	resolved := b.String()
	if r.isDir(resolved) {
		resolved += r.Descriptor
	}

	resolved = trimSep(resolved)
	if resolved == "" {
		return sep
	}
	return resolved
}

func (r Resolver) isFile(p string) bool {
	if p == "" {
		return false
	}
	fi, err := r.FS.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func (r Resolver) isDir(p string) bool {
	if p == "" {
		return false
	}
	fi, err := r.FS.Stat(p)
	return err == nil && fi.IsDir()
}

// parentDir removes the last segment of p. The filesystem root is
// represented by the empty string.
func parentDir(p string) string {
	p = trimSep(p)
	idx := strings.LastIndex(p, sep)
	if idx <= 0 {
		return ""
	}
	return p[:idx]
}

func trimSep(p string) string {
	if len(p) > 1 {
		return strings.TrimSuffix(p, sep)
	}
	return p
}

func splitRef(ref string) []string {
	return strings.FieldsFunc(ref, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}
