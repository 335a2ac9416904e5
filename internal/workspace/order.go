package workspace

import "strings"

// compareRoots orders a descendant module before its ancestor. It returns
// -1 when a lies below b, 1 when b lies below a, and 0 when the two are
// unrelated. The relation is not transitive across unrelated modules, so
// it must not be handed to a comparison sort.
func compareRoots(a, b *Module) int {
	ar, br := withSep(a.Root), withSep(b.Root)
	switch {
	case ar == br:
		return 0
	case strings.HasPrefix(ar, br):
		return -1
	case strings.HasPrefix(br, ar):
		return 1
	default:
		return 0
	}
}

// sortOrder returns a linear extension of compareRoots over order. It
// repeatedly emits the earliest remaining module that has no remaining
// descendant, so unrelated modules keep their relative order whenever the
// relation allows it and the result is deterministic.
func sortOrder(order []string, modules map[string]*Module) []string {
	remaining := make([]string, len(order))
	copy(remaining, order)

	sorted := make([]string, 0, len(order))
	for len(remaining) > 0 {
		pick := 0
		for i, p := range remaining {
			if !hasDescendant(modules[p], remaining, modules) {
				pick = i
				break
			}
		}
		sorted = append(sorted, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return sorted
}

func hasDescendant(m *Module, candidates []string, modules map[string]*Module) bool {
	for _, p := range candidates {
		if compareRoots(modules[p], m) < 0 {
			return true
		}
	}
	return false
}
