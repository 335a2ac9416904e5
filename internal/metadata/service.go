// Package metadata caches per-module project metadata and invalidates it
// when the workspace registry re-parses a module.
//
// Entries are keyed by project identifier ("project#<module name>").
// Evicting an entry also evicts every entry registered downstream of it,
// transitively, and then notifies the invalidation listeners.
package metadata

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/opmodel/modgraph/internal/output"
)

// identifierPrefix prefixes every project identifier.
const identifierPrefix = "project#"

// ProjectIdentifier returns the cache key of moduleName.
func ProjectIdentifier(moduleName string) string {
	return identifierPrefix + moduleName
}

// ModuleName is the inverse of ProjectIdentifier.
func ModuleName(identifier string) (string, bool) {
	return strings.CutPrefix(identifier, identifierPrefix)
}

// ProjectMetadata is the derived view of one module.
type ProjectMetadata struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Module     string `json:"module" yaml:"module"`
	Path       string `json:"path" yaml:"path"`

	// Version is the declared version, or the nearest ancestor's when the
	// module declares none.
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Inherited bool   `json:"inherited,omitempty" yaml:"inherited,omitempty"`

	// ParentPath is empty when the module has no registered parent.
	Parent     string `json:"parent,omitempty" yaml:"parent,omitempty"`
	ParentPath string `json:"parentPath,omitempty" yaml:"parentPath,omitempty"`

	Children     []string `json:"children,omitempty" yaml:"children,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Provider computes metadata for a module.
type Provider interface {
	Compute(moduleName string) (*ProjectMetadata, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(moduleName string) (*ProjectMetadata, error)

// Compute implements Provider.
func (f ProviderFunc) Compute(moduleName string) (*ProjectMetadata, error) {
	return f(moduleName)
}

// Listener is called with the identifiers evicted by one invalidation.
type Listener func(identifiers []string)

// Service is a metadata cache with downstream invalidation. It is safe for
// concurrent use. The provider runs without the service lock held, so it may
// query the registry; listeners run from EvictAndPropagate, which the
// registry calls with its own lock held, so listeners must not query it.
type Service struct {
	provider Provider

	mu         sync.Mutex
	cache      map[string]*ProjectMetadata
	generation map[string]uint64
	downstream map[string]map[string]struct{}
	listeners  []Listener
}

// NewService returns an empty cache backed by provider.
func NewService(provider Provider) *Service {
	return &Service{
		provider:   provider,
		cache:      make(map[string]*ProjectMetadata),
		generation: make(map[string]uint64),
		downstream: make(map[string]map[string]struct{}),
	}
}

// OnInvalidate registers a listener.
func (s *Service) OnInvalidate(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Get returns the cached metadata of moduleName, computing it on a miss.
// A module with a parent is registered downstream of that parent.
func (s *Service) Get(moduleName string) (*ProjectMetadata, error) {
	id := ProjectIdentifier(moduleName)

	s.mu.Lock()
	if md, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return md, nil
	}
	gen := s.generation[id]
	s.mu.Unlock()

	md, err := s.provider.Compute(moduleName)
	if err != nil {
		return nil, fmt.Errorf("computing metadata for %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if md.ParentPath != "" {
		s.registerLocked(ProjectIdentifier(md.Parent), id)
	}
	// An eviction that raced with Compute wins; the result is returned but
	// not cached.
	if s.generation[id] == gen {
		s.cache[id] = md
	}
	return md, nil
}

// cached reports whether moduleName has a cached entry.
func (s *Service) cached(moduleName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[ProjectIdentifier(moduleName)]
	return ok
}

// Evict drops the entry of moduleName and reports whether one existed.
func (s *Service) Evict(moduleName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(ProjectIdentifier(moduleName))
}

// RegisterDependency records that downstream must be invalidated whenever
// upstream is.
func (s *Service) RegisterDependency(upstream, downstream string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(ProjectIdentifier(upstream), ProjectIdentifier(downstream))
}

// dependents returns the identifiers registered directly downstream of
// moduleName, sorted.
func (s *Service) dependents(moduleName string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.downstream[ProjectIdentifier(moduleName)]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// NotifyDownstream evicts everything transitively downstream of moduleName,
// notifies listeners and returns the evicted identifiers in visit order.
// Cycles in the dependency graph are tolerated.
func (s *Service) NotifyDownstream(moduleName string) []string {
	s.mu.Lock()
	ids := s.propagateLocked(ProjectIdentifier(moduleName))
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	notify(listeners, ids)
	return ids
}

// EvictAndPropagate evicts moduleName and everything downstream of it.
func (s *Service) EvictAndPropagate(moduleName string) error {
	id := ProjectIdentifier(moduleName)

	s.mu.Lock()
	s.evictLocked(id)
	ids := append([]string{id}, s.propagateLocked(id)...)
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	output.Debug("metadata invalidated", "identifiers", strings.Join(ids, ","))
	notify(listeners, ids)
	return nil
}

func (s *Service) registerLocked(upstream, downstream string) {
	if upstream == downstream {
		return
	}
	set, ok := s.downstream[upstream]
	if !ok {
		set = make(map[string]struct{})
		s.downstream[upstream] = set
	}
	set[downstream] = struct{}{}
}

func (s *Service) evictLocked(id string) bool {
	s.generation[id]++
	if _, ok := s.cache[id]; !ok {
		return false
	}
	delete(s.cache, id)
	return true
}

// propagateLocked evicts the transitive downstream closure of id, breadth
// first with sorted siblings.
func (s *Service) propagateLocked(id string) []string {
	visited := map[string]struct{}{id: {}}
	queue := []string{id}
	var evicted []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		next := make([]string, 0, len(s.downstream[current]))
		for d := range s.downstream[current] {
			next = append(next, d)
		}
		sort.Strings(next)

		for _, d := range next {
			if _, ok := visited[d]; ok {
				continue
			}
			visited[d] = struct{}{}
			s.evictLocked(d)
			evicted = append(evicted, d)
			queue = append(queue, d)
		}
	}
	return evicted
}

func notify(listeners []Listener, ids []string) {
	if len(ids) == 0 {
		return
	}
	for _, l := range listeners {
		l(ids)
	}
}
