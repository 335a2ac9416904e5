// Package watch tracks descriptor file changes for the workspace registry.
//
// A Tracker seeds itself with every descriptor under its base directory and
// then records changes, either reported explicitly through Mark or observed
// by the fsnotify loop in Run. Each consumer drains its own dirty set, so
// several readers can share one Tracker.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/output"
)

// DefaultDebounce is the quiet period before OnChange fires.
const DefaultDebounce = 500 * time.Millisecond

// defaultIgnores are never tracked or descended into.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/cue.mod/pkg/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters for a Tracker.
type Config struct {
	// BaseDir is the directory to track. Empty means the working directory.
	BaseDir string

	// Descriptor is the descriptor filename. Only files with this base name
	// are tracked.
	Descriptor string

	// Ignore are extra doublestar patterns, relative to BaseDir, merged
	// with the built-in ignores.
	Ignore []string

	// Debounce is the quiet period after the last event before OnChange
	// fires. Zero or negative values use DefaultDebounce.
	Debounce time.Duration

	// OnChange receives the absolute paths changed during the debounce
	// window. A nil callback is a no-op.
	OnChange func(ctx context.Context, changed []string) error
}

// Tracker records descriptor changes per consumer.
type Tracker struct {
	cfg      Config
	baseDir  string
	pattern  string
	ignores  []string
	debounce time.Duration
	started  atomic.Bool

	mu    sync.Mutex
	seen  map[string]struct{}
	dirty map[string]map[string]struct{}
}

// New validates cfg and walks BaseDir, recording every descriptor found as
// changed.
func New(cfg Config) (*Tracker, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		baseDir = wd
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}

	if cfg.Descriptor == "" || cfg.Descriptor != filepath.Base(cfg.Descriptor) {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("descriptor %q must be a bare filename", cfg.Descriptor),
			"", "descriptor", "",
		)
	}

	if err := ValidatePatterns(cfg.Ignore); err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	t := &Tracker{
		cfg:      cfg,
		baseDir:  absBase,
		pattern:  "**/" + doublestar.EscapeMeta(cfg.Descriptor),
		ignores:  ignores,
		debounce: debounce,
		seen:     make(map[string]struct{}),
		dirty:    make(map[string]map[string]struct{}),
	}

	if err := t.scan(); err != nil {
		return nil, err
	}

	return t, nil
}

// BaseDir returns the absolute tracked directory.
func (t *Tracker) BaseDir() string {
	return t.baseDir
}

// DirtyFiles returns the descriptors changed since consumer last asked,
// sorted. A consumer's first call returns every descriptor seen so far.
func (t *Tracker) DirtyFiles(consumer string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.dirty[consumer]
	if !ok {
		set = maps.Clone(t.seen)
	}
	t.dirty[consumer] = make(map[string]struct{})

	return slices.Sorted(maps.Keys(set))
}

// Mark records paths as changed for every consumer. Relative paths are
// taken relative to BaseDir. Paths that are not descriptors or that are
// ignored are dropped.
func (t *Tracker) Mark(paths ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(t.baseDir, p)
		}
		p = filepath.Clean(p)
		if !t.tracks(p) {
			continue
		}
		t.seen[p] = struct{}{}
		for _, set := range t.dirty {
			set[p] = struct{}{}
		}
	}
}

// Run watches BaseDir with fsnotify until ctx is cancelled. Descriptor
// writes are marked immediately and OnChange is called once per debounce
// window. Run returns nil on cancellation and may be called only once.
func (t *Tracker) Run(ctx context.Context) error {
	if !t.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: creating fsnotify watcher: %v", oerrors.ErrWatch, err)
	}
	defer func() {
		if closeErr := fsw.Close(); closeErr != nil {
			output.Warn("closing fsnotify watcher", "err", closeErr)
		}
	}()

	if err := t.addDirectories(fsw); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(t.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if t.cfg.OnChange != nil {
			if err := t.cfg.OnChange(ctx, changed); err != nil {
				output.Warn("change callback failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	output.Debug("watching", "dir", t.baseDir, "pattern", t.pattern)

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("%w: event channel closed", oerrors.ErrWatch)
			}

			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
				continue
			}

			var changed []string
			if evt.Has(fsnotify.Create) {
				changed = t.maybeAddDir(fsw, evt.Name)
			}
			path := filepath.Clean(evt.Name)
			if t.tracks(path) {
				changed = append(changed, path)
			}
			if len(changed) == 0 {
				continue
			}

			t.Mark(changed...)
			output.Debug("descriptors changed", "paths", changed, "op", evt.Op.String())

			mu.Lock()
			for _, p := range changed {
				pending[p] = struct{}{}
			}
			if timer == nil {
				timer = time.AfterFunc(t.debounce, fire)
			} else {
				timer.Reset(t.debounce)
			}
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("%w: error channel closed", oerrors.ErrWatch)
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				output.Warn("event queue overflowed, rescanning", "dir", t.baseDir)
				if scanErr := t.scan(); scanErr != nil {
					return scanErr
				}
				continue
			}
			output.Warn("fsnotify error", "err", err)
		}
	}
}

// scan walks BaseDir and marks every descriptor.
func (t *Tracker) scan() error {
	var found []string
	walkErr := filepath.WalkDir(t.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			output.Debug("skipping inaccessible path", "path", path, "err", err)
			return nil //nolint:nilerr // inaccessible paths are skipped
		}
		if d.IsDir() {
			if path != t.baseDir && t.isIgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if t.tracks(path) {
			found = append(found, path)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("scanning %s: %w", t.baseDir, walkErr)
	}

	t.Mark(found...)
	output.Debug("initial scan", "dir", t.baseDir, "descriptors", len(found))
	return nil
}

func (t *Tracker) addDirectories(fsw *fsnotify.Watcher) error {
	_, err := t.watchTree(fsw, t.baseDir)
	return err
}

// maybeAddDir watches a directory created after Run started, together with
// every directory below it, and returns the descriptors already inside.
func (t *Tracker) maybeAddDir(fsw *fsnotify.Watcher, path string) []string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || t.isIgnoredDir(path) {
		return nil
	}
	found, err := t.watchTree(fsw, filepath.Clean(path))
	if err != nil {
		output.Warn("watching new directory", "path", path, "err", err)
	}
	return found
}

// watchTree adds root and its non-ignored subdirectories to fsw and
// returns the descriptors found on the way. A directory is added before
// its entries are read, so files created during the walk are either
// listed or reported by fsnotify.
func (t *Tracker) watchTree(fsw *fsnotify.Watcher, root string) ([]string, error) {
	var found []string
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // inaccessible paths are skipped
		}
		if !d.IsDir() {
			if t.tracks(path) {
				found = append(found, path)
			}
			return nil
		}
		if path != t.baseDir && t.isIgnoredDir(path) {
			return filepath.SkipDir
		}
		if addErr := fsw.Add(path); addErr != nil {
			return fmt.Errorf("%w: adding directory %q: %v", oerrors.ErrWatch, path, addErr)
		}
		return nil
	})
	return found, walkErr
}

// tracks reports whether path is a non-ignored descriptor under BaseDir.
func (t *Tracker) tracks(path string) bool {
	rel, err := filepath.Rel(t.baseDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}
	if !matchAny([]string{t.pattern}, rel) {
		return false
	}
	return !matchAny(t.ignores, rel)
}

func (t *Tracker) isIgnoredDir(path string) bool {
	rel, err := filepath.Rel(t.baseDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return matchAny(t.ignores, rel) || matchAny(t.ignores, rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// ValidatePatterns checks that every pattern is a valid doublestar glob.
func ValidatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return oerrors.NewValidationError(
				fmt.Sprintf("invalid ignore pattern %q", pat),
				"", "ignore",
				"patterns use doublestar syntax, e.g. \"**/testdata/**\"",
			)
		}
	}
	return nil
}
