package metadata

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/workspace"
)

func newRegistry(t *testing.T, files map[string]string, opts ...workspace.Option) *workspace.Registry {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	reg, err := workspace.New("/proj", append([]workspace.Option{workspace.WithFS(fs)}, opts...)...)
	require.NoError(t, err)
	reg.MarkPending("/proj/project.cue")
	return reg
}

func TestRegistryProvider_Compute(t *testing.T) {
	reg := newRegistry(t, map[string]string{
		"/proj/project.cue":       "version: \"1.4.0\"\nmodules: [\"a\", \"b\"]",
		"/proj/a/project.cue":     "parent: {}\nmodules: [\"sub\", \"missing\"]\ndependencies: [\"b\"]",
		"/proj/a/sub/project.cue": "parent: {}",
		"/proj/b/project.cue":     "version: \"2.0.0\"",
	})
	p := NewRegistryProvider(reg)

	t.Run("root", func(t *testing.T) {
		md, err := p.Compute("")
		require.NoError(t, err)
		assert.Equal(t, "project#", md.Identifier)
		assert.Equal(t, "/proj/project.cue", md.Path)
		assert.Equal(t, "1.4.0", md.Version)
		assert.False(t, md.Inherited)
		assert.Empty(t, md.ParentPath)
		assert.Equal(t, []string{"a", "b"}, md.Children)
	})

	t.Run("inherits version through two levels", func(t *testing.T) {
		md, err := p.Compute("a/sub")
		require.NoError(t, err)
		assert.Equal(t, "1.4.0", md.Version)
		assert.True(t, md.Inherited)
		assert.Equal(t, "a", md.Parent)
		assert.Equal(t, "/proj/a/project.cue", md.ParentPath)
	})

	t.Run("unregistered children are omitted", func(t *testing.T) {
		md, err := p.Compute("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"sub"}, md.Children)
		assert.Equal(t, []string{"b"}, md.Dependencies)
		assert.Equal(t, "", md.Parent)
		assert.Equal(t, "/proj/project.cue", md.ParentPath)
	})

	t.Run("module without parent declaration keeps own version", func(t *testing.T) {
		md, err := p.Compute("b")
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", md.Version)
		assert.Empty(t, md.ParentPath)
	})

	t.Run("unknown module", func(t *testing.T) {
		_, err := p.Compute("nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrNotFound)
	})
}

func TestRegistryProvider_ParentCycle(t *testing.T) {
	reg := newRegistry(t, map[string]string{
		"/proj/project.cue":   "modules: [\"a\", \"b\"]",
		"/proj/a/project.cue": "parent: relativePath: \"../b/project.cue\"",
		"/proj/b/project.cue": "parent: relativePath: \"../a/project.cue\"",
	})
	p := NewRegistryProvider(reg)

	md, err := p.Compute("a")
	require.NoError(t, err)
	assert.Empty(t, md.Version)
	assert.Equal(t, "b", md.Parent)
}

func TestService_WiredAsRegistryInvalidator(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/project.cue":   "version: \"1.0.0\"\nmodules: [\"a\"]",
		"/proj/a/project.cue": "parent: {}",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	var svc *Service
	reg, err := workspace.New("/proj",
		workspace.WithFS(fs),
		workspace.WithInvalidator(invalidatorFunc(func(name string) error {
			return svc.EvictAndPropagate(name)
		})),
	)
	require.NoError(t, err)
	svc = NewService(NewRegistryProvider(reg))
	reg.MarkPending("/proj/project.cue")

	md, err := svc.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", md.Version)
	assert.Equal(t, []string{"project#a"}, svc.dependents(""))
	_, err = svc.Get("a")
	require.NoError(t, err)
	require.True(t, svc.cached("a"))

	// Re-parsing the root invalidates the child through the dependency.
	require.NoError(t, afero.WriteFile(fs, "/proj/project.cue", []byte("version: \"1.1.0\"\nmodules: [\"a\"]"), 0o644))
	reg.MarkPending("/proj/project.cue")
	reg.Refresh()

	assert.False(t, svc.cached("a"))
	md, err = svc.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", md.Version)
}

type invalidatorFunc func(string) error

func (f invalidatorFunc) EvictAndPropagate(name string) error { return f(name) }
