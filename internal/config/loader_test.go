package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return NewLoaderFs(fs)
}

func TestLoader_Load(t *testing.T) {
	loader := newMemLoader(t, map[string]string{
		"/home/dev/.modgraph/config.yaml": `
descriptor: module.yaml
project: /src/app
ignore:
  - "**/testdata/**"
watch:
  debounce: 2s
log:
  timestamps: false
`,
	})

	cfg, err := loader.Load("/home/dev/.modgraph/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "module.yaml", cfg.Descriptor)
	assert.Equal(t, "/src/app", cfg.Project)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.Ignore)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	require.NotNil(t, cfg.Log.Timestamps)
	assert.False(t, *cfg.Log.Timestamps)
}

func TestLoader_LoadMissingFile(t *testing.T) {
	loader := newMemLoader(t, nil)

	cfg, err := loader.Load("/nowhere/config.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.IsEmpty())
}

func TestLoader_LoadWithDefaults(t *testing.T) {
	loader := newMemLoader(t, map[string]string{
		"/cfg.yaml": "ignore: [\"build/**\"]\n",
	})

	cfg, err := loader.LoadWithDefaults("/cfg.yaml")
	require.NoError(t, err)

	assert.Equal(t, "project.cue", cfg.Descriptor)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Equal(t, []string{"build/**"}, cfg.Ignore)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("MODGRAPH_WATCH_DEBOUNCE", "750ms")
	t.Setenv("MODGRAPH_LOG_TIMESTAMPS", "false")

	loader := newMemLoader(t, map[string]string{
		"/cfg.yaml": "watch:\n  debounce: 2s\n",
	})

	cfg, err := loader.Load("/cfg.yaml")
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Watch.Debounce)
	require.NotNil(t, cfg.Log.Timestamps)
	assert.False(t, *cfg.Log.Timestamps)
}

func TestLoader_InvalidYAML(t *testing.T) {
	loader := newMemLoader(t, map[string]string{
		"/cfg.yaml": "descriptor: [unterminated\n",
	})

	_, err := loader.Load("/cfg.yaml")
	assert.Error(t, err)
}
