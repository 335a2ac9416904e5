package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opmodel/modgraph/internal/output"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "project.cue", cfg.Descriptor)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Empty(t, cfg.Project)
	assert.Nil(t, cfg.Log.Timestamps)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := &Config{
		Descriptor: "module.yaml",
		Ignore:     []string{"**/tmp/**"},
		Log:        LogConfig{Timestamps: output.BoolPtr(false)},
	}

	got := cfg.WithDefaults()

	assert.Equal(t, "module.yaml", got.Descriptor)
	assert.Equal(t, DefaultDebounce, got.Watch.Debounce)
	assert.Equal(t, []string{"**/tmp/**"}, got.Ignore)
	if assert.NotNil(t, got.Log.Timestamps) {
		assert.False(t, *got.Log.Timestamps)
	}

	// The receiver is left untouched.
	assert.Zero(t, cfg.Watch.Debounce)
}

func TestConfig_MergeNil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_IsEmpty(t *testing.T) {
	assert.True(t, (&Config{}).IsEmpty())
	assert.False(t, DefaultConfig().IsEmpty())
	assert.False(t, (&Config{Ignore: []string{"x"}}).IsEmpty())
}
