package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDiff(t *testing.T) {
	styles := GetStyles()

	t.Run("renders no changes message", func(t *testing.T) {
		assert.Equal(t, "No changes detected.", RenderDiff(&DiffResult{}, styles))
		assert.Equal(t, "No changes detected.", RenderDiff(nil, styles))
	})

	t.Run("renders added modules", func(t *testing.T) {
		result := RenderDiff(&DiffResult{Added: []string{"services/api"}}, styles)

		assert.Contains(t, result, "Added:")
		assert.Contains(t, result, "services/api")
		assert.Contains(t, result, "1 added")
	})

	t.Run("renders removed modules", func(t *testing.T) {
		result := RenderDiff(&DiffResult{Removed: []string{"legacy"}}, styles)

		assert.Contains(t, result, "Removed:")
		assert.Contains(t, result, "legacy")
		assert.Contains(t, result, "1 removed")
	})

	t.Run("renders modified modules with indented diff", func(t *testing.T) {
		result := RenderDiff(&DiffResult{
			Modified: []ModifiedItem{{Name: "web", Diff: "version\n  - 1.0.0\n  + 1.1.0"}},
		}, styles)

		assert.Contains(t, result, "Modified:")
		assert.Contains(t, result, "web")
		assert.Contains(t, result, "    version")
		assert.Contains(t, result, "1 modified")
	})
}

func TestDiffSnapshots(t *testing.T) {
	before := map[string]interface{}{
		"web":    map[string]interface{}{"version": "1.0.0"},
		"legacy": map[string]interface{}{"version": "0.1.0"},
		"same":   map[string]interface{}{"version": "2.0.0"},
	}
	after := map[string]interface{}{
		"web":  map[string]interface{}{"version": "1.1.0"},
		"api":  map[string]interface{}{"version": "0.0.1"},
		"same": map[string]interface{}{"version": "2.0.0"},
	}

	result, err := DiffSnapshots(before, after, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"api"}, result.Added)
	assert.Equal(t, []string{"legacy"}, result.Removed)
	require.Len(t, result.Modified, 1)
	assert.Equal(t, "web", result.Modified[0].Name)
	assert.Contains(t, result.Modified[0].Diff, "1.1.0")
}

func TestDiffSnapshots_NoChanges(t *testing.T) {
	snap := map[string]interface{}{"a": map[string]interface{}{"modules": []string{"b"}}}

	result, err := DiffSnapshots(snap, snap, false)
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
}

func TestIndentDiff(t *testing.T) {
	assert.Empty(t, IndentDiff("", "  "))
	assert.Equal(t, "  a\n  b\n", IndentDiff("a\n\nb", "  "))
}
