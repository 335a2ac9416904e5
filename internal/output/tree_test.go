package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderModuleTree_Empty(t *testing.T) {
	assert.Empty(t, RenderModuleTree("proj", nil))
}

func TestRenderModuleTree_NestsByPath(t *testing.T) {
	got := RenderModuleTree("proj", map[string]string{
		"":          "1.0.0",
		"web":       "",
		"services":  "",
		"libs/core": "2.1.0",
	})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Contains(t, lines[0], "proj/")
	assert.Contains(t, lines[0], "1.0.0")
	// Children sorted alphabetically; libs is an intermediate directory.
	assert.Contains(t, lines[1], "├── ")
	assert.Contains(t, lines[1], "libs/")
	assert.Contains(t, lines[2], "│   └── ")
	assert.Contains(t, lines[2], "core/")
	assert.Contains(t, lines[2], "2.1.0")
	assert.Contains(t, lines[3], "services/")
	assert.Contains(t, lines[4], "└── ")
	assert.Contains(t, lines[4], "web/")
}

func TestRenderModuleTree_DescriptionAligned(t *testing.T) {
	got := RenderModuleTree("proj", map[string]string{
		"a": "v1",
	})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 2)
	idx := strings.Index(lines[1], "v1")
	require.Greater(t, idx, 0)
	assert.GreaterOrEqual(t, len([]rune(lines[1][:idx])), descriptionColumn-1)
}
