package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	root := Project(t, map[string]string{
		"project.cue":        "version: \"1\"\n",
		"libs/a/project.cue": "",
	})

	data, err := os.ReadFile(filepath.Join(root, "project.cue"))
	require.NoError(t, err)
	assert.Equal(t, "version: \"1\"\n", string(data))
	assert.FileExists(t, filepath.Join(root, "libs", "a", "project.cue"))
}
