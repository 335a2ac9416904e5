package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptSink_FocusChanged(t *testing.T) {
	var buf bytes.Buffer
	sink := NewPromptSink(&buf, "proj")

	require.NoError(t, sink.FocusChanged("services/api"))

	assert.Contains(t, buf.String(), "proj:")
	assert.Contains(t, buf.String(), "services/api")
	assert.Equal(t, "services/api", sink.Last())
}

func TestFormatPrompt_RootModule(t *testing.T) {
	assert.Contains(t, FormatPrompt("proj", ""), RootModuleLabel)
}
