package output

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// PromptSink prints the focused module as a shell-style prompt line
// whenever focus changes.
type PromptSink struct {
	mu      sync.Mutex
	w       io.Writer
	project string
	last    string
}

// NewPromptSink returns a sink writing to w. A nil writer means stdout.
func NewPromptSink(w io.Writer, project string) *PromptSink {
	if w == nil {
		w = os.Stdout
	}
	return &PromptSink{w: w, project: project}
}

// FocusChanged renders the prompt for moduleName.
func (p *PromptSink) FocusChanged(moduleName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.last = moduleName
	_, err := fmt.Fprintln(p.w, FormatPrompt(p.project, moduleName))
	return err
}

// Project returns the project label shown in the prompt.
func (p *PromptSink) Project() string {
	return p.project
}

// Last returns the module name of the most recent focus change.
func (p *PromptSink) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// FormatPrompt renders "project:module>" using the focus style.
func FormatPrompt(project, moduleName string) string {
	if moduleName == "" {
		moduleName = RootModuleLabel
	}
	return StyleDim.Render(project+":") + StyleFocus.Render(moduleName) + StyleDim.Render(">")
}
