package output

import (
	"github.com/charmbracelet/lipgloss"
)

// RootModuleLabel is how the project root module (empty name) is displayed.
const RootModuleLabel = "<root>"

// Color palette: ANSI 256 colors used by the CLI.
// These are the single source of truth; never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: module names and paths.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for newly registered modules and additions.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for pending descriptors and modifications.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for removals and parse failures.
	ColorRed = lipgloss.Color("196")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles map module states to presentation.
var (
	// StyleNoun styles identifiable nouns (module names, descriptor paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs.
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleFocus marks the focused module.
	StyleFocus = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
)

// Module status constants.
const (
	StatusRegistered = "registered"
	StatusPending    = "pending"
	StatusFailed     = "failed"
	StatusFocused    = "focused"
)

// StatusStyle returns the lipgloss style for a module status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusRegistered:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusPending:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	case StatusFocused:
		return StyleFocus
	default:
		return lipgloss.NewStyle()
	}
}

// Styles groups the styles used by diff and tree rendering.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

// GetStyles returns the default style set.
func GetStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle().Foreground(ColorGreen),
		Warning: lipgloss.NewStyle().Foreground(ColorYellow),
		Error:   lipgloss.NewStyle().Foreground(ColorRed),
		Muted:   lipgloss.NewStyle().Foreground(ColorDimGray),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

// FormatModuleName renders a module name, mapping the root module to
// RootModuleLabel.
func FormatModuleName(name string) string {
	if name == "" {
		name = RootModuleLabel
	}
	return StyleNoun.Render(name)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}
