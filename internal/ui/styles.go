package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - single indigo accent with amber highlights for
// matched terms, red reserved for the error banner.
const (
	ColorIndigo   = "111" // Primary accent - headers, active elements
	ColorAmber    = "214" // Highlighted (matched) snippet terms
	ColorWhite    = "255" // Important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Borders, separators
	ColorRed      = "196" // Errors
)

// Styles holds all UI styles for TUI rendering.
type Styles struct {
	Header    lipgloss.Style
	Label     lipgloss.Style
	Active    lipgloss.Style
	Dim       lipgloss.Style
	Error     lipgloss.Style
	Path      lipgloss.Style
	Highlight lipgloss.Style
	Permalink lipgloss.Style
	Summary   lipgloss.Style
	Border    lipgloss.Style
}

// DefaultStyles returns styled components for TUI mode.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorIndigo)),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Active:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorIndigo)),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Path:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAmber)),
		Permalink: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)).Underline(true),
		Summary:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorIndigo)),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain terminals.
func NoColorStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle(),
		Active:    lipgloss.NewStyle(),
		Dim:       lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Path:      lipgloss.NewStyle(),
		Highlight: lipgloss.NewStyle().Reverse(true),
		Permalink: lipgloss.NewStyle(),
		Summary:   lipgloss.NewStyle(),
		Border:    lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
