package setupui

import "github.com/charmbracelet/lipgloss"

// Color palette - single cyan accent matching the rest of the CLI output
const (
	ColorCyan     = "45"  // Primary accent - cursor, focused labels
	ColorWhite    = "255" // Titles
	ColorGray     = "245" // Descriptions, secondary text
	ColorDarkGray = "238" // Help line, separators
	ColorGreen    = "42"  // Enabled markers, completion
	ColorRed      = "196" // Validation errors
)

// Styles holds the lipgloss styles for wizard rendering.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns styled components for terminal rendering.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Normal:   lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for NO_COLOR mode.
func NoColorStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle(),
		Subtitle: lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle(),
		Normal:   lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle(),
		Success:  lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle(),
		Help:     lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
