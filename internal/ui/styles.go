package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - single cyan accent matching the setup wizard
const (
	ColorCyan     = "45"  // Primary accent
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Separators, disabled entries
	ColorGreen    = "42"  // Enabled / configured
	ColorYellow   = "220" // Partially configured
	ColorRed      = "196" // Missing credentials, errors
)

// Styles holds the styles listing views render with.
type Styles struct {
	Header lipgloss.Style
	Name   lipgloss.Style
	Muted  lipgloss.Style
	OK     lipgloss.Style
	Warn   lipgloss.Style
	Fail   lipgloss.Style
}

// DefaultStyles returns the styled components for terminal output.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Name:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		OK:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Fail:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
	}
}

// NoColorStyles returns unstyled components for plain output.
func NoColorStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle(),
		Name:   lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle(),
		OK:     lipgloss.NewStyle(),
		Warn:   lipgloss.NewStyle(),
		Fail:   lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
