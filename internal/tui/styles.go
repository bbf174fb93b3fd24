package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorBlue   = lipgloss.Color("39")
	ColorNavy   = lipgloss.Color("17")
	ColorGray   = lipgloss.Color("244")
	ColorRed    = lipgloss.Color("196")
	ColorOrange = lipgloss.Color("208")
	ColorGreen  = lipgloss.Color("42")
	ColorWhite  = lipgloss.Color("15")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	activeSectionStyle = sectionStyle.
				BorderForeground(ColorBlue)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// statusColor returns the display color for a container state.
func statusColor(state string) lipgloss.Color {
	switch state {
	case "running":
		return ColorGreen
	case "error", "dead", "exited":
		return ColorRed
	case "creating", "restarting", "starting":
		return ColorOrange
	default:
		return ColorGray
	}
}
