package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerFrame picks the frame from the current time so it animates on re-render.
func spinnerFrame() string {
	return spinnerFrames[time.Now().UnixMilli()/120%int64(len(spinnerFrames))]
}

// renderLoadingPlaceholder renders an animated loading indicator.
func renderLoadingPlaceholder(text string, width, height int) string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, loadingStyle.Render(spinnerFrame()+" "+text))
}

// renderErrorPlaceholder renders the inline failure shown instead of a list.
func renderErrorPlaceholder(what, message string, width, height int) string {
	text := lipgloss.JoinVertical(lipgloss.Center,
		errorTextStyle.Bold(true).Render("Failed to load "+what),
		errorTextStyle.Render(message),
		helpStyle.Render("r: retry"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// renderEmptyPlaceholder renders the text shown for an empty list.
func renderEmptyPlaceholder(text string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpStyle.Render(text))
}

// SpinnerTickMsg triggers a re-render for loading spinners and expiring toasts.
type SpinnerTickMsg struct{}
