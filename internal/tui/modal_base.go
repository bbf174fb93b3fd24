package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var scrollStatusItems = []string{"up/down/Wheel: Scroll", "PgUp/PgDn: Page", "ESC: Close"}

// renderModalFrame draws the standard modal chrome around body and centers
// it on screen. body is rendered inside a content pane of the returned size.
func renderModalFrame(title, body string, statusItems []string, width, height int) string {
	modalWidth, modalHeight, contentWidth, contentHeight := modalDims(width, height)

	contentPane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Render(body)

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(ColorBlue).
		Bold(true).
		Render(title)

	modal := lipgloss.JoinVertical(lipgloss.Left, header, contentPane, renderModalStatusBar(statusItems))

	finalModal := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(modal)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, finalModal)
}

// modalDims returns the outer and inner sizes for a full-screen modal.
func modalDims(width, height int) (modalWidth, modalHeight, contentWidth, contentHeight int) {
	modalWidth = width - 8   // 4 chars margin on each side
	modalHeight = height - 6 // 3 lines margin top and bottom
	contentWidth = max(modalWidth-4, 10)
	contentHeight = max(modalHeight-4, 3)
	return modalWidth, modalHeight, contentWidth, contentHeight
}

// renderScrollModal renders vp with content inside the modal frame.
func renderScrollModal(vp *viewport.Model, title, content string, statusItems []string, width, height int) string {
	_, _, contentWidth, contentHeight := modalDims(width, height)
	vp.Width = contentWidth
	vp.Height = contentHeight
	vp.SetContent(lipgloss.NewStyle().Width(contentWidth).Render(content))
	return renderModalFrame(title, vp.View(), statusItems, width, height)
}

// renderModalStatusBar renders the status bar for modals
func renderModalStatusBar(items []string) string {
	return lipgloss.NewStyle().
		Foreground(ColorGray).
		Render(strings.Join(items, " | "))
}

// scrollViewport applies the shared scroll keys and wheel events to vp.
// It reports whether msg was consumed.
func scrollViewport(vp *viewport.Model, msg tea.Msg, reverseWheel bool) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			vp.ScrollUp(1)
			return true
		case "down", "j":
			vp.ScrollDown(1)
			return true
		case "pgup":
			vp.HalfPageUp()
			return true
		case "pgdown":
			vp.HalfPageDown()
			return true
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return false
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if reverseWheel {
				vp.ScrollDown(1)
			} else {
				vp.ScrollUp(1)
			}
			return true
		case tea.MouseButtonWheelDown:
			if reverseWheel {
				vp.ScrollUp(1)
			} else {
				vp.ScrollDown(1)
			}
			return true
		}
	}
	return false
}
