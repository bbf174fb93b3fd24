package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal asks for an explicit yes before a destructive action.
type ConfirmModal struct {
	id        string
	title     string
	message   string
	onConfirm func() tea.Cmd
}

func NewConfirmModal(id, title, message string, onConfirm func() tea.Cmd) *ConfirmModal {
	return &ConfirmModal{id: id, title: title, message: message, onConfirm: onConfirm}
}

func (c *ConfirmModal) ID() string { return c.id }

func (c *ConfirmModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch km.String() {
	case "y", "Y", "enter":
		if c.onConfirm == nil {
			return true, nil
		}
		return true, c.onConfirm()
	case "n", "N", "escape", "esc", "q":
		return true, nil
	}
	return false, nil
}

func (c *ConfirmModal) View(width, height int) string {
	body := lipgloss.NewStyle().Foreground(ColorWhite).Render(c.message)
	return renderDialog(c.title, body, []string{"y/Enter: Confirm", "n/ESC: Cancel"}, ColorRed, width, height)
}

// renderDialog renders a compact centered box, used for confirmations and
// forms that do not need the full-screen frame.
func renderDialog(title, body string, statusItems []string, accent lipgloss.Color, width, height int) string {
	boxWidth := min(64, max(width-8, 20))
	inner := boxWidth - 4

	header := lipgloss.NewStyle().
		Width(inner).
		Foreground(accent).
		Bold(true).
		Render(title)

	content := lipgloss.NewStyle().
		Width(inner).
		Padding(1, 0).
		Render(body)

	box := lipgloss.NewStyle().
		Width(boxWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, content, renderModalStatusBar(statusItems)))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
