package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModal lists every key binding grouped by area.
type HelpModal struct {
	ctx      ModalContext
	keys     KeyMap
	viewport viewport.Model
}

func NewHelpModal(ctx ModalContext, keys KeyMap) *HelpModal {
	return &HelpModal{
		ctx:      ctx,
		keys:     keys,
		viewport: viewport.New(80, 20),
	}
}

func (h *HelpModal) ID() string { return "help" }

func (h *HelpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if scrollViewport(&h.viewport, msg, h.ctx.ReverseScrollWheel) {
		return false, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "?", "escape", "esc":
			return true, nil
		}
	}
	return false, nil
}

func (h *HelpModal) View(width, height int) string {
	status := []string{"up/down/Wheel: Scroll", "PgUp/PgDn: Page", "?: Toggle Help", "ESC: Close"}
	return renderScrollModal(&h.viewport, "Help", h.content(), status, width, height)
}

func (h *HelpModal) content() string {
	keyStyle := lipgloss.NewStyle().Foreground(ColorBlue).Width(14)
	var b strings.Builder
	b.WriteString("ai4s admin console\n\n")
	for _, g := range h.keys.helpGroups() {
		b.WriteString(strings.ToUpper(g.title) + ":\n")
		for _, kb := range g.bindings {
			hp := kb.Help()
			fmt.Fprintf(&b, "  %s - %s\n", keyStyle.Render(hp.Key), hp.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("REFRESH:\n")
	b.WriteString("  The visible section refreshes every interval unless paused.\n")
	b.WriteString("  Returning to the terminal refreshes the containers list.\n")
	b.WriteString("  Container start, stop and create are re-checked shortly after.\n")
	return b.String()
}
