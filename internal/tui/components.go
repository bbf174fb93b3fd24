package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/notify"
	"github.com/connermo/ai4s/internal/refresh"
)

// renderBranding renders "ai4s" with a green to light blue gradient
func renderBranding() string {
	colors := []string{"#49E209", "#21D955", "#00D0A1", "#00CAC7"}
	chars := []string{"a", "i", "4", "s"}

	var result string
	for i, char := range chars {
		style := lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color(colors[i])).Bold(true)
		result += style.Render(char)
	}
	return result
}

// apiHost returns the host part of the session's API base.
func (m *AdminModel) apiHost() string {
	if m.session.APIBase == "" {
		return ""
	}
	u, err := url.Parse(m.session.APIBase)
	if err != nil || u.Host == "" {
		return m.session.APIBase
	}
	return u.Host
}

// renderStatusLine renders the status/help line at the bottom of the screen
func (m *AdminModel) renderStatusLine() string {
	baseStyle := lipgloss.NewStyle().
		Background(ColorNavy).
		Foreground(ColorWhite)

	w := m.contentWidth()
	veryNarrow := w < 60
	narrow := w < 80
	medium := w < 120

	name := sectionTitle(m.section)
	leftText := fmt.Sprintf("[%s]", name)
	if veryNarrow {
		leftText = name[:min(5, len(name))]
	}

	var statusText string
	switch m.section {
	case refresh.SectionUsers:
		switch {
		case veryNarrow:
			statusText = "n • e • p • d • ?"
		case narrow:
			statusText = "?: Help • n: New • e: Edit • d: Delete"
		case medium:
			statusText = "n: New • e: Edit • p: Password • i: Access • d: Delete • Enter: Details"
		default:
			statusText = "?: Help • ↑↓: Navigate • n: New • e: Edit • p: Password • i: Access • d: Delete • Enter: Details • r: Refresh"
		}
	case refresh.SectionContainers:
		switch {
		case veryNarrow:
			statusText = "n • s • x • d • ?"
		case narrow:
			statusText = "?: Help • n: New • s/x: Start/Stop"
		case medium:
			statusText = "n: New • s: Start • x: Stop • p: Password • i: Access • d: Delete"
		default:
			statusText = "?: Help • ↑↓: Navigate • n: New • s: Start • x: Stop • p: Password • i: Access • d: Delete • r: Refresh"
		}
	default:
		switch {
		case veryNarrow:
			statusText = "Tab • r • ? • q"
		case narrow:
			statusText = "?: Help • Tab: Nav • Space: Pause • q: Quit"
		case medium:
			statusText = "Tab: Navigate • r: Refresh • Space: Pause • L: Logout • q: Quit"
		default:
			statusText = "?: Help • Click sections • Tab: Navigate • 1-3: Jump • r: Refresh • Space: Pause • L: Logout • q: Quit"
		}
	}

	var statusInfo string
	if m.ctrl.Paused() {
		statusInfo = "⏸ Paused"
	} else if m.anyLoading() && !veryNarrow {
		statusInfo = spinnerFrame() + " Syncing"
	}

	var apiInfo string
	if host := m.apiHost(); host != "" && !veryNarrow {
		var color lipgloss.Color
		switch {
		case m.lastResultAt.IsZero():
			color = lipgloss.Color("#FFAA00")
		case !m.lastOK:
			color = lipgloss.Color("#FF4444")
		case m.interval > 0 && m.now().Sub(m.lastResultAt) > 3*m.interval:
			color = lipgloss.Color("#FFAA00")
		default:
			color = lipgloss.Color("#44FF44")
		}
		dot := lipgloss.NewStyle().Background(ColorNavy).Foreground(color).Render("●")
		apiInfo = dot + " " + host
	}

	// API error indicator (auto-clears after 30s)
	var errorInfo string
	if m.lastError != "" && m.now().Sub(m.lastErrorAt) < errorIndicatorTTL {
		errorInfo = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color("#FF6666")).
			Faint(true).
			Render("API error")
	}

	var rightParts []string
	for _, part := range []string{errorInfo, apiInfo, statusInfo} {
		if part != "" {
			rightParts = append(rightParts, part)
		}
	}
	if w >= 30 {
		rightParts = append(rightParts, renderBranding())
	}
	rightText := strings.Join(rightParts, "  ")

	leftWidth := lipgloss.Width(leftText) + 2
	rightWidth := lipgloss.Width(rightText) + 2
	if leftWidth+rightWidth >= w {
		if w < 20 {
			return baseStyle.Width(w).Render(leftText)
		}
		leftWidth = min(10, w/3)
		rightWidth = min(15, w/3)
	}
	centerWidth := max(w-leftWidth-rightWidth, 0)

	leftStyle := baseStyle.Align(lipgloss.Left).Width(leftWidth)
	centerStyle := baseStyle.Align(lipgloss.Center).Width(centerWidth)
	rightStyle := baseStyle.Align(lipgloss.Right).Width(rightWidth)

	if lipgloss.Width(leftText) > leftWidth {
		leftText = leftText[:max(0, leftWidth-1)]
	}
	if lipgloss.Width(statusText) > centerWidth {
		statusText = truncateRunes(statusText, max(0, centerWidth-1))
	}
	if lipgloss.Width(rightText) > rightWidth {
		// Styled text cannot be cut safely; drop parts by priority.
		if statusInfo != "" && w < 50 {
			rightText = statusInfo
		} else if w < 40 {
			rightText = ""
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Render(leftText),
		centerStyle.Render(statusText),
		rightStyle.Render(rightText),
	)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// renderNotices renders active notifications, newest last, right aligned.
func (m *AdminModel) renderNotices(width int) []string {
	active := m.notices.Active(m.now())
	lines := make([]string, 0, len(active))
	for _, n := range active {
		icon, color := noticeStyle(n.Severity)
		text := lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(color).
			Padding(0, 1).
			Render(truncateRunes(icon+" "+n.Message, max(width-4, 10)))
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, text))
	}
	return lines
}

func noticeStyle(sev notify.Severity) (string, lipgloss.Color) {
	switch sev {
	case notify.Success:
		return "✓", lipgloss.Color("28")
	case notify.Warning:
		return "!", lipgloss.Color("130")
	case notify.Danger:
		return "✗", lipgloss.Color("124")
	}
	return "i", lipgloss.Color("25")
}
