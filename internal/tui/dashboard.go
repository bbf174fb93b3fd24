package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/model"
)

const recentActivity = 8

// renderDashboard renders the summary cards, the container history chart
// and the latest admin actions.
func (m *AdminModel) renderDashboard(width, height int) string {
	if !m.usersLoaded && !m.containersLoaded {
		if m.usersErr != "" || m.containersErr != "" {
			return renderErrorPlaceholder("dashboard", firstNonEmpty(m.usersErr, m.containersErr), width, height)
		}
		return renderLoadingPlaceholder("Loading dashboard...", width, height)
	}

	sum := model.Summarize(m.users, m.containers)
	cards := m.renderSummaryCards(sum, width)

	var parts []string
	parts = append(parts, cards)
	for _, e := range []struct{ what, msg string }{{"users", m.usersErr}, {"containers", m.containersErr}} {
		if e.msg != "" {
			parts = append(parts, errorTextStyle.Render(fmt.Sprintf("⚠ %s: %s", e.what, e.msg)))
		}
	}

	used := lipgloss.Height(strings.Join(parts, "\n"))
	activityHeight := 0
	if m.activity != nil {
		activityHeight = min(recentActivity, max(height-used-10, 0)) + 2
	}
	chartHeight := max(height-used-activityHeight-1, 4)
	parts = append(parts, "", renderHistoryChart(m.history, width, chartHeight))

	if activityHeight > 2 {
		parts = append(parts, m.renderActivity(width, activityHeight-2))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *AdminModel) renderSummaryCards(sum model.Summary, width int) string {
	cardWidth := max((width-8)/4, 12)
	card := func(title, value, detail string, color lipgloss.Color) string {
		body := lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render(title),
			lipgloss.NewStyle().Foreground(color).Bold(true).Render(value),
			labelStyle.Render(detail),
		)
		return lipgloss.NewStyle().
			Width(cardWidth).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1).
			Render(body)
	}

	usersValue, runningValue, stoppedValue := "-", "-", "-"
	usersDetail, runningDetail := "", ""
	if m.usersLoaded {
		usersValue = fmt.Sprintf("%d", sum.TotalUsers)
		usersDetail = fmt.Sprintf("%d active", sum.ActiveUsers)
	}
	if m.containersLoaded {
		runningValue = fmt.Sprintf("%d", sum.RunningContainers)
		runningDetail = fmt.Sprintf("of %d containers", sum.TotalContainers)
		stoppedValue = fmt.Sprintf("%d", sum.StoppedContainers)
	}
	updated := "never"
	if !m.lastResultAt.IsZero() {
		updated = m.lastResultAt.Local().Format("15:04:05")
	}
	detail := "auto refresh on"
	if m.ctrl.Paused() {
		detail = "auto refresh paused"
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Users", usersValue, usersDetail, ColorBlue),
		card("Running", runningValue, runningDetail, ColorGreen),
		card("Stopped", stoppedValue, "containers", ColorGray),
		card("Last update", updated, detail, ColorWhite),
	)
}

func (m *AdminModel) renderActivity(width, rows int) string {
	title := chartTitleStyle.Render("Recent activity")
	entries := m.activity.Recent(rows)
	if len(entries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("No admin actions yet"))
	}
	okStyle := lipgloss.NewStyle().Foreground(ColorGreen)
	lines := []string{title}
	for _, e := range entries {
		mark := okStyle.Render("✓")
		text := fmt.Sprintf("%s %s", e.Action, e.Target)
		if !e.OK {
			mark = errorTextStyle.Render("✗")
			if e.Error != "" {
				text += ": " + e.Error
			}
		}
		line := fmt.Sprintf("%s %s %s", labelStyle.Render(e.At.Local().Format("01-02 15:04:05")), mark, text)
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
