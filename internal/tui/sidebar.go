package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/refresh"
)

const sidebarWidth = 22

func sectionTitle(s refresh.Section) string {
	switch s {
	case refresh.SectionDashboard:
		return "Dashboard"
	case refresh.SectionUsers:
		return "Users"
	case refresh.SectionContainers:
		return "Containers"
	}
	return string(s)
}

// buildSidebarLines returns the sidebar rows and which section each
// clickable row selects.
func (m *AdminModel) buildSidebarLines() ([]string, map[int]refresh.Section) {
	rowToSection := make(map[int]refresh.Section)
	lines := make([]string, 0, 16)

	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Sections"), "")
	for i, s := range sections {
		label := fmt.Sprintf("  %d %s", i+1, sectionTitle(s))
		if s == m.section {
			label = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).
				Render(fmt.Sprintf("> %d %s", i+1, sectionTitle(s)))
		}
		if m.loading[sectionLoadingTarget(s)] {
			label += " " + spinnerFrame()
		}
		rowToSection[len(lines)] = s
		lines = append(lines, label)
	}

	lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Session"), "")
	name := m.session.Username
	if name == "" {
		name = "admin"
	}
	lines = append(lines, truncateLabel("  "+name, sidebarWidth-4))
	if !m.session.ExpiresAt.IsZero() {
		lines = append(lines, labelStyle.Render(truncateLabel("  until "+m.session.ExpiresAt.Local().Format("01-02 15:04"), sidebarWidth-4)))
	}

	if m.usersLoaded || m.containersLoaded {
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Totals"), "")
		if m.usersLoaded {
			lines = append(lines, fmt.Sprintf("  users      %4d", len(m.users)))
		}
		if m.containersLoaded {
			lines = append(lines, fmt.Sprintf("  containers %4d", len(m.containers)))
		}
	}
	return lines, rowToSection
}

// sectionLoadingTarget is the target whose fetch the sidebar spinner follows.
func sectionLoadingTarget(s refresh.Section) refresh.TargetID {
	if s == refresh.SectionUsers {
		return refresh.TargetUsers
	}
	return refresh.TargetContainers
}

func truncateLabel(label string, maxWidth int) string {
	if len(label) > maxWidth && maxWidth > 3 {
		return label[:maxWidth-1] + "~"
	}
	return label
}

// sidebarSectionAtMouseRow maps a click row to a section.
func (m *AdminModel) sidebarSectionAtMouseRow(y int) (refresh.Section, bool) {
	_, rowToSection := m.buildSidebarLines()

	// Mouse rows can include the border row depending on renderer.
	for _, offset := range []int{-1, 0, -2, 1} {
		row := y + offset
		if row < 0 {
			continue
		}
		if s, ok := rowToSection[row]; ok {
			return s, true
		}
	}
	return "", false
}

// renderSidebar renders section navigation in the left sidebar.
func (m *AdminModel) renderSidebar(height int) string {
	style := lipgloss.NewStyle().
		Width(sidebarWidth-2).
		Height(height).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Padding(0, 1)

	lines, _ := m.buildSidebarLines()
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
