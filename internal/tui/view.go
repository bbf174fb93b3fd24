package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/refresh"
)

// contentWidth returns the width available for main content, accounting for sidebar.
func (m *AdminModel) contentWidth() int {
	return max(m.width-sidebarWidth, 40)
}

// contentHeight returns the inner height of the main section box.
func (m *AdminModel) contentHeight() int {
	return m.height - 3 // status line + box border
}

// View renders the admin console.
func (m *AdminModel) View(width, height int) string {
	if width > 0 && height > 0 && (width != m.width || height != m.height) {
		m.width, m.height = width, height
		m.viewStyle = lipgloss.NewStyle().MaxWidth(width).MaxHeight(height)
		m.resizeTables()
	}
	if m.width <= 0 || m.height <= 0 {
		return "Initializing console..."
	}

	// If a modal is on the stack, render it full-screen.
	if modal := m.TopModal(); modal != nil {
		return modal.View(m.width, m.height)
	}

	if m.height < 20 || m.width < 60 {
		return "Terminal too small. Resize to at least 60x20."
	}
	return m.renderConsole()
}

func (m *AdminModel) renderConsole() string {
	cw := m.contentWidth()
	notices := m.renderNotices(cw)
	boxHeight := max(m.contentHeight()-len(notices), 3)

	section := sectionStyle.
		Width(cw - 2).
		Height(boxHeight).
		Render(m.renderSection(cw-4, boxHeight))

	parts := []string{section}
	parts = append(parts, notices...)
	parts = append(parts, m.renderStatusLine())
	contentArea := lipgloss.JoinVertical(lipgloss.Left, parts...)

	result := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(m.height-2), contentArea)
	return m.viewStyle.Render(result)
}

// renderSection renders the visible section inside a width x height area.
func (m *AdminModel) renderSection(width, height int) string {
	switch m.section {
	case refresh.SectionUsers:
		return m.renderList(width, height, listView{
			title:   "Users",
			count:   len(m.users),
			loaded:  m.usersLoaded,
			loading: m.loading[refresh.TargetUsers],
			err:     m.usersErr,
			empty:   "No users yet. Press n to create one.",
			table:   &m.usersTable,
		})
	case refresh.SectionContainers:
		return m.renderList(width, height, listView{
			title:   "Containers",
			count:   len(m.containers),
			loaded:  m.containersLoaded,
			loading: m.loading[refresh.TargetContainers],
			err:     m.containersErr,
			empty:   "No containers yet. Press n to create one.",
			table:   &m.containersTable,
		})
	}
	return m.renderDashboard(width, height)
}

type listView struct {
	title   string
	count   int
	loaded  bool
	loading bool
	err     string
	empty   string
	table   *table.Model
}

// renderList renders a list section. Rows stay on screen during a refresh
// and a pending indicator is shown in the header instead.
func (m *AdminModel) renderList(width, height int, lv listView) string {
	left := fmt.Sprintf("%s (%d)", lv.title, lv.count)
	var right string
	switch {
	case lv.loading && lv.loaded:
		right = spinnerFrame() + " refreshing"
	case !m.lastResultAt.IsZero():
		right = "updated " + m.lastResultAt.Local().Format("15:04:05")
	}
	header := left
	if spacer := width - lipgloss.Width(left) - lipgloss.Width(right); spacer > 0 {
		header = left + strings.Repeat(" ", spacer) + right
	}
	title := chartTitleStyle.Render(header)

	bodyHeight := max(height-1, 1)
	var body string
	switch {
	case lv.err != "":
		body = renderErrorPlaceholder(strings.ToLower(lv.title), lv.err, width, bodyHeight)
	case !lv.loaded:
		body = renderLoadingPlaceholder("Loading "+strings.ToLower(lv.title)+"...", width, bodyHeight)
	case lv.count == 0:
		body = renderEmptyPlaceholder(lv.empty, width, bodyHeight)
	default:
		lv.table.SetWidth(width)
		lv.table.SetHeight(bodyHeight)
		body = lv.table.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}
