package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorWhite).
		Background(ColorBlue).
		Bold(false)
	return s
}

func newUsersTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Username", Width: 16},
			{Title: "Email", Width: 26},
			{Title: "Status", Width: 8},
			{Title: "Role", Width: 6},
			{Title: "Container", Width: 14},
			{Title: "Last login", Width: 16},
		}),
		table.WithFocused(true),
		table.WithStyles(tableStyles()),
	)
}

func newContainersTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 20},
			{Title: "User", Width: 14},
			{Title: "Status", Width: 10},
			{Title: "Image", Width: 22},
			{Title: "GPUs", Width: 8},
			{Title: "CPU", Width: 5},
			{Title: "Memory", Width: 7},
			{Title: "Created", Width: 16},
		}),
		table.WithFocused(true),
		table.WithStyles(tableStyles()),
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func userRows(users []model.User) []table.Row {
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		status := "inactive"
		if u.IsActive {
			status = "active"
		}
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		container := "-"
		if u.HasContainer() {
			container = shortID(u.ContainerID)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(u.ID),
			u.Username,
			u.Email,
			status,
			role,
			container,
			formatTime(u.LastLogin),
		})
	}
	return rows
}

func containerRows(containers []model.Container, users []model.User) []table.Row {
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	rows := make([]table.Row, 0, len(containers))
	for _, c := range containers {
		owner, ok := names[c.UserID]
		if !ok {
			owner = "#" + strconv.Itoa(c.UserID)
		}
		gpus := c.GPUDevices
		if gpus == "" {
			gpus = "none"
		}
		rows = append(rows, table.Row{
			containerLabel(c),
			owner,
			c.State(),
			c.ImageName,
			gpus,
			c.CPULimit,
			c.MemoryLimit,
			formatTime(c.CreatedAt),
		})
	}
	return rows
}

func containerLabel(c model.Container) string {
	if c.Name != "" {
		return c.Name
	}
	return shortID(c.ID)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func (m *AdminModel) syncUsersTable() {
	m.usersTable.SetRows(userRows(m.users))
	clampCursor(&m.usersTable, len(m.users))
	if m.containersLoaded {
		m.syncContainersTable()
	}
}

func (m *AdminModel) syncContainersTable() {
	m.containersTable.SetRows(containerRows(m.containers, m.users))
	clampCursor(&m.containersTable, len(m.containers))
}

func clampCursor(t *table.Model, n int) {
	if n == 0 {
		t.SetCursor(0)
		return
	}
	if t.Cursor() >= n {
		t.SetCursor(n - 1)
	}
	if t.Cursor() < 0 {
		t.SetCursor(0)
	}
}

// resizeTables fits both tables to the content area.
func (m *AdminModel) resizeTables() {
	w, h := m.contentWidth()-4, m.contentHeight()-1
	if w < 10 || h < 3 {
		return
	}
	m.usersTable.SetWidth(w)
	m.usersTable.SetHeight(h)
	m.containersTable.SetWidth(w)
	m.containersTable.SetHeight(h)
}

// selectedUser returns the user under the cursor.
func (m *AdminModel) selectedUser() (model.User, bool) {
	i := m.usersTable.Cursor()
	if i < 0 || i >= len(m.users) {
		return model.User{}, false
	}
	return m.users[i], true
}

// selectedContainer returns the container under the cursor.
func (m *AdminModel) selectedContainer() (model.Container, bool) {
	i := m.containersTable.Cursor()
	if i < 0 || i >= len(m.containers) {
		return model.Container{}, false
	}
	return m.containers[i], true
}

// activeTable returns the table of the visible list section.
func (m *AdminModel) activeTable() *table.Model {
	switch m.section {
	case refresh.SectionUsers:
		return &m.usersTable
	case refresh.SectionContainers:
		return &m.containersTable
	}
	return nil
}
