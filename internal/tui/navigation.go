package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/connermo/ai4s/internal/actions"
	"github.com/connermo/ai4s/internal/notify"
	"github.com/connermo/ai4s/internal/refresh"
)

// handleKey processes key presses when no modal is open.
func (m *AdminModel) handleKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		return tea.Quit, nil

	case key.Matches(msg, m.keys.Help):
		m.PushModal(NewHelpModal(m.modalContext(), m.keys))
		return nil, nil

	case key.Matches(msg, m.keys.Logout):
		m.PushModal(NewConfirmModal("confirm-logout", "Log out", "End this admin session and return to the login page?",
			func() tea.Cmd { return func() tea.Msg { return logoutMsg{} } }))
		return nil, nil

	case key.Matches(msg, m.keys.NextSection):
		m.setSection(sections[(m.sectionIndex()+1)%len(sections)])
		return nil, nil
	case key.Matches(msg, m.keys.PrevSection):
		m.setSection(sections[(m.sectionIndex()+len(sections)-1)%len(sections)])
		return nil, nil
	case key.Matches(msg, m.keys.Dashboard):
		m.setSection(refresh.SectionDashboard)
		return nil, nil
	case key.Matches(msg, m.keys.Users):
		m.setSection(refresh.SectionUsers)
		return nil, nil
	case key.Matches(msg, m.keys.Containers):
		m.setSection(refresh.SectionContainers)
		return nil, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.refreshSection(), nil

	case key.Matches(msg, m.keys.Pause):
		paused := !m.ctrl.Paused()
		m.ctrl.SetPaused(paused)
		if paused {
			return m.notify(notify.Info, "Auto refresh paused"), nil
		}
		return m.notify(notify.Info, "Auto refresh resumed"), nil
	}

	if t := m.activeTable(); t != nil {
		switch {
		case key.Matches(msg, m.keys.Up):
			t.MoveUp(1)
			return nil, nil
		case key.Matches(msg, m.keys.Down):
			t.MoveDown(1)
			return nil, nil
		case key.Matches(msg, m.keys.Home):
			t.GotoTop()
			return nil, nil
		case key.Matches(msg, m.keys.End):
			t.GotoBottom()
			return nil, nil
		case key.Matches(msg, m.keys.PageUp):
			t.MoveUp(max(1, t.Height()/2))
			return nil, nil
		case key.Matches(msg, m.keys.PageDown):
			t.MoveDown(max(1, t.Height()/2))
			return nil, nil
		}
	}

	switch m.section {
	case refresh.SectionUsers:
		return m.handleUsersKey(msg), nil
	case refresh.SectionContainers:
		return m.handleContainersKey(msg), nil
	}
	return nil, nil
}

func (m *AdminModel) handleUsersKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.New) {
		m.PushModal(m.newUserForm())
		return nil
	}
	u, ok := m.selectedUser()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Enter):
		m.PushModal(NewDetailModal(m.modalContext(), "user-detail", "User: "+u.Username, userDetails(u, m.containers)))
	case key.Matches(msg, m.keys.Edit):
		m.PushModal(m.editUserForm(u))
	case key.Matches(msg, m.keys.Password):
		m.PushModal(m.userPasswordForm(u))
	case key.Matches(msg, m.keys.Access):
		if !u.HasContainer() {
			return m.notify(notify.Warning, u.Username+" has no container yet")
		}
		return m.loadAccessCmd(u.ID)
	case key.Matches(msg, m.keys.Delete):
		if u.Username == actions.ProtectedUsername {
			return m.notify(notify.Warning, "The admin account cannot be deleted")
		}
		m.PushModal(NewConfirmModal("confirm-delete-user", "Delete user",
			"Delete user "+u.Username+"? Their container and files are removed as well.",
			func() tea.Cmd { return m.deleteUserCmd(u) }))
	}
	return nil
}

func (m *AdminModel) handleContainersKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.New) {
		return m.openContainerForm()
	}
	c, ok := m.selectedContainer()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Enter):
		m.PushModal(NewDetailModal(m.modalContext(), "container-detail", "Container: "+containerLabel(c), containerDetails(c, m.users)))
	case key.Matches(msg, m.keys.Start):
		if c.IsRunning() {
			return m.notify(notify.Info, containerLabel(c)+" is already running")
		}
		return m.startContainerCmd(c)
	case key.Matches(msg, m.keys.Stop):
		if !c.IsRunning() {
			return m.notify(notify.Info, containerLabel(c)+" is not running")
		}
		return m.stopContainerCmd(c)
	case key.Matches(msg, m.keys.Password):
		m.PushModal(m.resetPasswordForm(c))
	case key.Matches(msg, m.keys.Access):
		return m.loadAccessCmd(c.UserID)
	case key.Matches(msg, m.keys.Delete):
		m.PushModal(NewConfirmModal("confirm-delete-container", "Delete container",
			"Delete container "+containerLabel(c)+"? Data outside the shared mounts is lost.",
			func() tea.Cmd { return m.deleteContainerCmd(c) }))
	}
	return nil
}

// handleMouse switches sections on sidebar clicks and scrolls the active
// table with the wheel.
func (m *AdminModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	if msg.Button == tea.MouseButtonLeft && msg.X < sidebarWidth {
		if s, ok := m.sidebarSectionAtMouseRow(msg.Y); ok {
			m.setSection(s)
		}
		return nil
	}
	t := m.activeTable()
	if t == nil {
		return nil
	}
	up := msg.Button == tea.MouseButtonWheelUp
	down := msg.Button == tea.MouseButtonWheelDown
	if m.reverseScrollWheel {
		up, down = down, up
	}
	switch {
	case up:
		t.MoveUp(1)
	case down:
		t.MoveDown(1)
	}
	return nil
}

func (m *AdminModel) sectionIndex() int {
	for i, s := range sections {
		if s == m.section {
			return i
		}
	}
	return 0
}

// setSection switches the visible section and lets the controller reload it.
func (m *AdminModel) setSection(s refresh.Section) {
	if s == m.section {
		return
	}
	m.section = s
	m.ctrl.SetSection(s)
}

// refreshSection forces a refresh of every target of the visible section.
func (m *AdminModel) refreshSection() tea.Cmd {
	dropped := 0
	for _, id := range m.section.Targets() {
		if !m.ctrl.RequestRefresh(id, refresh.ReasonManual) {
			dropped++
		}
	}
	if dropped > 0 {
		return m.notify(notify.Info, "Refresh already in progress")
	}
	return nil
}
