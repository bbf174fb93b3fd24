package tui

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/actions"
	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/notify"
	"github.com/connermo/ai4s/internal/refresh"
	"github.com/connermo/ai4s/internal/session"
)

// mutationDoneMsg reports the outcome of an admin action.
type mutationDoneMsg struct {
	formID  string // form to close on success, if any
	success string
	err     error
}

// accessLoadedMsg carries an access sheet fetched for the detail modal.
type accessLoadedMsg struct {
	access actions.Access
	err    error
}

// exportDoneMsg reports where an access sheet was written.
type exportDoneMsg struct {
	path string
	err  error
}

// logoutMsg is sent once the operator confirmed logout.
type logoutMsg struct{}

// Update handles messages for the admin page.
func (m *AdminModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewStyle = lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(m.height)
		m.resizeTables()
		return nil, nil

	case tea.FocusMsg:
		m.ctrl.OnVisibilityChange(true)
		return nil, nil

	case tea.BlurMsg:
		m.ctrl.OnVisibilityChange(false)
		return nil, nil

	case resultMsg:
		return m.handleResult(msg.res)

	case refreshErrorMsg:
		return m.handleRefreshError(msg.res), nil

	case mutationDoneMsg:
		return m.handleMutationDone(msg)

	case accessLoadedMsg:
		return m.handleAccessLoaded(msg)

	case exportDoneMsg:
		if msg.err != nil {
			return m.notify(notify.Danger, "Export failed: "+msg.err.Error()), nil
		}
		return m.notify(notify.Success, "Access sheet saved to "+msg.path), nil

	case logoutMsg:
		return m.logout("Logged out")

	case SpinnerTickMsg:
		return m.handleSpinnerTick(), nil

	case ActionMsg:
		return m.handleAction(msg), nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.ForceQuit) {
		return tea.Quit, nil
	}

	if modal := m.TopModal(); modal != nil {
		pop, cmd := modal.Update(msg)
		if pop {
			m.PopModal()
		}
		return cmd, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return nil, nil
}

// handleResult applies one render callback.
func (m *AdminModel) handleResult(res refresh.Result) (tea.Cmd, *PageNav) {
	if !res.At.IsZero() {
		m.lastResultAt = res.At
	}

	switch res.Phase {
	case refresh.PhaseLoading:
		m.loading[res.Target] = true
		if res.Target == refresh.TargetUserOptions {
			m.options = res.Options
			m.refreshModals()
		}
		return m.startTick(), nil

	case refresh.PhaseFailed:
		m.loading[res.Target] = false
		if apiclient.IsUnauthorized(res.Err) {
			return m.logout("Session expired, please log in again")
		}
		text := apiclient.Message(res.Err, "request failed")
		m.lastOK = false
		m.lastError = text
		m.lastErrorAt = m.now()
		switch res.Target {
		case refresh.TargetUsers:
			m.usersErr = text
		case refresh.TargetContainers:
			m.containersErr = text
		case refresh.TargetUserOptions:
			m.options = res.Options
		}

	case refresh.PhaseDone:
		m.loading[res.Target] = false
		m.lastOK = true
		switch res.Target {
		case refresh.TargetUsers:
			m.users = res.Users
			m.usersLoaded = true
			m.usersErr = ""
			m.syncUsersTable()
		case refresh.TargetContainers:
			m.containers = res.Containers
			m.containersLoaded = true
			m.containersErr = ""
			m.syncContainersTable()
			m.recordHistory(res.At)
		case refresh.TargetUserOptions:
			m.options = res.Options
		}
	}

	m.refreshModals()
	return m.startTick(), nil
}

// handleRefreshError turns an error callback into a notification.
func (m *AdminModel) handleRefreshError(res refresh.Result) tea.Cmd {
	if apiclient.IsUnauthorized(res.Err) {
		return nil
	}
	var text string
	switch res.Target {
	case refresh.TargetUserOptions:
		text = "Failed to load available users"
	default:
		text = fmt.Sprintf("Failed to refresh %s: %s", res.Target, apiclient.Message(res.Err, "request failed"))
	}
	return m.notify(notify.Danger, text)
}

func (m *AdminModel) handleMutationDone(msg mutationDoneMsg) (tea.Cmd, *PageNav) {
	if apiclient.IsUnauthorized(msg.err) {
		return m.logout("Session expired, please log in again")
	}

	var form *FormModal
	if msg.formID != "" {
		form, _ = m.findModal(msg.formID).(*FormModal)
	}

	if msg.err != nil {
		text := apiclient.Message(msg.err, "Operation failed")
		sev := notify.Danger
		if apiclient.KindOf(msg.err) == apiclient.KindValidation {
			sev = notify.Warning
		}
		if form != nil {
			form.fail(text)
		}
		return m.notify(sev, text), nil
	}

	if form != nil {
		m.removeModal(form.ID())
	}
	return m.notify(notify.Success, msg.success), nil
}

func (m *AdminModel) handleAccessLoaded(msg accessLoadedMsg) (tea.Cmd, *PageNav) {
	if apiclient.IsUnauthorized(msg.err) {
		return m.logout("Session expired, please log in again")
	}
	if msg.err != nil {
		return m.notify(notify.Danger, apiclient.Message(msg.err, "Failed to load access details")), nil
	}
	m.PushModal(m.newAccessModal(msg.access))
	return nil, nil
}

func (m *AdminModel) handleAction(msg ActionMsg) tea.Cmd {
	switch msg.Action {
	case ActionPushModal:
		if modal, ok := msg.Payload.(Modal); ok {
			m.PushModal(modal)
		}
	case ActionRetryOptions:
		m.options = refresh.Options{Status: refresh.OptionsLoading, MaxRetries: m.options.MaxRetries}
		m.ctrl.RetryOptions()
		m.refreshModals()
		return m.startTick()
	}
	return nil
}

// logout clears the stored session and returns to the login page.
func (m *AdminModel) logout(reason string) (tea.Cmd, *PageNav) {
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			log.Printf("tui: clear session: %v", err)
		}
	}
	if m.tokens != nil {
		m.tokens.SetToken("")
	}
	m.session = session.Session{}
	return nil, &PageNav{PageID: pageLogin, Params: reason}
}

// refreshModals lets list-backed modals pick up new data.
func (m *AdminModel) refreshModals() {
	if r, ok := m.TopModal().(Refreshable); ok {
		r.Refresh()
	}
}

func (m *AdminModel) notify(sev notify.Severity, text string) tea.Cmd {
	m.notices.Push(sev, text, m.now())
	return m.startTick()
}

// needsTick reports whether something on screen animates or expires.
func (m *AdminModel) needsTick() bool {
	if m.anyLoading() {
		return true
	}
	if len(m.notices.Active(m.now())) > 0 {
		return true
	}
	f, ok := m.TopModal().(*FormModal)
	if !ok {
		return false
	}
	if f.submitting {
		return true
	}
	if f.picker != nil {
		st := f.picker.opts.Status
		return st == refresh.OptionsLoading || st == refresh.OptionsRetrying
	}
	return false
}

// startTick schedules a spinner tick unless one is already pending.
func (m *AdminModel) startTick() tea.Cmd {
	if m.ticking || !m.needsTick() {
		return nil
	}
	m.ticking = true
	return tea.Tick(120*time.Millisecond, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// handleSpinnerTick re-schedules ticks while anything animates.
func (m *AdminModel) handleSpinnerTick() tea.Cmd {
	m.ticking = false
	return m.startTick()
}
