package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/actions"
	"github.com/connermo/ai4s/internal/audit"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/notify"
	"github.com/connermo/ai4s/internal/refresh"
	"github.com/connermo/ai4s/internal/session"
)

// Controller is the refresh contract the console drives.
type Controller interface {
	Start(section refresh.Section)
	SetSection(section refresh.Section)
	SetPaused(paused bool)
	Paused() bool
	RequestRefresh(id refresh.TargetID, reason refresh.Reason) bool
	LoadOptionsWithRetry(attempt int) bool
	RetryOptions() bool
	OnVisibilityChange(visible bool)
	Snapshot() refresh.Snapshot
}

// Activity supplies recent journal entries for the dashboard.
type Activity interface {
	Recent(n int) []audit.Entry
}

// SessionStore persists the admin session.
type SessionStore interface {
	Save(sess session.Session) error
	Clear() error
}

// TokenSetter receives the bearer token used by the API client.
type TokenSetter interface {
	SetToken(token string)
}

// AdminDeps wires the admin console to its collaborators.
type AdminDeps struct {
	Controller         Controller
	Service            *actions.Service
	Activity           Activity // optional
	Store              SessionStore
	Tokens             TokenSetter
	Section            refresh.Section
	ServerHost         string
	ExportDir          string
	Interval           time.Duration // refresh interval, for staleness
	ReverseScrollWheel bool
	Now                func() time.Time
}

// ListState holds the users and containers lists and their tables.
type ListState struct {
	users            []model.User
	containers       []model.Container
	usersLoaded      bool
	containersLoaded bool
	usersErr         string
	containersErr    string
	usersTable       table.Model
	containersTable  table.Model
	options          refresh.Options
	history          []statePoint
}

// RefreshStatus holds what the status line shows about refresh health.
type RefreshStatus struct {
	loading      map[refresh.TargetID]bool
	lastResultAt time.Time
	lastOK       bool
	lastError    string
	lastErrorAt  time.Time
	ticking      bool
}

// ModalStackState holds the modal stack.
type ModalStackState struct {
	modalStack []Modal
}

// AdminModel is the admin console page.
type AdminModel struct {
	ListState
	RefreshStatus
	ModalStackState

	ctrl     Controller
	svc      *actions.Service
	activity Activity
	store    SessionStore
	tokens   TokenSetter
	notices  *notify.Center
	keys     KeyMap
	now      func() time.Time

	section            refresh.Section
	session            session.Session
	interval           time.Duration
	serverHost         string
	exportDir          string
	reverseScrollWheel bool

	width     int
	height    int
	viewStyle lipgloss.Style
}

const errorIndicatorTTL = 30 * time.Second

var sections = []refresh.Section{refresh.SectionDashboard, refresh.SectionUsers, refresh.SectionContainers}

// NewAdminModel creates the admin console page.
func NewAdminModel(deps AdminDeps) *AdminModel {
	section := deps.Section
	if section == "" {
		section = refresh.SectionDashboard
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	m := &AdminModel{
		ctrl:               deps.Controller,
		svc:                deps.Service,
		activity:           deps.Activity,
		store:              deps.Store,
		tokens:             deps.Tokens,
		notices:            notify.NewCenter(0),
		keys:               DefaultKeyMap(),
		now:                now,
		section:            section,
		interval:           deps.Interval,
		serverHost:         deps.ServerHost,
		exportDir:          deps.ExportDir,
		reverseScrollWheel: deps.ReverseScrollWheel,
	}
	m.loading = make(map[refresh.TargetID]bool)
	m.options = refresh.Options{Status: refresh.OptionsLoading}
	m.usersTable = newUsersTable()
	m.containersTable = newContainersTable()
	return m
}

func (m *AdminModel) ID() string { return pageAdmin }

// Enter receives the session established by the login page.
func (m *AdminModel) Enter(params interface{}) {
	if sess, ok := params.(session.Session); ok {
		m.session = sess
	}
	m.modalStack = nil
	m.loading = make(map[refresh.TargetID]bool)
	m.ticking = false
}

// Leave stops interval refreshes while the console is hidden.
func (m *AdminModel) Leave() {
	m.ctrl.SetPaused(true)
	m.modalStack = nil
}

// Init mounts the console: refresh the visible section and arm the timers.
func (m *AdminModel) Init() tea.Cmd {
	m.ctrl.SetPaused(false)
	m.ctrl.Start(m.section)
	return nil
}

// Section returns the visible section.
func (m *AdminModel) Section() refresh.Section { return m.section }

func (m *AdminModel) modalContext() ModalContext {
	return ModalContext{ReverseScrollWheel: m.reverseScrollWheel}
}

// PushModal pushes a modal onto the stack. Duplicate IDs are ignored.
func (m *AdminModel) PushModal(modal Modal) {
	for _, existing := range m.modalStack {
		if existing.ID() == modal.ID() {
			return
		}
	}
	m.modalStack = append(m.modalStack, modal)
}

// PopModal removes the topmost modal from the stack.
func (m *AdminModel) PopModal() {
	if len(m.modalStack) > 0 {
		m.modalStack = m.modalStack[:len(m.modalStack)-1]
	}
}

// TopModal returns the topmost modal, or nil if the stack is empty.
func (m *AdminModel) TopModal() Modal {
	if len(m.modalStack) == 0 {
		return nil
	}
	return m.modalStack[len(m.modalStack)-1]
}

// HasModal returns true if any modal is on the stack.
func (m *AdminModel) HasModal() bool {
	return len(m.modalStack) > 0
}

// findModal returns the modal with id, or nil.
func (m *AdminModel) findModal(id string) Modal {
	for _, modal := range m.modalStack {
		if modal.ID() == id {
			return modal
		}
	}
	return nil
}

// removeModal drops the modal with id wherever it sits in the stack.
func (m *AdminModel) removeModal(id string) {
	for i, modal := range m.modalStack {
		if modal.ID() == id {
			m.modalStack = append(m.modalStack[:i], m.modalStack[i+1:]...)
			return
		}
	}
}

// anyLoading returns true if any target has a fetch in flight.
func (m *AdminModel) anyLoading() bool {
	for _, v := range m.loading {
		if v {
			return true
		}
	}
	return false
}
