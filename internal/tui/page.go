package tui

import tea "github.com/charmbracelet/bubbletea"

// Page represents a top-level screen in the TUI (login, admin console).
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav is returned from Update to request a page switch.
type PageNav struct {
	PageID string
	Params interface{}
}

// Enterable is implemented by pages that take navigation params.
type Enterable interface {
	Enter(params interface{})
}

// Leavable is implemented by pages that release resources when hidden.
type Leavable interface {
	Leave()
}

const (
	pageLogin = "login"
	pageAdmin = "admin"
)
