package tui

import tea "github.com/charmbracelet/bubbletea"

// ModalContext provides read-only context to modals.
type ModalContext struct {
	ReverseScrollWheel bool
}

// Action identifies what a modal wants the console to do.
type Action int

const (
	ActionPushModal Action = iota
	ActionRetryOptions
)

// ActionMsg is returned by modals to communicate with the console without
// mutating it directly.
type ActionMsg struct {
	Action  Action
	Payload any
}

// actionMsg wraps ActionMsg as a tea.Msg.
func actionMsg(a ActionMsg) tea.Cmd {
	return func() tea.Msg { return a }
}
