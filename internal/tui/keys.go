package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all admin console key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Escape    key.Binding
	Logout    key.Binding

	// Navigation
	NextSection key.Binding
	PrevSection key.Binding
	Dashboard   key.Binding
	Users       key.Binding
	Containers  key.Binding
	Up          key.Binding
	Down        key.Binding
	Home        key.Binding
	End         key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Enter       key.Binding

	// Actions
	Refresh  key.Binding
	Pause    key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Start    key.Binding
	Stop     key.Binding
	Password key.Binding
	Access   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("escape", "esc"),
			key.WithHelp("esc", "close"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),

		NextSection: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev section"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Users: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "users"),
		),
		Containers: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "containers"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause auto refresh"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit user"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start container"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop container"),
		),
		Password: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "password"),
		),
		Access: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "access info"),
		),
	}
}

// helpGroups returns the bindings shown in the help modal, grouped.
func (k KeyMap) helpGroups() []helpGroup {
	return []helpGroup{
		{"Global", []key.Binding{k.Help, k.Refresh, k.Pause, k.Logout, k.Quit, k.ForceQuit}},
		{"Navigation", []key.Binding{k.NextSection, k.PrevSection, k.Dashboard, k.Users, k.Containers, k.Up, k.Down, k.Home, k.End, k.PageUp, k.PageDown, k.Enter}},
		{"Users", []key.Binding{k.New, k.Edit, k.Password, k.Access, k.Delete}},
		{"Containers", []key.Binding{k.New, k.Start, k.Stop, k.Password, k.Access, k.Delete}},
		{"Modals", []key.Binding{k.Escape}},
	}
}

type helpGroup struct {
	title    string
	bindings []key.Binding
}
