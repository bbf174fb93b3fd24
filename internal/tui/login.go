package tui

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/session"
)

const loginTimeout = 15 * time.Second

// Authenticator exchanges admin credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.LoginResponse, error)
}

// LoginDeps wires the login page.
type LoginDeps struct {
	Auth    Authenticator
	Store   SessionStore
	Tokens  TokenSetter
	APIBase string
	Now     func() time.Time
}

// loginDoneMsg reports the outcome of a login attempt.
type loginDoneMsg struct {
	sess session.Session
	err  error
}

// LoginModel is the login page shown until an admin session exists.
type LoginModel struct {
	deps       LoginDeps
	username   textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	err        string
	notice     string
}

// NewLoginModel creates the login page.
func NewLoginModel(deps LoginDeps) *LoginModel {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	user := textinput.New()
	user.Placeholder = "admin"
	user.CharLimit = 64
	user.Width = 30
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.Width = 30
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return &LoginModel{deps: deps, username: user, password: pass}
}

func (l *LoginModel) ID() string { return pageLogin }

// Enter shows why the console returned to the login page.
func (l *LoginModel) Enter(params interface{}) {
	if reason, ok := params.(string); ok {
		l.notice = reason
	}
	l.err = ""
	l.submitting = false
	l.password.SetValue("")
	l.setFocus(0)
}

func (l *LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (l *LoginModel) setFocus(i int) tea.Cmd {
	l.focus = (i + 2) % 2
	if l.focus == 0 {
		l.password.Blur()
		return l.username.Focus()
	}
	l.username.Blur()
	return l.password.Focus()
}

func (l *LoginModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		l.submitting = false
		if msg.err != nil {
			l.err = loginErrorText(msg.err)
			l.password.SetValue("")
			return l.setFocus(1), nil
		}
		if l.deps.Tokens != nil {
			l.deps.Tokens.SetToken(msg.sess.Token)
		}
		l.notice = ""
		l.err = ""
		l.password.SetValue("")
		return nil, &PageNav{PageID: pageAdmin, Params: msg.sess}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return tea.Quit, nil
		case "tab", "down":
			return l.setFocus(l.focus + 1), nil
		case "shift+tab", "up":
			return l.setFocus(l.focus - 1), nil
		case "enter":
			if l.focus == 0 {
				return l.setFocus(1), nil
			}
			return l.submit(), nil
		}
	}

	if l.submitting {
		return nil, nil
	}
	var cmd tea.Cmd
	if l.focus == 0 {
		l.username, cmd = l.username.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd, nil
}

func (l *LoginModel) submit() tea.Cmd {
	if l.submitting {
		return nil
	}
	username := strings.TrimSpace(l.username.Value())
	password := l.password.Value()
	switch {
	case username == "":
		l.err = "Username is required"
		return l.setFocus(0)
	case password == "":
		l.err = "Password is required"
		return nil
	}
	l.err = ""
	l.submitting = true

	deps := l.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()
		resp, err := deps.Auth.Login(ctx, username, password)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		sess, err := session.FromLogin(resp, deps.APIBase, deps.Now())
		if err != nil {
			return loginDoneMsg{err: err}
		}
		if deps.Store != nil {
			if err := deps.Store.Save(sess); err != nil {
				log.Printf("tui: save session: %v", err)
			}
		}
		return loginDoneMsg{sess: sess}
	}
}

func loginErrorText(err error) string {
	switch {
	case apiclient.IsUnauthorized(err):
		return "Invalid username or password"
	case errors.Is(err, session.ErrNotAdmin):
		return "This account is not an administrator"
	case errors.Is(err, session.ErrExpired), errors.Is(err, session.ErrInvalidToken):
		return "The server returned an unusable token"
	case apiclient.KindOf(err) == apiclient.KindNetwork, apiclient.KindOf(err) == apiclient.KindTimeout:
		return "Cannot reach the API server"
	}
	return apiclient.Message(err, "Login failed")
}

func (l *LoginModel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Initializing..."
	}
	focusStyle := lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	userLabel, passLabel := labelStyle.Render("Username"), labelStyle.Render("Password")
	if l.focus == 0 {
		userLabel = focusStyle.Render("Username")
	} else {
		passLabel = focusStyle.Render("Password")
	}

	rows := []string{
		lipgloss.NewStyle().Bold(true).Render("ai4s") + " " + labelStyle.Render("GPU platform administration"),
	}
	if l.deps.APIBase != "" {
		rows = append(rows, labelStyle.Render(l.deps.APIBase))
	}
	rows = append(rows, "", userLabel, l.username.View(), "", passLabel, l.password.View(), "")

	switch {
	case l.submitting:
		rows = append(rows, helpStyle.Render(spinnerFrame()+" Signing in..."))
	case l.err != "":
		rows = append(rows, errorTextStyle.Render("⚠ "+l.err))
	case l.notice != "":
		rows = append(rows, lipgloss.NewStyle().Foreground(ColorOrange).Render(l.notice))
	default:
		rows = append(rows, "")
	}
	rows = append(rows, "", helpStyle.Render("Enter: Log in • Tab: Switch field • Esc: Quit"))

	box := lipgloss.NewStyle().
		Width(44).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Padding(1, 2).
		Render(strings.Join(rows, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
