package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/connermo/ai4s/internal/actions"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
)

type formValues map[string]string

type formField struct {
	key      string
	label    string
	input    textinput.Model
	generate bool // ctrl+g fills a generated password
}

func newTextField(key, label, value, placeholder string, secret bool) formField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 128
	in.Width = 40
	in.SetValue(value)
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return formField{key: key, label: label, input: in}
}

func newPasswordField(key, label string, generate bool) formField {
	f := newTextField(key, label, "", "", true)
	f.generate = generate
	return f
}

// FormModal edits a set of text fields and, optionally, picks a user from
// the available-users option list. It stays open until the console reports
// the outcome of the submitted action.
type FormModal struct {
	id         string
	title      string
	fields     []formField
	picker     *userPicker
	focus      int
	submitting bool
	err        string
	submit     func(values formValues, user *model.User) tea.Cmd
}

func NewFormModal(id, title string, fields []formField, submit func(formValues, *model.User) tea.Cmd) *FormModal {
	f := &FormModal{id: id, title: title, fields: fields, submit: submit}
	f.setFocus(0)
	return f
}

// WithPicker adds a user selector as the first focusable row.
func (f *FormModal) WithPicker(p *userPicker) *FormModal {
	f.picker = p
	f.setFocus(0)
	return f
}

func (f *FormModal) ID() string { return f.id }

// Refresh re-reads the option list.
func (f *FormModal) Refresh() {
	if f.picker != nil {
		f.picker.refresh()
	}
}

// fail reopens the form for editing and shows msg.
func (f *FormModal) fail(msg string) {
	f.submitting = false
	f.err = msg
}

func (f *FormModal) focusCount() int {
	n := len(f.fields)
	if f.picker != nil {
		n++
	}
	return n
}

// fieldAt maps a focus index to a field index; ok is false for the picker.
func (f *FormModal) fieldAt(focus int) (int, bool) {
	if f.picker != nil {
		if focus == 0 {
			return 0, false
		}
		return focus - 1, true
	}
	return focus, true
}

func (f *FormModal) setFocus(i int) tea.Cmd {
	n := f.focusCount()
	if n == 0 {
		return nil
	}
	f.focus = (i%n + n) % n
	var cmd tea.Cmd
	for idx := range f.fields {
		f.fields[idx].input.Blur()
	}
	if idx, ok := f.fieldAt(f.focus); ok {
		cmd = f.fields[idx].input.Focus()
	}
	return cmd
}

func (f *FormModal) values() formValues {
	v := make(formValues, len(f.fields))
	for _, fl := range f.fields {
		v[fl.key] = fl.input.Value()
	}
	return v
}

func (f *FormModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}

	onPicker := false
	if _, isField := f.fieldAt(f.focus); !isField {
		onPicker = true
	}

	switch km.String() {
	case "escape", "esc":
		return true, nil
	case "tab":
		return false, f.setFocus(f.focus + 1)
	case "shift+tab":
		return false, f.setFocus(f.focus - 1)
	case "up":
		if onPicker {
			f.picker.move(-1)
			return false, nil
		}
		return false, f.setFocus(f.focus - 1)
	case "down":
		if onPicker {
			f.picker.move(1)
			return false, nil
		}
		return false, f.setFocus(f.focus + 1)
	case "ctrl+g":
		f.generatePassword()
		return false, nil
	case "ctrl+s":
		return false, f.doSubmit()
	case "enter":
		if onPicker && f.picker.opts.Status == refresh.OptionsFailed {
			return false, actionMsg(ActionMsg{Action: ActionRetryOptions})
		}
		if f.focus == f.focusCount()-1 {
			return false, f.doSubmit()
		}
		return false, f.setFocus(f.focus + 1)
	}

	if onPicker || f.submitting {
		return false, nil
	}
	idx, _ := f.fieldAt(f.focus)
	var cmd tea.Cmd
	f.fields[idx].input, cmd = f.fields[idx].input.Update(msg)
	return false, cmd
}

func (f *FormModal) generatePassword() {
	target := -1
	if idx, ok := f.fieldAt(f.focus); ok && f.fields[idx].generate {
		target = idx
	} else {
		for i, fl := range f.fields {
			if fl.generate {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return
	}
	pw, err := actions.GeneratePassword(actions.DefaultPasswordLength)
	if err != nil {
		f.err = err.Error()
		return
	}
	f.fields[target].input.SetValue(pw)
	f.fields[target].input.EchoMode = textinput.EchoNormal
}

func (f *FormModal) doSubmit() tea.Cmd {
	if f.submitting || f.submit == nil {
		return nil
	}
	var user *model.User
	if f.picker != nil {
		user = f.picker.selected()
	}
	f.submitting = true
	f.err = ""
	return f.submit(f.values(), user)
}

func (f *FormModal) View(width, height int) string {
	var rows []string
	focusStyle := lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)

	if f.picker != nil {
		label := labelStyle.Render("User")
		if f.focus == 0 {
			label = focusStyle.Render("User")
		}
		rows = append(rows, label, f.picker.view(f.focus == 0), "")
	}
	for i, fl := range f.fields {
		label := labelStyle.Render(fl.label)
		if idx, ok := f.fieldAt(f.focus); ok && idx == i {
			label = focusStyle.Render(fl.label)
		}
		rows = append(rows, label, fl.input.View(), "")
	}
	if f.submitting {
		frame := spinnerFrame()
		rows = append(rows, helpStyle.Render(frame+" Saving..."))
	} else if f.err != "" {
		rows = append(rows, errorTextStyle.Render("⚠ "+f.err))
	}

	status := []string{"Tab: Next", "Enter: Submit", "ESC: Cancel"}
	for _, fl := range f.fields {
		if fl.generate {
			status = []string{"Tab: Next", "Enter: Submit", "ctrl+g: Generate", "ESC: Cancel"}
			break
		}
	}
	return renderDialog(f.title, strings.Join(rows, "\n"), status, ColorBlue, width, height)
}

// userPicker selects one user from the available-users option list.
type userPicker struct {
	source func() refresh.Options
	opts   refresh.Options
	cursor int
}

func newUserPicker(source func() refresh.Options) *userPicker {
	p := &userPicker{source: source}
	p.refresh()
	return p
}

func (p *userPicker) refresh() {
	var keep int
	if u := p.selected(); u != nil {
		keep = u.ID
	}
	p.opts = p.source()
	p.cursor = 0
	for i, u := range p.opts.Users {
		if u.ID == keep {
			p.cursor = i
			break
		}
	}
}

func (p *userPicker) move(delta int) {
	if !p.opts.Selectable() {
		return
	}
	p.cursor = max(0, min(len(p.opts.Users)-1, p.cursor+delta))
}

func (p *userPicker) selected() *model.User {
	if !p.opts.Selectable() || p.cursor >= len(p.opts.Users) {
		return nil
	}
	u := p.opts.Users[p.cursor]
	return &u
}

const pickerRows = 5

func (p *userPicker) view(focused bool) string {
	if !p.opts.Selectable() {
		text := p.opts.Placeholder()
		switch p.opts.Status {
		case refresh.OptionsFailed:
			return errorTextStyle.Render(text)
		case refresh.OptionsLoading, refresh.OptionsRetrying:
			frame := spinnerFrame()
			return helpStyle.Render(frame + " " + text)
		}
		return helpStyle.Render(text)
	}

	start := 0
	if p.cursor >= pickerRows {
		start = p.cursor - pickerRows + 1
	}
	end := min(len(p.opts.Users), start+pickerRows)

	var lines []string
	for i := start; i < end; i++ {
		u := p.opts.Users[i]
		text := fmt.Sprintf("%s (#%d)", u.DisplayName(), u.ID)
		if u.Email != "" {
			text += "  " + u.Email
		}
		if i == p.cursor {
			style := lipgloss.NewStyle().Bold(true)
			if focused {
				style = style.Foreground(ColorBlue)
			}
			lines = append(lines, style.Render("> "+text))
		} else {
			lines = append(lines, "  "+text)
		}
	}
	if len(p.opts.Users) > pickerRows {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("  %d/%d", p.cursor+1, len(p.opts.Users))))
	}
	return strings.Join(lines, "\n")
}
