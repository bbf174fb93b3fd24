package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DetailModal displays read-only detail content (user, container or access
// sheet). An optional export hook is bound to "x".
type DetailModal struct {
	ctx      ModalContext
	id       string
	title    string
	content  string
	viewport viewport.Model
	onExport func() tea.Cmd
}

func NewDetailModal(ctx ModalContext, id, title, content string) *DetailModal {
	return &DetailModal{
		ctx:      ctx,
		id:       id,
		title:    title,
		content:  content,
		viewport: viewport.New(80, 20),
	}
}

// WithExport binds the export key.
func (d *DetailModal) WithExport(fn func() tea.Cmd) *DetailModal {
	d.onExport = fn
	return d
}

func (d *DetailModal) ID() string { return d.id }

func (d *DetailModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if scrollViewport(&d.viewport, msg, d.ctx.ReverseScrollWheel) {
		return false, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "escape", "esc", "q":
			return true, nil
		case "x":
			if d.onExport != nil {
				return false, d.onExport()
			}
		}
		var cmd tea.Cmd
		d.viewport, cmd = d.viewport.Update(msg)
		return false, cmd
	}
	return false, nil
}

func (d *DetailModal) View(width, height int) string {
	status := scrollStatusItems
	if d.onExport != nil {
		status = append([]string{"x: Export YAML"}, scrollStatusItems...)
	}
	return renderScrollModal(&d.viewport, d.title, d.content, status, width, height)
}
