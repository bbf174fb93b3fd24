package tui

import tea "github.com/charmbracelet/bubbletea"

// App is the top-level Bubble Tea model that routes between pages.
type App struct {
	pages      map[string]Page
	activePage string
	width      int
	height     int
	listen     func() tea.Cmd
}

// NewApp creates a new App with the given pages. The first page is the default.
func NewApp(pages ...Page) *App {
	pageMap := make(map[string]Page, len(pages))
	var firstID string
	for i, p := range pages {
		pageMap[p.ID()] = p
		if i == 0 {
			firstID = p.ID()
		}
	}
	return &App{
		pages:      pageMap,
		activePage: firstID,
	}
}

// Listen subscribes the app to a message source. Each delivered message is
// routed to the active page and the subscription is re-armed.
func (a *App) Listen(wait func() tea.Cmd) *App {
	a.listen = wait
	return a
}

// ActivePage returns the id of the visible page.
func (a *App) ActivePage() string { return a.activePage }

func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if p, ok := a.pages[a.activePage]; ok {
		cmds = append(cmds, p.Init())
	}
	if a.listen != nil {
		cmds = append(cmds, a.listen())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = wsm.Width
		a.height = wsm.Height
	}

	var relisten tea.Cmd
	if _, ok := msg.(subscriptionMsg); ok && a.listen != nil {
		relisten = a.listen()
	}

	p, ok := a.pages[a.activePage]
	if !ok {
		return a, relisten
	}

	cmd, nav := p.Update(msg)
	if nav == nil {
		return a, tea.Batch(cmd, relisten)
	}

	next, exists := a.pages[nav.PageID]
	if !exists || nav.PageID == a.activePage {
		return a, tea.Batch(cmd, relisten)
	}
	if l, ok := p.(Leavable); ok {
		l.Leave()
	}
	a.activePage = nav.PageID
	if e, ok := next.(Enterable); ok {
		e.Enter(nav.Params)
	}
	var sizeCmd tea.Cmd
	if a.width > 0 && a.height > 0 {
		w, h := a.width, a.height
		sizeCmd = func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} }
	}
	return a, tea.Batch(cmd, relisten, next.Init(), sizeCmd)
}

func (a *App) View() string {
	if p, ok := a.pages[a.activePage]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}
