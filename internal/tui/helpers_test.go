package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/connermo/ai4s/internal/actions"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
	"github.com/connermo/ai4s/internal/session"
)

var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type fakeController struct {
	started     []refresh.Section
	sections    []refresh.Section
	paused      bool
	requests    []refresh.TargetID
	reject      bool
	optionLoads int
	retries     int
	visibility  []bool
}

func (f *fakeController) Start(s refresh.Section)      { f.started = append(f.started, s) }
func (f *fakeController) SetSection(s refresh.Section) { f.sections = append(f.sections, s) }
func (f *fakeController) SetPaused(p bool)             { f.paused = p }
func (f *fakeController) Paused() bool                 { return f.paused }
func (f *fakeController) OnVisibilityChange(v bool)    { f.visibility = append(f.visibility, v) }
func (f *fakeController) Snapshot() refresh.Snapshot   { return refresh.Snapshot{Paused: f.paused} }

func (f *fakeController) RequestRefresh(id refresh.TargetID, _ refresh.Reason) bool {
	f.requests = append(f.requests, id)
	return !f.reject
}

func (f *fakeController) LoadOptionsWithRetry(int) bool {
	f.optionLoads++
	return true
}

func (f *fakeController) RetryOptions() bool {
	f.retries++
	return true
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	err   error

	lastContainer model.ContainerInput
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ListUsers(context.Context, model.FetchOpts) ([]model.User, error) {
	return nil, f.record("ListUsers")
}

func (f *fakeAPI) ListContainers(context.Context, model.FetchOpts) ([]model.Container, error) {
	return nil, f.record("ListContainers")
}

func (f *fakeAPI) GetUser(_ context.Context, id int) (model.User, error) {
	return model.User{ID: id, Username: "bob"}, f.record("GetUser")
}

func (f *fakeAPI) CreateUser(_ context.Context, in model.UserInput) (model.User, error) {
	return model.User{ID: 9, Username: in.Username}, f.record("CreateUser")
}

func (f *fakeAPI) UpdateUser(_ context.Context, id int, in model.UserInput) (model.User, error) {
	return model.User{ID: id, Username: in.Username}, f.record("UpdateUser")
}

func (f *fakeAPI) DeleteUser(context.Context, int) error { return f.record("DeleteUser") }

func (f *fakeAPI) ChangePassword(context.Context, int, string) error {
	return f.record("ChangePassword")
}

func (f *fakeAPI) UserContainer(context.Context, int) (model.UserContainer, error) {
	return model.UserContainer{Ports: model.Ports{SSH: 2201, VSCode: 8401, Jupyter: 8801}}, f.record("UserContainer")
}

func (f *fakeAPI) CreateContainer(_ context.Context, in model.ContainerInput) (model.Container, error) {
	f.mu.Lock()
	f.lastContainer = in
	f.mu.Unlock()
	return model.Container{ID: "c-1", UserID: in.UserID}, f.record("CreateContainer")
}

func (f *fakeAPI) StartContainer(context.Context, string) error { return f.record("StartContainer") }

func (f *fakeAPI) StopContainer(context.Context, string) error { return f.record("StopContainer") }

func (f *fakeAPI) DeleteContainer(context.Context, string) error {
	return f.record("DeleteContainer")
}

func (f *fakeAPI) ResetContainerPassword(context.Context, string, string) error {
	return f.record("ResetContainerPassword")
}

type fakeReconciler struct {
	mu        sync.Mutex
	mutations []refresh.Mutation
}

func (r *fakeReconciler) AfterMutation(m refresh.Mutation, _ error) {
	r.mu.Lock()
	r.mutations = append(r.mutations, m)
	r.mu.Unlock()
}

type fakeStore struct {
	saved   []session.Session
	cleared int
}

func (s *fakeStore) Save(sess session.Session) error {
	s.saved = append(s.saved, sess)
	return nil
}

func (s *fakeStore) Clear() error {
	s.cleared++
	return nil
}

type fakeTokens struct{ token string }

func (t *fakeTokens) SetToken(token string) { t.token = token }

type testConsole struct {
	m      *AdminModel
	ctrl   *fakeController
	api    *fakeAPI
	rec    *fakeReconciler
	store  *fakeStore
	tokens *fakeTokens
}

func newTestConsole(t *testing.T, section refresh.Section) *testConsole {
	t.Helper()
	tc := &testConsole{
		ctrl:   &fakeController{},
		api:    &fakeAPI{},
		rec:    &fakeReconciler{},
		store:  &fakeStore{},
		tokens: &fakeTokens{token: "tok"},
	}
	tc.m = NewAdminModel(AdminDeps{
		Controller: tc.ctrl,
		Service:    actions.NewService(tc.api, tc.rec),
		Store:      tc.store,
		Tokens:     tc.tokens,
		Section:    section,
		ExportDir:  t.TempDir(),
		Now:        func() time.Time { return testNow },
	})
	tc.m.Enter(session.Session{Username: "admin", APIBase: "http://api.local:8080/api"})
	tc.m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return tc
}

// send delivers msg to the console and returns what it produced.
func (tc *testConsole) send(msg tea.Msg) (tea.Cmd, *PageNav) {
	return tc.m.Update(msg)
}

func (tc *testConsole) press(keys ...string) (tea.Cmd, *PageNav) {
	var (
		cmd tea.Cmd
		nav *PageNav
	)
	for _, k := range keys {
		cmd, nav = tc.m.Update(keyPress(k))
	}
	return cmd, nav
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func usersDone(users ...model.User) resultMsg {
	if users == nil {
		users = []model.User{}
	}
	return resultMsg{res: refresh.Result{Target: refresh.TargetUsers, Phase: refresh.PhaseDone, Users: users, At: testNow}}
}

func containersDone(containers ...model.Container) resultMsg {
	if containers == nil {
		containers = []model.Container{}
	}
	return resultMsg{res: refresh.Result{Target: refresh.TargetContainers, Phase: refresh.PhaseDone, Containers: containers, At: testNow}}
}

// run executes a single command and returns its message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("command is nil")
	}
	return cmd()
}
