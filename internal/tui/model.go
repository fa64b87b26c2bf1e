package tui

import (
	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/app/invites"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/runner"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model adapts app.State to bubbletea. Everything the panel shows lives in
// state; the model only adds cursors, the focused form field and the
// terminal size.
type Model struct {
	state  app.State
	runner *runner.Runner
	boot   tea.Cmd

	// start is the page requested on the command line, opened once the
	// session and the project list are known.
	start    app.Page
	starting bool

	width  int
	height int
	help   bool

	cursors  map[string]int
	pick     int
	inviting bool

	formID string
	field  int
	input  textinput.Model
	spin   spinner.Model
}

func NewModel(r *runner.Runner, opts app.Options, start app.Page) Model {
	s, eff := app.New(opts)
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 200
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleMuted()
	return Model{
		state:    s,
		runner:   r,
		boot:     r.Cmd(eff),
		start:    start,
		starting: start != app.PageProjects && start != app.PageLogin,
		cursors:  map[string]int{},
		input:    in,
		spin:     sp,
	}
}

// State exposes the engine state, mostly for tests.
func (m Model) State() app.State { return m.state }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.boot, m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case invites.Created:
		if msg.Result.OK() {
			m.inviting = false
		}
	}
	return m.dispatch(msg)
}

// dispatch reduces msgs in order and hands every effect to the runner.
func (m Model) dispatch(msgs ...effect.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		prevTheme := m.state.UI.Theme
		var eff effect.Effect
		m.state, eff = app.Reduce(m.state, msg)
		if m.state.UI.Theme != prevTheme {
			applyThemePreference(m.state.UI.Theme)
		}
		if c := m.runner.Cmd(eff); c != nil {
			cmds = append(cmds, c)
		}
	}
	m.syncForm()
	if next := m.startupMsgs(); len(next) > 0 {
		var c tea.Cmd
		m, c = m.dispatch(next...)
		cmds = append(cmds, c)
	}
	return m, tea.Batch(cmds...)
}

// startupMsgs opens the requested start page once projects are loaded,
// selecting the first project when the page needs one.
func (m *Model) startupMsgs() []effect.Msg {
	if !m.starting || m.state.Core.User == nil {
		return nil
	}
	ps, ok := m.state.Projects.Projects.Get()
	if !ok {
		if m.state.Projects.Projects.IsFailed() {
			m.starting = false
		}
		return nil
	}
	m.starting = false
	var out []effect.Msg
	if m.start.NeedsProject() && m.state.Core.ProjectID == nil && len(ps) > 0 {
		id := ps[0].ID
		out = append(out, app.SelectProject{ID: &id})
	}
	return append(out, app.Navigate{Page: m.start})
}

// syncForm resets the text input whenever a different form opens.
func (m *Model) syncForm() {
	if m.inviting && m.state.Core.Page != app.PageInvites {
		m.inviting = false
	}
	f := activeForm(m.state, m.inviting)
	if f == nil {
		m.formID = ""
		m.input.Blur()
		return
	}
	if f.id == m.formID {
		return
	}
	m.formID = f.id
	m.field = 0
	m.pick = 0
	m.loadField(f)
}

func (m *Model) loadField(f *form) {
	if len(f.fields) == 0 {
		m.input.Blur()
		return
	}
	m.field = ((m.field % len(f.fields)) + len(f.fields)) % len(f.fields)
	m.input.SetValue(f.fields[m.field].value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) cursor(key string, n int) int {
	c := m.cursors[key]
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func (m *Model) move(key string, n, delta int) {
	if n == 0 {
		return
	}
	c := m.cursor(key, n) + delta
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}
	next := make(map[string]int, len(m.cursors)+1)
	for k, v := range m.cursors {
		next[k] = v
	}
	next[key] = c
	m.cursors = next
}
