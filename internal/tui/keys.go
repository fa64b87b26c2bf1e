package tui

import (
	"strconv"
	"strings"

	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/app/cards"
	"scrumbringer-admin/internal/app/invites"
	"scrumbringer-admin/internal/app/members"
	"scrumbringer-admin/internal/app/metrics"
	"scrumbringer-admin/internal/app/orgsettings"
	"scrumbringer-admin/internal/app/projects"
	"scrumbringer-admin/internal/app/templates"
	"scrumbringer-admin/internal/app/userprojects"
	"scrumbringer-admin/internal/app/workflows"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// metricsRow is a summary workflow row or, under the expanded workflow, one
// of its rules.
type metricsRow struct {
	workflowID int64
	ruleID     int64
	ruleName   string
}

func metricsRows(s metrics.State) []metricsRow {
	var out []metricsRow
	for _, w := range s.Summary.OrElse(nil) {
		out = append(out, metricsRow{workflowID: w.WorkflowID})
		if w.WorkflowID != s.Expanded {
			continue
		}
		if d, ok := s.Detail.Get(); ok {
			for _, r := range d.Rules {
				out = append(out, metricsRow{workflowID: w.WorkflowID, ruleID: r.RuleID, ruleName: r.RuleName})
			}
		}
	}
	return out
}

// list names the cursor of the current page and its row count.
func (m Model) list() (string, int) {
	s := m.state
	switch s.Core.Page {
	case app.PageProjects:
		return "projects", len(s.Projects.Projects.OrElse(nil))
	case app.PageCards:
		return "cards", len(s.Cards.Cards.OrElse(nil))
	case app.PageMembers:
		return "members", len(s.Members.Members.OrElse(nil))
	case app.PageWorkflows:
		if s.Workflows.SelectedID != 0 {
			return "rules", len(s.Workflows.Rules.OrElse(nil))
		}
		return "workflows", len(s.Workflows.Workflows.OrElse(nil))
	case app.PageTemplates:
		return "templates", len(s.Templates.Templates.OrElse(nil))
	case app.PageOrgSettings:
		if s.UserProjects.Open {
			return "userprojects", len(s.UserProjects.Projects.OrElse(nil))
		}
		return "org", len(s.OrgSettings.Users.OrElse(nil))
	case app.PageMetrics:
		return "metrics", len(metricsRows(s.Metrics))
	case app.PageInvites:
		return "invites", len(s.Invites.Links.OrElse(nil))
	}
	return "", 0
}

// selected returns the item under the cursor of rows.
func selected[T any](m Model, key string, rows []T) (T, bool) {
	if len(rows) == 0 {
		var zero T
		return zero, false
	}
	return rows[m.cursor(key, len(rows))], true
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if f := activeForm(m.state, m.inviting); f != nil {
		return m.formKey(f, k)
	}
	if m.state.Core.Page == app.PageMetrics && m.state.Metrics.Executions != nil {
		return m.executionsKey(k)
	}
	if m.state.Core.User == nil {
		switch k.String() {
		case "q":
			return m, tea.Quit
		case "enter", "r":
			return m.dispatch(app.Reconnect{})
		}
		return m, nil
	}

	key, n := m.list()
	switch k.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.help = !m.help
		return m, nil
	case "up", "k":
		m.move(key, n, -1)
		return m, nil
	case "down", "j":
		m.move(key, n, 1)
		return m, nil
	case "tab":
		return m.dispatch(app.Navigate{Page: m.adjacentPage(1)})
	case "shift+tab":
		return m.dispatch(app.Navigate{Page: m.adjacentPage(-1)})
	case "r":
		return m.dispatch(app.Navigate{Page: m.state.Core.Page})
	case "x":
		return m.dispatch(app.DismissToast{})
	case "L":
		next := i18n.Spanish
		if m.state.UI.Locale == i18n.Spanish {
			next = i18n.English
		}
		return m.dispatch(app.SetLocale{Locale: next})
	case "T":
		return m.dispatch(app.SetTheme{Theme: nextTheme(m.state.UI.Theme)})
	case "O":
		return m.dispatch(app.Logout{})
	}
	if d, err := strconv.Atoi(k.String()); err == nil && d >= 1 && d <= len(app.Pages) {
		return m.dispatch(app.Navigate{Page: app.Pages[d-1]})
	}
	if msg := m.pageKey(k.String()); msg != nil {
		return m.dispatch(msg)
	}
	if k.String() == "n" && m.state.Core.Page == app.PageInvites {
		m.inviting = true
		m.syncForm()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) adjacentPage(delta int) app.Page {
	cur := 0
	for i, p := range app.Pages {
		if p == m.state.Core.Page {
			cur = i
		}
	}
	n := len(app.Pages)
	return app.Pages[((cur+delta)%n+n)%n]
}

// pageKey maps a key on the current page to a feature message.
func (m Model) pageKey(key string) effect.Msg {
	s := m.state
	switch s.Core.Page {
	case app.PageProjects:
		switch key {
		case "n":
			return projects.OpenCreate{}
		case "enter":
			if p, ok := selected(m, "projects", s.Projects.Projects.OrElse(nil)); ok {
				id := p.ID
				return app.SelectProject{ID: &id}
			}
		}

	case app.PageCards:
		c, ok := selected(m, "cards", s.Cards.Cards.OrElse(nil))
		switch {
		case key == "n":
			return cards.OpenCreate{}
		case key == "e" && ok:
			return cards.OpenEdit{Card: c}
		case key == "d" && ok:
			return cards.OpenDelete{Card: c}
		}

	case app.PageMembers:
		mem, ok := selected(m, "members", s.Members.Members.OrElse(nil))
		switch {
		case key == "a":
			return members.OpenAdd{}
		case key == "d" && ok:
			return members.OpenRemove{Member: mem}
		case key == "m" && ok:
			return members.ChangeRole{UserID: mem.UserID, Role: toggleProjectRole(mem.Role)}
		}

	case app.PageWorkflows:
		if s.Workflows.SelectedID != 0 {
			r, ok := selected(m, "rules", s.Workflows.Rules.OrElse(nil))
			switch {
			case key == "esc":
				return workflows.Deselect{}
			case key == "n":
				return workflows.OpenCreateRule{}
			case key == "e" && ok:
				return workflows.OpenEditRule{Rule: r}
			case key == "d" && ok:
				return workflows.OpenDeleteRule{Rule: r}
			case key == "t" && ok:
				return workflows.OpenAttach{Rule: r}
			case key == "D" && ok && len(r.Templates) > 0:
				last := r.Templates[len(r.Templates)-1]
				return workflows.Detach{RuleID: r.ID, TemplateID: last.TemplateID}
			}
			return nil
		}
		w, ok := selected(m, "workflows", s.Workflows.Workflows.OrElse(nil))
		switch {
		case key == "n":
			return workflows.OpenCreate{}
		case key == "e" && ok:
			return workflows.OpenEdit{Workflow: w}
		case key == "d" && ok:
			return workflows.OpenDelete{Workflow: w}
		case (key == " " || key == "space") && ok:
			return workflows.ToggleActive{Workflow: w}
		case key == "enter" && ok:
			return workflows.SelectWorkflow{ID: w.ID}
		}

	case app.PageTemplates:
		t, ok := selected(m, "templates", s.Templates.Templates.OrElse(nil))
		switch {
		case key == "n":
			return templates.OpenCreate{}
		case key == "e" && ok:
			return templates.OpenEdit{Template: t}
		case key == "d" && ok:
			return templates.OpenDelete{Template: t}
		}

	case app.PageOrgSettings:
		u, ok := selected(m, "org", s.OrgSettings.Users.OrElse(nil))
		if !ok {
			return nil
		}
		switch key {
		case "m":
			role := u.OrgRole
			if d, drafted := s.OrgSettings.Drafts[u.ID]; drafted {
				role = d
			}
			next := model.OrgRoleAdmin
			if role == model.OrgRoleAdmin {
				next = model.OrgRoleMember
			}
			return orgsettings.RoleDraft{UserID: u.ID, Role: next}
		case "s":
			return orgsettings.Save{UserID: u.ID}
		case "z":
			return orgsettings.DiscardDraft{UserID: u.ID}
		case "enter", "u":
			return app.OpenUserProjects{UserID: u.ID}
		}

	case app.PageMetrics:
		if key == "w" {
			return metrics.SetDays{Days: nextDays(s.Metrics.Days)}
		}
		row, ok := selected(m, "metrics", metricsRows(s.Metrics))
		if !ok || (key != "enter" && key != "o") {
			return nil
		}
		if row.ruleID != 0 {
			return metrics.OpenExecutions{RuleID: row.ruleID, RuleName: row.ruleName}
		}
		return metrics.Toggle{WorkflowID: row.workflowID}

	case app.PageInvites:
		l, ok := selected(m, "invites", s.Invites.Links.OrElse(nil))
		switch {
		case key == "R" && ok:
			return invites.Regenerate{Email: l.Email}
		case key == "c" && ok:
			return invites.Copy{URL: l.URL}
		}
	}
	return nil
}

func nextDays(d int) int {
	switch d {
	case 7:
		return 30
	case 30:
		return 90
	default:
		return 7
	}
}

func (m Model) executionsKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "esc", "q":
		return m.dispatch(metrics.CloseExecutions{})
	case "left", "h", "pgup":
		return m.dispatch(metrics.PrevPage{})
	case "right", "l", "pgdown":
		return m.dispatch(metrics.NextPage{})
	case "home", "g":
		return m.dispatch(metrics.FirstPage{})
	case "end", "G":
		return m.dispatch(metrics.LastPage{})
	}
	return m, nil
}

// formKey routes keys while a form is open: tab cycles fields, enter
// submits, esc closes and everything else edits the focused field.
func (m Model) formKey(f *form, k tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := k.String()
	if strings.HasPrefix(f.id, "userprojects:") {
		if msg, handled := m.userProjectsRowKey(key); handled {
			return m.dispatch(msg)
		}
	}

	switch key {
	case "esc":
		if f.close == nil {
			m.inviting = false
			m.syncForm()
			return m, nil
		}
		return m.dispatch(f.close)
	case "tab", "shift+tab":
		if len(f.fields) > 1 {
			if key == "tab" {
				m.field++
			} else {
				m.field--
			}
			m.loadField(f)
		}
		return m, nil
	case "up", "down":
		if f.id == "member:create" && m.field == 0 {
			n := len(m.state.Members.Search.Results.OrElse(nil))
			if key == "up" && m.pick > 0 {
				m.pick--
			}
			if key == "down" && m.pick < n-1 {
				m.pick++
			}
		}
		return m, nil
	case "enter":
		if f.id == "member:create" && m.field == 0 {
			if users := m.state.Members.Search.Results.OrElse(nil); len(users) > 0 {
				return m.dispatch(members.SelectUser{User: users[min(m.pick, len(users)-1)]})
			}
		}
		return m.dispatch(f.submit)
	}

	if len(f.fields) == 0 {
		switch key {
		case "y":
			return m.dispatch(f.submit)
		case "n":
			if f.close != nil {
				return m.dispatch(f.close)
			}
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	if m.input.Value() == before {
		return m, cmd
	}
	if f.id == "member:create" && m.field == 0 {
		m.pick = 0
	}
	next, c := m.dispatch(f.fields[m.field].input(m.input.Value()))
	return next, tea.Batch(cmd, c)
}

// userProjectsRowKey handles the row actions of the user projects overlay,
// which stay available while its add form has focus.
func (m *Model) userProjectsRowKey(key string) (effect.Msg, bool) {
	rows := m.state.UserProjects.Projects.OrElse(nil)
	switch key {
	case "ctrl+p":
		m.move("userprojects", len(rows), -1)
		return nil, true
	case "ctrl+n":
		m.move("userprojects", len(rows), 1)
		return nil, true
	case "ctrl+x":
		if p, ok := selected(*m, "userprojects", rows); ok {
			return userprojects.Remove{ProjectID: p.ProjectID}, true
		}
		return nil, true
	case "ctrl+r":
		if p, ok := selected(*m, "userprojects", rows); ok {
			return userprojects.ChangeRole{ProjectID: p.ProjectID, Role: toggleProjectRole(p.Role)}, true
		}
		return nil, true
	}
	return nil, false
}
