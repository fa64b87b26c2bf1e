package tui

import (
	"fmt"
	"strconv"
	"strings"

	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/paging"
	"scrumbringer-admin/internal/remote"
	"scrumbringer-admin/internal/search"

	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 100

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width
	}
	return defaultWidth
}

func (m Model) View() string {
	s := m.state
	var body string
	if s.Core.User == nil {
		body = m.viewLogin()
	} else {
		body = joinLines(m.viewTabs(), "", m.viewPage())
	}
	var modal string
	if f := activeForm(s, m.inviting); f != nil {
		modal = m.viewForm(f)
	} else if s.Core.Page == app.PageMetrics && s.Metrics.Executions != nil {
		modal = m.viewExecutions()
	}
	return joinLines(m.viewHeader(), body, modal, m.viewToast(), m.viewHelp())
}

func (m Model) viewHeader() string {
	s := m.state
	parts := []string{"sbadmin"}
	if u := s.Core.User; u != nil {
		parts = append(parts, fmt.Sprintf("%s (%s)", u.Email, u.OrgRole))
	}
	if s.Core.ProjectID != nil {
		parts = append(parts, "project: "+m.projectName(*s.Core.ProjectID))
	}
	parts = append(parts, s.Core.Page.String())
	return styleHeader().Width(m.contentWidth()).Render(truncate(strings.Join(parts, " · "), m.contentWidth()-2))
}

func (m Model) projectName(id int64) string {
	for _, p := range m.state.Projects.Projects.OrElse(nil) {
		if p.ID == id {
			return p.Name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, len(app.Pages))
	for i, p := range app.Pages {
		tabs = append(tabs, styleTab(p == m.state.Core.Page).Render(fmt.Sprintf("%d %s", i+1, p)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewLogin() string {
	lines := []string{"", "Not signed in."}
	if e := m.state.Core.AuthError; e != "" {
		lines = append(lines, styleError().Render(e))
	}
	lines = append(lines, styleMuted().Render("Sign in (sbadmin login <email> for the local backend), then press enter to retry."))
	return strings.Join(lines, "\n")
}

// remoteView renders the non-loaded states of v or hands the value to render.
func remoteView[T any](m Model, v remote.Value[T], render func(T) string) string {
	switch v.Kind() {
	case remote.Loading:
		return m.spin.View() + " Loading…"
	case remote.Failed:
		return styleError().Render(v.Err().Message)
	case remote.Loaded:
		val, _ := v.Get()
		return render(val)
	default:
		return styleMuted().Render("—")
	}
}

func emptyOr(rows [][]string, table string) string {
	if len(rows) == 0 {
		return styleMuted().Render("(empty)")
	}
	return table
}

func (m Model) table(key string, cols []column, rows [][]string, focused bool) string {
	return emptyOr(rows, renderTable(fitColumns(cols, m.contentWidth()), rows, m.cursor(key, len(rows)), focused))
}

func (m Model) viewPage() string {
	s := m.state
	switch s.Core.Page {
	case app.PageProjects:
		return remoteView(m, s.Projects.Projects, func(ps []model.Project) string {
			rows := make([][]string, 0, len(ps))
			for _, p := range ps {
				mark := " "
				if s.Core.ProjectID != nil && *s.Core.ProjectID == p.ID {
					mark = "●"
				}
				rows = append(rows, []string{mark, strconv.FormatInt(p.ID, 10), p.Name, string(p.MyRole), strconv.Itoa(p.MembersCount)})
			}
			return m.table("projects", []column{{"", 1}, {"ID", 5}, {"Name", 30}, {"My role", 9}, {"Members", 8}}, rows, true)
		})
	case app.PageCards:
		return m.viewCards()
	case app.PageMembers:
		return m.viewMembers()
	case app.PageWorkflows:
		return m.viewWorkflows()
	case app.PageTemplates:
		return remoteView(m, s.Templates.Templates, func(ts []model.TaskTemplate) string {
			rows := make([][]string, 0, len(ts))
			for _, t := range ts {
				scope := "org"
				if t.ProjectID != nil {
					scope = "project"
				}
				rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.Name, strconv.FormatInt(t.TypeID, 10), strconv.Itoa(t.Priority), scope})
			}
			return m.table("templates", []column{{"ID", 5}, {"Name", 30}, {"Type", 5}, {"Prio", 4}, {"Scope", 8}}, rows, true)
		})
	case app.PageOrgSettings:
		return m.viewOrg()
	case app.PageMetrics:
		return m.viewMetrics()
	case app.PageInvites:
		return remoteView(m, s.Invites.Links, func(ls []model.InviteLink) string {
			rows := make([][]string, 0, len(ls))
			for _, l := range ls {
				state := string(l.State)
				if s.Invites.Regen.InFlight && s.Invites.Regenerating == l.Email {
					state = "regenerating…"
				}
				rows = append(rows, []string{l.Email, state, l.CreatedAt.Format("2006-01-02"), l.URL})
			}
			return m.table("invites", []column{{"Email", 26}, {"State", 13}, {"Created", 10}, {"Link", 60}}, rows, true)
		})
	}
	return ""
}

func (m Model) viewCards() string {
	s := m.state.Cards
	return remoteView(m, s.Cards, func(cs []model.Card) string {
		rows := make([][]string, 0, len(cs))
		for _, c := range cs {
			rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Title, string(c.State), fmt.Sprintf("%d/%d", c.CompletedCount, c.TaskCount), c.Color})
		}
		out := m.table("cards", []column{{"ID", 5}, {"Title", 36}, {"State", 12}, {"Tasks", 7}, {"Color", 8}}, rows, true)
		if c, ok := selected(m, "cards", cs); ok && c.Description != "" {
			out = joinLines(out, "", renderMarkdown(c.Description, m.contentWidth()-4))
		}
		return out
	})
}

func (m Model) viewMembers() string {
	s := m.state.Members
	users := s.OrgUsers.OrElse(nil)
	return remoteView(m, s.Members, func(ms []model.ProjectMember) string {
		rows := make([][]string, 0, len(ms))
		for _, mem := range ms {
			u, _ := model.FindOrgUser(users, mem.UserID)
			role := string(mem.Role)
			if s.RoleChange.InFlight && s.RoleChanging == mem.UserID {
				role += " …"
			}
			rows = append(rows, []string{u.Email, role, styleError().Render(s.RowError.For(mem.UserID))})
		}
		return m.table("members", []column{{"Email", 30}, {"Role", 10}, {"", 40}}, rows, true)
	})
}

func (m Model) viewWorkflows() string {
	s := m.state.Workflows
	list := remoteView(m, s.Workflows, func(ws []model.Workflow) string {
		rows := make([][]string, 0, len(ws))
		for _, w := range ws {
			active := boolText(w.Active)
			if s.Toggle.InFlight && s.Toggling == w.ID {
				active = "…"
			}
			mark := " "
			if w.ID == s.SelectedID {
				mark = "▸"
			}
			rows = append(rows, []string{mark, strconv.FormatInt(w.ID, 10), w.Name, active, strconv.Itoa(w.RuleCount)})
		}
		out := m.table("workflows", []column{{"", 1}, {"ID", 5}, {"Name", 30}, {"Active", 6}, {"Rules", 5}}, rows, s.SelectedID == 0)
		if w, ok := selected(m, "workflows", ws); ok && s.SelectedID == 0 && w.Description != "" {
			out = joinLines(out, "", renderMarkdown(w.Description, m.contentWidth()-4))
		}
		return out
	})
	if s.SelectedID == 0 {
		return list
	}
	rules := remoteView(m, s.Rules, func(rs []model.Rule) string {
		rows := make([][]string, 0, len(rs))
		for _, r := range rs {
			names := make([]string, 0, len(r.Templates))
			for _, t := range r.Templates {
				names = append(names, fmt.Sprintf("%d.%s", t.ExecutionOrder, t.Name))
			}
			rows = append(rows, []string{strconv.FormatInt(r.ID, 10), r.Name, string(r.ResourceType), r.ToState, boolText(r.Active), strings.Join(names, ", ")})
		}
		return m.table("rules", []column{{"ID", 5}, {"Rule", 24}, {"On", 5}, {"To state", 12}, {"Active", 6}, {"Templates", 40}}, rows, true)
	})
	return joinLines(list, "", lipgloss.NewStyle().Bold(true).Render("Rules"), rules)
}

func (m Model) viewOrg() string {
	s := m.state.OrgSettings
	users := remoteView(m, s.Users, func(us []model.OrgUser) string {
		rows := make([][]string, 0, len(us))
		for _, u := range us {
			role := string(u.OrgRole)
			if d, ok := s.Drafts[u.ID]; ok {
				role = fmt.Sprintf("%s → %s", u.OrgRole, d)
			}
			if s.Save.InFlight && s.Saving == u.ID {
				role += " (saving)"
			}
			rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Email, role, styleError().Render(s.RowError.For(u.ID))})
		}
		return m.table("org", []column{{"ID", 5}, {"Email", 30}, {"Role", 22}, {"", 40}}, rows, !m.state.UserProjects.Open)
	})
	up := m.state.UserProjects
	if !up.Open {
		return users
	}
	projects := remoteView(m, up.Projects, func(ps []model.UserProject) string {
		rows := make([][]string, 0, len(ps))
		for _, p := range ps {
			role := string(p.Role)
			if up.Row.InFlight && up.RowBusy == p.ProjectID {
				role += " …"
			}
			rows = append(rows, []string{strconv.FormatInt(p.ProjectID, 10), p.ProjectName, role, styleError().Render(up.RowError.For(p.ProjectID))})
		}
		return m.table("userprojects", []column{{"ID", 5}, {"Project", 30}, {"Role", 10}, {"", 40}}, rows, true)
	})
	return joinLines(users, "", lipgloss.NewStyle().Bold(true).Render("Projects of "+up.User.Email), projects)
}

func (m Model) viewMetrics() string {
	s := m.state.Metrics
	head := styleMuted().Render(fmt.Sprintf("Last %d days (w to change)", s.Days))
	table := remoteView(m, s.Summary, func(ws []model.WorkflowMetrics) string {
		var detail []model.RuleMetrics
		if d, ok := s.Detail.Get(); ok {
			detail = d.Rules
		}
		var rows [][]string
		for _, w := range ws {
			mark := "▸"
			if w.WorkflowID == s.Expanded {
				mark = "▾"
			}
			rows = append(rows, []string{mark + " " + w.WorkflowName, strconv.Itoa(w.Evaluated), strconv.Itoa(w.Applied), strconv.Itoa(w.Suppressed)})
			if w.WorkflowID != s.Expanded {
				continue
			}
			for _, r := range detail {
				suppressed := r.SuppressedIdempotent + r.SuppressedNotUserTriggered + r.SuppressedNotMatching + r.SuppressedInactive
				rows = append(rows, []string{"    " + r.RuleName, strconv.Itoa(r.Evaluated), strconv.Itoa(r.Applied), strconv.Itoa(suppressed)})
			}
		}
		out := m.table("metrics", []column{{"Workflow / rule", 36}, {"Evaluated", 9}, {"Applied", 7}, {"Suppressed", 10}}, rows, true)
		if s.Expanded != 0 && s.Detail.IsLoading() {
			out = joinLines(out, m.spin.View()+" Loading rules…")
		}
		return out
	})
	return joinLines(head, table)
}

func (m Model) viewExecutions() string {
	ex := m.state.Metrics.Executions
	body := remoteView(m, ex.Page, func(p model.ExecutionsPage) string {
		rows := make([][]string, 0, len(p.Executions))
		for _, e := range p.Executions {
			rows = append(rows, []string{
				e.CreatedAt.Format("2006-01-02 15:04"),
				e.Outcome,
				e.SuppressionReason,
				fmt.Sprintf("%s #%d", e.OriginType, e.OriginID),
				e.UserEmail,
			})
		}
		pg := paging.Page{Limit: p.Pagination.Limit, Offset: p.Pagination.Offset, Total: p.Pagination.Total}
		table := emptyOr(rows, renderTable([]column{{"When", 16}, {"Outcome", 10}, {"Reason", 18}, {"Origin", 14}, {"User", 24}}, rows, 0, false))
		return joinLines(table, styleMuted().Render(fmt.Sprintf("page %d/%d · %d executions", pg.Current(), pg.TotalPages(), pg.Total)))
	})
	return styleModal().Render(joinLines(lipgloss.NewStyle().Bold(true).Render("Executions · "+ex.RuleName), body))
}

func (m Model) viewForm(f *form) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(f.title)}
	for i, fl := range f.fields {
		v := fl.value
		if i == m.field {
			v = m.input.View()
		}
		label := fl.label + ":"
		if i == m.field {
			label = lipgloss.NewStyle().Foreground(colorAccent).Render(label)
		}
		lines = append(lines, label+" "+v)
	}
	if f.id == "member:create" {
		lines = append(lines, m.viewSearch(m.state.Members.Search))
	}
	if f.body != "" {
		lines = append(lines, f.body)
	}
	if f.sub.Error != "" {
		lines = append(lines, styleError().Render(f.sub.Error))
	}
	if f.busy() {
		lines = append(lines, m.spin.View()+" Saving…")
	}
	hint := "enter submit · tab next field · esc cancel"
	if len(f.fields) == 0 {
		hint = "y/enter confirm · n/esc cancel"
	}
	if strings.HasPrefix(f.id, "userprojects:") {
		hint += " · ctrl+n/p move · ctrl+x remove · ctrl+r role"
	}
	lines = append(lines, styleMuted().Render(hint))
	return styleModal().Render(strings.Join(lines, "\n"))
}

func (m Model) viewSearch(s search.State[model.OrgUser]) string {
	switch s.Status() {
	case search.Idle:
		return styleMuted().Render("Type to search org users")
	case search.Typing:
		return styleMuted().Render("…")
	}
	return remoteView(m, s.Results, func(us []model.OrgUser) string {
		if len(us) == 0 {
			return styleMuted().Render("No matches")
		}
		lines := make([]string, 0, len(us))
		for i, u := range us {
			line := "  " + u.Email
			if i == min(m.pick, len(us)-1) {
				line = styleSelected().Render("› " + u.Email)
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	})
}

func (m Model) viewToast() string {
	t := m.state.UI.Toast
	if t == nil {
		return ""
	}
	color := colorAccent
	switch t.Level {
	case effect.ToastSuccess:
		color = colorSuccess
	case effect.ToastWarning:
		color = colorWarning
	case effect.ToastError:
		color = colorError
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(t.Text)
}

var pageHelp = map[app.Page]string{
	app.PageProjects:    "enter select · n new",
	app.PageCards:       "n new · e edit · d delete",
	app.PageMembers:     "a add · d remove · m toggle role",
	app.PageWorkflows:   "enter rules · n new · e edit · d delete · space toggle · (rules) t attach · D detach · esc back",
	app.PageTemplates:   "n new · e edit · d delete",
	app.PageOrgSettings: "m change role · s save · z discard · u projects",
	app.PageMetrics:     "enter expand/executions · w window",
	app.PageInvites:     "n new · R regenerate · c copy link",
}

func (m Model) viewHelp() string {
	if m.state.Core.User == nil {
		return styleMuted().Render("enter retry · q quit")
	}
	if !m.help {
		return styleMuted().Render(pageHelp[m.state.Core.Page] + " · ? help")
	}
	return styleMuted().Render(strings.Join([]string{
		pageHelp[m.state.Core.Page],
		"1-8/tab pages · j/k move · r reload · x dismiss · L locale · T theme · O sign out · q quit",
	}, "\n"))
}
