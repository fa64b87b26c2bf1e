package tui

import (
	"fmt"
	"strconv"
	"strings"

	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/app/cards"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/app/invites"
	"scrumbringer-admin/internal/app/members"
	"scrumbringer-admin/internal/app/projects"
	"scrumbringer-admin/internal/app/templates"
	"scrumbringer-admin/internal/app/userprojects"
	"scrumbringer-admin/internal/app/workflows"
	"scrumbringer-admin/internal/dialog"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/model"
)

// field is one editable line of a form. input turns the typed text into the
// feature message that records it; nil means the text is not yet valid.
type field struct {
	label string
	value string
	input func(string) effect.Msg
}

// form is the modal currently capturing keys. Forms are derived from state
// on every frame; the TUI keeps only the focused field and the text input.
type form struct {
	id     string
	title  string
	fields []field
	// body is extra read-only text, e.g. a delete confirmation.
	body   string
	submit effect.Msg
	close  effect.Msg
	sub    feature.Submission
}

func (f *form) busy() bool { return f != nil && f.sub.InFlight }

func boolText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "on":
		return true, true
	case "n", "no", "false", "0", "off":
		return false, true
	}
	return false, false
}

func intText(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func parseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func projectRole(s string) (model.ProjectRole, bool) {
	switch model.ProjectRole(strings.ToLower(strings.TrimSpace(s))) {
	case model.ProjectRoleManager:
		return model.ProjectRoleManager, true
	case model.ProjectRoleMember:
		return model.ProjectRoleMember, true
	}
	return "", false
}

func toggleProjectRole(r model.ProjectRole) model.ProjectRole {
	if r == model.ProjectRoleManager {
		return model.ProjectRoleMember
	}
	return model.ProjectRoleManager
}

func dialogID[T any](name string, m dialog.Mode[T]) string {
	return name + ":" + m.Kind().String()
}

// activeForm returns the form shown over the current page, if any.
func activeForm(s app.State, invite bool) *form {
	if s.UserProjects.Open && s.Core.Page == app.PageOrgSettings {
		return userProjectsForm(s.UserProjects)
	}
	switch s.Core.Page {
	case app.PageProjects:
		return projectsForm(s.Projects)
	case app.PageCards:
		return cardsForm(s.Cards)
	case app.PageMembers:
		return membersForm(s.Members)
	case app.PageWorkflows:
		return workflowsForm(s.Workflows)
	case app.PageTemplates:
		return templatesForm(s.Templates)
	case app.PageInvites:
		if invite {
			return &form{
				id:     "invite",
				title:  "New invite link",
				fields: []field{{label: "Email", value: s.Invites.Email, input: func(v string) effect.Msg { return invites.EmailInput{Value: v} }}},
				submit: invites.Create{},
				sub:    s.Invites.Create,
			}
		}
	}
	return nil
}

func projectsForm(s projects.State) *form {
	if !s.Dialog.IsOpen() {
		return nil
	}
	return &form{
		id:    dialogID("project", s.Dialog),
		title: "New project",
		fields: []field{
			{label: "Name", value: s.Name, input: func(v string) effect.Msg { return projects.NameInput{Value: v} }},
		},
		submit: projects.Submit{},
		close:  projects.Close{},
		sub:    s.Submit,
	}
}

func cardsForm(s cards.State) *form {
	if c, ok := s.Dialog.Deleting(); ok {
		return &form{
			id:     dialogID("card", s.Dialog),
			title:  "Delete card",
			body:   fmt.Sprintf("Delete %q? This cannot be undone.", c.Title),
			submit: cards.Submit{},
			close:  cards.Close{},
			sub:    s.Submit,
		}
	}
	if !s.Dialog.IsOpen() {
		return nil
	}
	title := "New card"
	if s.Dialog.Kind() == dialog.Edit {
		title = "Edit card"
	}
	return &form{
		id:    dialogID("card", s.Dialog),
		title: title,
		fields: []field{
			{label: "Title", value: s.Draft.Title, input: func(v string) effect.Msg { return cards.TitleInput{Value: v} }},
			{label: "Description", value: s.Draft.Description, input: func(v string) effect.Msg { return cards.DescInput{Value: v} }},
			{label: "Color", value: s.Draft.Color, input: func(v string) effect.Msg { return cards.ColorInput{Value: v} }},
		},
		submit: cards.Submit{},
		close:  cards.Close{},
		sub:    s.Submit,
	}
}

func membersForm(s members.State) *form {
	if m, ok := s.Dialog.Deleting(); ok {
		email := model.FallbackOrgUser(m.UserID).Email
		if u, found := model.FindOrgUser(s.OrgUsers.OrElse(nil), m.UserID); found {
			email = u.Email
		}
		return &form{
			id:     dialogID("member", s.Dialog),
			title:  "Remove member",
			body:   fmt.Sprintf("Remove %s from the project?", email),
			submit: members.Submit{},
			close:  members.Close{},
			sub:    s.Submit,
		}
	}
	if !s.Dialog.IsOpen() {
		return nil
	}
	selected := "(none)"
	if s.Selected != nil {
		selected = s.Selected.Email
	}
	return &form{
		id:    dialogID("member", s.Dialog),
		title: "Add member",
		fields: []field{
			{label: "Search", value: s.Search.Query, input: func(v string) effect.Msg { return members.SearchInput{Query: v} }},
			{label: "Role", value: string(s.Role), input: func(v string) effect.Msg {
				if r, ok := projectRole(v); ok {
					return members.RoleInput{Role: r}
				}
				return nil
			}},
		},
		body:   "Selected: " + selected,
		submit: members.Submit{},
		close:  members.Close{},
		sub:    s.Submit,
	}
}

func workflowsForm(s workflows.State) *form {
	if s.Attach.Rule != nil {
		r := s.Attach.Rule
		return &form{
			id:    fmt.Sprintf("attach:%d", r.ID),
			title: "Attach template to " + r.Name,
			fields: []field{
				{label: "Template id", value: intText(s.Attach.TemplateID), input: func(v string) effect.Msg {
					if id, ok := parseID(v); ok {
						return workflows.AttachTemplateInput{TemplateID: id}
					}
					return nil
				}},
				{label: "Order", value: intText(int64(s.Attach.Order)), input: func(v string) effect.Msg {
					if n, ok := parseID(v); ok {
						return workflows.AttachOrderInput{Order: int(n)}
					}
					return nil
				}},
			},
			submit: workflows.SubmitAttach{},
			close:  workflows.CloseAttach{},
			sub:    s.AttachSubmit,
		}
	}
	if r, ok := s.RuleDialog.Deleting(); ok {
		return &form{
			id:     dialogID("rule", s.RuleDialog),
			title:  "Delete rule",
			body:   fmt.Sprintf("Delete rule %q?", r.Name),
			submit: workflows.SubmitRule{},
			close:  workflows.CloseRule{},
			sub:    s.RuleSubmit,
		}
	}
	if s.RuleDialog.IsOpen() {
		d := s.RuleDraft
		title := "New rule"
		if s.RuleDialog.Kind() == dialog.Edit {
			title = "Edit rule"
		}
		taskType := ""
		if d.TaskTypeID != nil {
			taskType = intText(*d.TaskTypeID)
		}
		return &form{
			id:    dialogID("rule", s.RuleDialog),
			title: title,
			fields: []field{
				{label: "Name", value: d.Name, input: func(v string) effect.Msg { return workflows.RuleNameInput{Value: v} }},
				{label: "Goal", value: d.Goal, input: func(v string) effect.Msg { return workflows.RuleGoalInput{Value: v} }},
				{label: "Resource (task|card)", value: string(d.ResourceType), input: func(v string) effect.Msg {
					switch rt := model.ResourceType(strings.TrimSpace(v)); rt {
					case model.ResourceTask, model.ResourceCard:
						return workflows.RuleResourceInput{Value: rt}
					}
					return nil
				}},
				{label: "Task type id", value: taskType, input: func(v string) effect.Msg {
					if strings.TrimSpace(v) == "" {
						return workflows.RuleTaskTypeInput{}
					}
					if id, ok := parseID(v); ok {
						return workflows.RuleTaskTypeInput{Value: &id}
					}
					return nil
				}},
				{label: "To state", value: d.ToState, input: func(v string) effect.Msg { return workflows.RuleStateInput{Value: v} }},
				{label: "Active (yes|no)", value: boolText(d.Active), input: func(v string) effect.Msg {
					if b, ok := parseBool(v); ok {
						return workflows.RuleActiveInput{Value: b}
					}
					return nil
				}},
			},
			submit: workflows.SubmitRule{},
			close:  workflows.CloseRule{},
			sub:    s.RuleSubmit,
		}
	}
	if w, ok := s.Dialog.Deleting(); ok {
		return &form{
			id:     dialogID("workflow", s.Dialog),
			title:  "Delete workflow",
			body:   fmt.Sprintf("Delete workflow %q and its rules?", w.Name),
			submit: workflows.Submit{},
			close:  workflows.Close{},
			sub:    s.Submit,
		}
	}
	if !s.Dialog.IsOpen() {
		return nil
	}
	title := "New workflow"
	if s.Dialog.Kind() == dialog.Edit {
		title = "Edit workflow"
	}
	return &form{
		id:    dialogID("workflow", s.Dialog),
		title: title,
		fields: []field{
			{label: "Name", value: s.Draft.Name, input: func(v string) effect.Msg { return workflows.NameInput{Value: v} }},
			{label: "Description", value: s.Draft.Description, input: func(v string) effect.Msg { return workflows.DescInput{Value: v} }},
			{label: "Active (yes|no)", value: boolText(s.Draft.Active), input: func(v string) effect.Msg {
				if b, ok := parseBool(v); ok {
					return workflows.ActiveInput{Value: b}
				}
				return nil
			}},
		},
		submit: workflows.Submit{},
		close:  workflows.Close{},
		sub:    s.Submit,
	}
}

func templatesForm(s templates.State) *form {
	if t, ok := s.Dialog.Deleting(); ok {
		return &form{
			id:     dialogID("template", s.Dialog),
			title:  "Delete template",
			body:   fmt.Sprintf("Delete template %q? Rules using it lose the attachment.", t.Name),
			submit: templates.Submit{},
			close:  templates.Close{},
			sub:    s.Submit,
		}
	}
	if !s.Dialog.IsOpen() {
		return nil
	}
	title := "New template"
	if s.Dialog.Kind() == dialog.Edit {
		title = "Edit template"
	}
	return &form{
		id:    dialogID("template", s.Dialog),
		title: title,
		fields: []field{
			{label: "Name", value: s.Draft.Name, input: func(v string) effect.Msg { return templates.NameInput{Value: v} }},
			{label: "Description", value: s.Draft.Description, input: func(v string) effect.Msg { return templates.DescInput{Value: v} }},
			{label: "Type id", value: intText(s.Draft.TypeID), input: func(v string) effect.Msg {
				if id, ok := parseID(v); ok {
					return templates.TypeInput{TypeID: id}
				}
				return nil
			}},
			{label: "Priority (1-5)", value: intText(int64(s.Draft.Priority)), input: func(v string) effect.Msg {
				if n, ok := parseID(v); ok {
					return templates.PriorityInput{Value: int(n)}
				}
				return nil
			}},
		},
		submit: templates.Submit{},
		close:  templates.Close{},
		sub:    s.Submit,
	}
}

// userProjectsForm is the add-to-project line of the user projects overlay.
func userProjectsForm(s userprojects.State) *form {
	return &form{
		id:    fmt.Sprintf("userprojects:%d", s.User.ID),
		title: "Projects of " + s.User.Email,
		fields: []field{
			{label: "Add to project id", value: intText(s.AddProjectID), input: func(v string) effect.Msg {
				if id, ok := parseID(v); ok {
					return userprojects.ProjectInput{ProjectID: id}
				}
				return nil
			}},
			{label: "Role (manager|member)", value: string(s.AddRole), input: func(v string) effect.Msg {
				if r, ok := projectRole(v); ok {
					return userprojects.RoleInput{Role: r}
				}
				return nil
			}},
		},
		submit: userprojects.Add{},
		close:  userprojects.Close{},
		sub:    s.Add,
	}
}
