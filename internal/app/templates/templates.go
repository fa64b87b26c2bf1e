// Package templates manages task templates: the blueprints rules instantiate.
package templates

import (
	"strings"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/dialog"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/reconcile"
	"scrumbringer-admin/internal/remote"
)

// DefaultPriority matches the server default for new templates.
const DefaultPriority = 3

type Draft struct {
	Name        string
	Description string
	TypeID      int64
	Priority    int
}

func draftFrom(t model.TaskTemplate) Draft {
	return Draft{Name: t.Name, Description: t.Description, TypeID: t.TypeID, Priority: t.Priority}
}

type State struct {
	Scope     *int64
	Templates remote.Value[[]model.TaskTemplate]
	Dialog    dialog.Mode[model.TaskTemplate]
	Draft     Draft
	Submit    feature.Submission
}

type Msg interface{ templatesMsg() }

type (
	Load   struct{}
	Loaded struct {
		Scope  *int64
		Result api.Result[[]model.TaskTemplate]
	}
	OpenCreate    struct{}
	OpenEdit      struct{ Template model.TaskTemplate }
	OpenDelete    struct{ Template model.TaskTemplate }
	Close         struct{}
	NameInput     struct{ Value string }
	DescInput     struct{ Value string }
	TypeInput     struct{ TypeID int64 }
	PriorityInput struct{ Value int }
	Submit        struct{}
	// Mutation results carry the scope they were submitted in.
	Created struct {
		Scope  *int64
		Result api.Result[model.TaskTemplate]
	}
	Updated struct {
		Scope  *int64
		Result api.Result[model.TaskTemplate]
	}
	Deleted struct {
		Scope *int64
		ID    int64
		Err   *model.ApiError
	}
)

// EventKind is what a self-contained CRUD component reports back.
type EventKind int

const (
	EventCreated EventKind = iota
	EventUpdated
	EventDeleted
	EventCloseRequested
)

// ComponentEvent reconciles the list from a CRUD component without an API call.
type ComponentEvent struct {
	Kind     EventKind
	Template model.TaskTemplate
}

func (Load) templatesMsg()           {}
func (Loaded) templatesMsg()         {}
func (OpenCreate) templatesMsg()     {}
func (OpenEdit) templatesMsg()       {}
func (OpenDelete) templatesMsg()     {}
func (Close) templatesMsg()          {}
func (NameInput) templatesMsg()      {}
func (DescInput) templatesMsg()      {}
func (TypeInput) templatesMsg()      {}
func (PriorityInput) templatesMsg()  {}
func (Submit) templatesMsg()         {}
func (Created) templatesMsg()        {}
func (Updated) templatesMsg()        {}
func (Deleted) templatesMsg()        {}
func (ComponentEvent) templatesMsg() {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		scope := env.ProjectID
		s.Scope = scope
		s.Templates = remote.NewLoading[[]model.TaskTemplate]()
		return s, feature.Fetch(api.ListTemplates{ProjectID: scope}, func(r api.Result[[]model.TaskTemplate]) effect.Msg {
			return Loaded{Scope: scope, Result: r}
		})

	case Loaded:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		var eff effect.Effect
		s.Templates, eff = feature.Fetched(msg.Result)
		return s, eff

	case OpenCreate:
		s.Dialog = dialog.OpenCreate[model.TaskTemplate]()
		s.Draft = Draft{Priority: DefaultPriority}
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case OpenEdit:
		s.Dialog = dialog.OpenEdit(msg.Template)
		s.Draft = draftFrom(msg.Template)
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case OpenDelete:
		s.Dialog = dialog.OpenDelete(msg.Template)
		s.Draft = Draft{}
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case Close:
		return closeDialog(s), effect.None{}

	case NameInput:
		s.Draft.Name = msg.Value
		return s, effect.None{}

	case DescInput:
		s.Draft.Description = msg.Value
		return s, effect.None{}

	case TypeInput:
		s.Draft.TypeID = msg.TypeID
		return s, effect.None{}

	case PriorityInput:
		if msg.Value >= 1 && msg.Value <= 5 {
			s.Draft.Priority = msg.Value
		}
		return s, effect.None{}

	case Submit:
		return submit(env, s)

	case Created:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Templates = reconcile.Created(s.Templates, msg.Result.Value)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastTemplateCreated))
		}
		return fail(env, s, msg.Result.Err)

	case Updated:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Templates = reconcile.Updated(s.Templates, msg.Result.Value)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastTemplateUpdated))
		}
		return fail(env, s, msg.Result.Err)

	case Deleted:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Err == nil {
			s.Templates = reconcile.Deleted(s.Templates, msg.ID)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastTemplateDeleted))
		}
		return fail(env, s, msg.Err)

	case ComponentEvent:
		switch msg.Kind {
		case EventCreated:
			s.Templates = reconcile.Created(s.Templates, msg.Template)
		case EventUpdated:
			s.Templates = reconcile.Updated(s.Templates, msg.Template)
		case EventDeleted:
			s.Templates = reconcile.Deleted(s.Templates, msg.Template.ID)
		}
		return closeDialog(s), effect.None{}
	}
	return s, effect.None{}
}

func submit(env feature.Env, s State) (State, effect.Effect) {
	if s.Submit.InFlight {
		return s, effect.None{}
	}
	var scope *int64
	if pid, ok := env.Project(); ok {
		scope = &pid
	}
	switch s.Dialog.Kind() {
	case dialog.Create, dialog.Edit:
		name := strings.TrimSpace(s.Draft.Name)
		if name == "" {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrNameRequired))
			return s, effect.None{}
		}
		if s.Draft.TypeID == 0 {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrTypeRequired))
			return s, effect.None{}
		}
		prio := s.Draft.Priority
		if prio == 0 {
			prio = DefaultPriority
		}
		in := api.TemplateInput{
			ProjectID:   env.ProjectID,
			Name:        name,
			Description: strings.TrimSpace(s.Draft.Description),
			TypeID:      s.Draft.TypeID,
			Priority:    prio,
		}
		s.Submit, _ = s.Submit.Begin()
		if t, ok := s.Dialog.Editing(); ok {
			in.ProjectID = t.ProjectID
			return s, effect.Call[model.TaskTemplate]{
				Request: api.UpdateTemplate{ID: t.ID, Input: in},
				Wrap:    func(r api.Result[model.TaskTemplate]) effect.Msg { return Updated{Scope: scope, Result: r} },
			}
		}
		return s, effect.Call[model.TaskTemplate]{
			Request: api.CreateTemplate{Input: in},
			Wrap:    func(r api.Result[model.TaskTemplate]) effect.Msg { return Created{Scope: scope, Result: r} },
		}

	case dialog.Delete:
		t, _ := s.Dialog.Deleting()
		id := t.ID
		s.Submit, _ = s.Submit.Begin()
		return s, effect.Call[api.Unit]{
			Request: api.DeleteTemplate{ID: id},
			Wrap:    func(r api.Result[api.Unit]) effect.Msg { return Deleted{Scope: scope, ID: id, Err: r.Err} },
		}
	}
	return s, effect.None{}
}

func fail(env feature.Env, s State, err *model.ApiError) (State, effect.Effect) {
	var eff effect.Effect
	s.Submit.Error, eff = feature.Fail(env, err)
	return s, eff
}

func closeDialog(s State) State {
	s.Dialog = dialog.Close[model.TaskTemplate]()
	s.Draft = Draft{}
	s.Submit = feature.Submission{}
	return s
}


// Find returns the template with id from a loaded list.
func (s State) Find(id int64) (model.TaskTemplate, bool) {
	for _, t := range s.Templates.OrElse(nil) {
		if t.ID == id {
			return t, true
		}
	}
	return model.TaskTemplate{}, false
}
