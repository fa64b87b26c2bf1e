// Package projects lists the projects visible to the admin and creates new ones.
package projects

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

type State struct {
	Projects remote.Value[[]model.Project]
	Dialog   dialog.Mode[model.Project]
	Name     string
	Submit   feature.Submission
}

type Msg interface{ projectsMsg() }

type Load struct{}

type Loaded struct{ Result api.Result[[]model.Project] }

type OpenCreate struct{}

type Close struct{}

type NameInput struct{ Value string }

type Submit struct{}

type Created struct{ Result api.Result[model.Project] }

func (Load) projectsMsg()       {}
func (Loaded) projectsMsg()     {}
func (OpenCreate) projectsMsg() {}
func (Close) projectsMsg()      {}
func (NameInput) projectsMsg()  {}
func (Submit) projectsMsg()     {}
func (Created) projectsMsg()    {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		s.Projects = remote.NewLoading[[]model.Project]()
		return s, feature.Fetch(api.ListProjects{}, func(r api.Result[[]model.Project]) effect.Msg {
			return Loaded{Result: r}
		})

	case Loaded:
		var eff effect.Effect
		s.Projects, eff = feature.Fetched(msg.Result)
		return s, eff

	case OpenCreate:
		s.Dialog = dialog.OpenCreate[model.Project]()
		s.Name = ""
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case Close:
		s.Dialog = dialog.Close[model.Project]()
		s.Name = ""
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case NameInput:
		s.Name = msg.Value
		return s, effect.None{}

	case Submit:
		if s.Submit.InFlight || !s.Dialog.IsCreate() {
			return s, effect.None{}
		}
		name := strings.TrimSpace(s.Name)
		if name == "" {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrNameRequired))
			return s, effect.None{}
		}
		s.Submit, _ = s.Submit.Begin()
		return s, effect.Call[model.Project]{
			Request: api.CreateProject{Name: name},
			Wrap:    func(r api.Result[model.Project]) effect.Msg { return Created{Result: r} },
		}

	case Created:
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Projects = reconcile.Created(s.Projects, msg.Result.Value)
			s.Dialog = dialog.Close[model.Project]()
			s.Name = ""
			s.Submit = feature.Submission{}
			return s, feature.SuccessToast(env.T(i18n.ToastProjectCreated))
		}
		var eff effect.Effect
		s.Submit.Error, eff = feature.Fail(env, msg.Result.Err)
		return s, eff
	}
	return s, effect.None{}
}

// Find returns the project with id from a loaded list.
func (s State) Find(id int64) (model.Project, bool) {
	for _, p := range s.Projects.OrElse(nil) {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}
