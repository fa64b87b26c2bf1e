// Package cards manages the cards of the selected project.
package cards

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

type Draft struct {
	Title       string
	Description string
	Color       string
}

func draftFrom(c model.Card) Draft {
	return Draft{Title: c.Title, Description: c.Description, Color: c.Color}
}

func (d Draft) input() api.CardInput {
	return api.CardInput{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Color:       strings.TrimSpace(d.Color),
	}
}

type State struct {
	// ProjectID is the project Cards was fetched for.
	ProjectID int64
	Cards     remote.Value[[]model.Card]
	Dialog    dialog.Mode[model.Card]
	Draft     Draft
	Submit    feature.Submission
}

type Msg interface{ cardsMsg() }

type (
	Load        struct{}
	OpenCreate  struct{}
	OpenEdit    struct{ Card model.Card }
	OpenDelete  struct{ Card model.Card }
	Close       struct{}
	TitleInput  struct{ Value string }
	DescInput   struct{ Value string }
	ColorInput  struct{ Value string }
	Submit      struct{}
	Loaded      struct {
		ProjectID int64
		Result    api.Result[[]model.Card]
	}
	// Mutation results carry the project they were submitted in.
	Created struct {
		ProjectID int64
		Result    api.Result[model.Card]
	}
	Updated struct {
		ProjectID int64
		Result    api.Result[model.Card]
	}
	Deleted struct {
		ProjectID int64
		ID        int64
		Err       *model.ApiError
	}
)

func (Load) cardsMsg()       {}
func (OpenCreate) cardsMsg() {}
func (OpenEdit) cardsMsg()   {}
func (OpenDelete) cardsMsg() {}
func (Close) cardsMsg()      {}
func (TitleInput) cardsMsg() {}
func (DescInput) cardsMsg()  {}
func (ColorInput) cardsMsg() {}
func (Submit) cardsMsg()     {}
func (Loaded) cardsMsg()     {}
func (Created) cardsMsg()    {}
func (Updated) cardsMsg()    {}
func (Deleted) cardsMsg()    {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		pid, ok := env.Project()
		if !ok {
			return s, effect.None{}
		}
		s.ProjectID = pid
		s.Cards = remote.NewLoading[[]model.Card]()
		return s, feature.Fetch(api.ListCards{ProjectID: pid}, func(r api.Result[[]model.Card]) effect.Msg {
			return Loaded{ProjectID: pid, Result: r}
		})

	case Loaded:
		if pid, ok := env.Project(); !ok || pid != msg.ProjectID {
			// Response for a project that is no longer selected.
			if feature.IsUnauthorized(msg.Result.Err) {
				return s, effect.ResetSession{}
			}
			return s, effect.None{}
		}
		var eff effect.Effect
		s.Cards, eff = feature.Fetched(msg.Result)
		return s, eff

	case OpenCreate:
		s.Dialog = dialog.OpenCreate[model.Card]()
		s.Draft = Draft{}
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case OpenEdit:
		s.Dialog = dialog.OpenEdit(msg.Card)
		s.Draft = draftFrom(msg.Card)
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case OpenDelete:
		s.Dialog = dialog.OpenDelete(msg.Card)
		s.Draft = Draft{}
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case Close:
		return closeDialog(s), effect.None{}

	case TitleInput:
		s.Draft.Title = msg.Value
		return s, effect.None{}
	case DescInput:
		s.Draft.Description = msg.Value
		return s, effect.None{}
	case ColorInput:
		s.Draft.Color = msg.Value
		return s, effect.None{}

	case Submit:
		return submit(env, s)

	case Created:
		if !env.IsCurrent(msg.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Cards = reconcile.Created(s.Cards, msg.Result.Value)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastCardCreated))
		}
		return fail(env, s, msg.Result.Err)

	case Updated:
		if !env.IsCurrent(msg.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Cards = reconcile.Updated(s.Cards, msg.Result.Value)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastCardUpdated))
		}
		return fail(env, s, msg.Result.Err)

	case Deleted:
		if !env.IsCurrent(msg.ProjectID) {
			return s, feature.Stale(msg.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Err == nil {
			s.Cards = reconcile.Deleted(s.Cards, msg.ID)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastCardDeleted))
		}
		if feature.Classify(msg.Err) == feature.Conflict {
			// Cards with tasks cannot be deleted; keep the confirmation open.
			s.Submit.Error = env.T(i18n.ErrCardHasTasks)
			return s, effect.None{}
		}
		return fail(env, s, msg.Err)
	}
	return s, effect.None{}
}

func submit(env feature.Env, s State) (State, effect.Effect) {
	if s.Submit.InFlight {
		return s, effect.None{}
	}
	pid, ok := env.Project()
	if !ok {
		s.Submit = s.Submit.Reject(env.T(i18n.ErrNoProject))
		return s, effect.None{}
	}
	switch s.Dialog.Kind() {
	case dialog.Create:
		if strings.TrimSpace(s.Draft.Title) == "" {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrTitleRequired))
			return s, effect.None{}
		}
		s.Submit, _ = s.Submit.Begin()
		return s, effect.Call[model.Card]{
			Request: api.CreateCard{ProjectID: pid, Input: s.Draft.input()},
			Wrap:    func(r api.Result[model.Card]) effect.Msg { return Created{ProjectID: pid, Result: r} },
		}

	case dialog.Edit:
		card, _ := s.Dialog.Editing()
		if strings.TrimSpace(s.Draft.Title) == "" {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrTitleRequired))
			return s, effect.None{}
		}
		s.Submit, _ = s.Submit.Begin()
		return s, effect.Call[model.Card]{
			Request: api.UpdateCard{ID: card.ID, Input: s.Draft.input()},
			Wrap:    func(r api.Result[model.Card]) effect.Msg { return Updated{ProjectID: pid, Result: r} },
		}

	case dialog.Delete:
		card, _ := s.Dialog.Deleting()
		s.Submit, _ = s.Submit.Begin()
		id := card.ID
		return s, effect.Call[api.Unit]{
			Request: api.DeleteCard{ID: id},
			Wrap:    func(r api.Result[api.Unit]) effect.Msg { return Deleted{ProjectID: pid, ID: id, Err: r.Err} },
		}
	}
	return s, effect.None{}
}

func fail(env feature.Env, s State, err *model.ApiError) (State, effect.Effect) {
	inline, eff := feature.Fail(env, err)
	s.Submit.Error = inline
	return s, eff
}

func closeDialog(s State) State {
	s.Dialog = dialog.Close[model.Card]()
	s.Draft = Draft{}
	s.Submit = feature.Submission{}
	return s
}
