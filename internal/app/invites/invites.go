// Package invites manages organization invite links.
package invites

import (
	"strings"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/reconcile"
	"scrumbringer-admin/internal/remote"
)

type State struct {
	Links  remote.Value[[]model.InviteLink]
	Email  string
	Create feature.Submission

	Regen        feature.Submission
	Regenerating string
}

type Msg interface{ invitesMsg() }

type (
	Load        struct{}
	Loaded      struct{ Result api.Result[[]model.InviteLink] }
	EmailInput  struct{ Value string }
	Create      struct{}
	Created     struct{ Result api.Result[model.InviteLink] }
	Regenerate  struct{ Email string }
	Regenerated struct {
		Email  string
		Result api.Result[model.InviteLink]
	}
	Copy   struct{ URL string }
	Copied struct{ Err error }
)

func (Load) invitesMsg()        {}
func (Loaded) invitesMsg()      {}
func (EmailInput) invitesMsg()  {}
func (Create) invitesMsg()      {}
func (Created) invitesMsg()     {}
func (Regenerate) invitesMsg()  {}
func (Regenerated) invitesMsg() {}
func (Copy) invitesMsg()        {}
func (Copied) invitesMsg()      {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		s.Links = remote.NewLoading[[]model.InviteLink]()
		return s, feature.Fetch(api.ListInvites{}, func(r api.Result[[]model.InviteLink]) effect.Msg {
			return Loaded{Result: r}
		})

	case Loaded:
		var eff effect.Effect
		s.Links, eff = feature.Fetched(msg.Result)
		return s, eff

	case EmailInput:
		s.Email = msg.Value
		s.Create.Error = ""
		return s, effect.None{}

	case Create:
		if s.Create.InFlight {
			return s, effect.None{}
		}
		email := strings.TrimSpace(s.Email)
		if !strings.Contains(email, "@") {
			s.Create = s.Create.Reject(env.T(i18n.ErrEmailInvalid))
			return s, effect.None{}
		}
		s.Create, _ = s.Create.Begin()
		return s, effect.Call[model.InviteLink]{
			Request: api.CreateInvite{Email: email},
			Wrap:    func(r api.Result[model.InviteLink]) effect.Msg { return Created{Result: r} },
		}

	case Created:
		s.Create = s.Create.Finish()
		if msg.Result.OK() {
			s.Links = upsert(s.Links, msg.Result.Value)
			s.Email = ""
			return s, feature.SuccessToast(env.T(i18n.ToastInviteCreated))
		}
		var eff effect.Effect
		s.Create.Error, eff = feature.Fail(env, msg.Result.Err)
		return s, eff

	case Regenerate:
		if s.Regen.InFlight {
			return s, effect.None{}
		}
		s.Regen, _ = s.Regen.Begin()
		s.Regenerating = msg.Email
		email := msg.Email
		return s, effect.Call[model.InviteLink]{
			Request: api.RegenerateInvite{Email: email},
			Wrap: func(r api.Result[model.InviteLink]) effect.Msg {
				return Regenerated{Email: email, Result: r}
			},
		}

	case Regenerated:
		s.Regen = s.Regen.Finish()
		s.Regenerating = ""
		if msg.Result.OK() {
			s.Links = upsert(s.Links, msg.Result.Value)
			return s, feature.SuccessToast(env.T(i18n.ToastInviteRegen))
		}
		var eff effect.Effect
		s.Regen.Error, eff = feature.Fail(env, msg.Result.Err)
		if s.Regen.Error != "" && effect.IsNone(eff) {
			eff = feature.ErrorToast(s.Regen.Error)
		}
		return s, eff

	case Copy:
		if msg.URL == "" {
			return s, effect.None{}
		}
		return s, effect.Clipboard{
			Text: msg.URL,
			Wrap: func(err error) effect.Msg { return Copied{Err: err} },
		}

	case Copied:
		if msg.Err != nil {
			return s, feature.ErrorToast(env.T(i18n.ErrClipboard, msg.Err.Error()))
		}
		return s, feature.SuccessToast(env.T(i18n.ToastLinkCopied))
	}
	return s, effect.None{}
}

// upsert replaces the link for the same email or prepends a new one.
func upsert(list remote.Value[[]model.InviteLink], l model.InviteLink) remote.Value[[]model.InviteLink] {
	for _, it := range list.OrElse(nil) {
		if strings.EqualFold(it.Email, l.Email) {
			return reconcile.UpdatedFunc(list, l, func(a, b model.InviteLink) bool {
				return strings.EqualFold(a.Email, b.Email)
			})
		}
	}
	return reconcile.Created(list, l)
}
