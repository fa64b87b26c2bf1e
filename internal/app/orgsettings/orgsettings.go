// Package orgsettings manages organization users and their org-level roles.
//
// Role changes are drafted per row and saved one at a time.
package orgsettings

import (
	"maps"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/reconcile"
	"scrumbringer-admin/internal/remote"
)

type State struct {
	Users remote.Value[[]model.OrgUser]
	// Drafts holds unsaved role choices by user id. Never mutated in place.
	Drafts   map[int64]model.OrgRole
	Save     feature.Submission
	Saving   int64
	RowError *feature.RowError
}

type Msg interface{ orgSettingsMsg() }

type (
	Load      struct{}
	Loaded    struct{ Result api.Result[[]model.OrgUser] }
	RoleDraft struct {
		UserID int64
		Role   model.OrgRole
	}
	DiscardDraft struct{ UserID int64 }
	Save         struct{ UserID int64 }
	Saved        struct {
		UserID int64
		Result api.Result[model.OrgUser]
	}
)

func (Load) orgSettingsMsg()         {}
func (Loaded) orgSettingsMsg()       {}
func (RoleDraft) orgSettingsMsg()    {}
func (DiscardDraft) orgSettingsMsg() {}
func (Save) orgSettingsMsg()         {}
func (Saved) orgSettingsMsg()        {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		s.Users = remote.NewLoading[[]model.OrgUser]()
		return s, feature.Fetch(api.ListOrgUsers{}, func(r api.Result[[]model.OrgUser]) effect.Msg {
			return Loaded{Result: r}
		})

	case Loaded:
		var eff effect.Effect
		s.Users, eff = feature.Fetched(msg.Result)
		if s.Users.IsLoaded() {
			s.Drafts = nil
		}
		return s, eff

	case RoleDraft:
		u, ok := s.user(msg.UserID)
		if !ok {
			return s, effect.None{}
		}
		if u.OrgRole == msg.Role {
			s.Drafts = without(s.Drafts, msg.UserID)
		} else {
			s.Drafts = with(s.Drafts, msg.UserID, msg.Role)
		}
		if s.RowError.For(msg.UserID) != "" {
			s.RowError = nil
		}
		return s, effect.None{}

	case DiscardDraft:
		s.Drafts = without(s.Drafts, msg.UserID)
		return s, effect.None{}

	case Save:
		if s.Save.InFlight {
			return s, effect.None{}
		}
		role, ok := s.Drafts[msg.UserID]
		if !ok {
			return s, effect.None{}
		}
		s.Save, _ = s.Save.Begin()
		s.Saving = msg.UserID
		s.RowError = nil
		uid := msg.UserID
		return s, effect.Call[model.OrgUser]{
			Request: api.UpdateOrgRole{UserID: uid, Role: role},
			Wrap: func(r api.Result[model.OrgUser]) effect.Msg {
				return Saved{UserID: uid, Result: r}
			},
		}

	case Saved:
		s.Save = s.Save.Finish()
		s.Saving = 0
		if msg.Result.OK() {
			s.Users = reconcile.Updated(s.Users, msg.Result.Value)
			s.Drafts = without(s.Drafts, msg.UserID)
			return s, feature.SuccessToast(env.T(i18n.ToastRoleUpdated))
		}
		switch feature.Classify(msg.Result.Err) {
		case feature.Unauthorized:
			return s, effect.ResetSession{}
		case feature.Conflict:
			s.RowError = &feature.RowError{ID: msg.UserID, Message: msg.Result.Err.Message}
			return s, effect.None{}
		case feature.Unprocessable:
			return s, feature.ErrorToast(env.T(i18n.ErrLastAdmin))
		default:
			inline, eff := feature.Fail(env, msg.Result.Err)
			s.RowError = &feature.RowError{ID: msg.UserID, Message: inline}
			return s, eff
		}
	}
	return s, effect.None{}
}

func (s State) user(id int64) (model.OrgUser, bool) {
	for _, u := range s.Users.OrElse(nil) {
		if u.ID == id {
			return u, true
		}
	}
	return model.OrgUser{}, false
}

// RoleFor returns the role to display for a row: the draft if any.
func (s State) RoleFor(u model.OrgUser) model.OrgRole {
	if r, ok := s.Drafts[u.ID]; ok {
		return r
	}
	return u.OrgRole
}

// Dirty reports whether the row has an unsaved role draft.
func (s State) Dirty(id int64) bool {
	_, ok := s.Drafts[id]
	return ok
}

func with(m map[int64]model.OrgRole, id int64, role model.OrgRole) map[int64]model.OrgRole {
	out := make(map[int64]model.OrgRole, len(m)+1)
	maps.Copy(out, m)
	out[id] = role
	return out
}

func without(m map[int64]model.OrgRole, id int64) map[int64]model.OrgRole {
	if _, ok := m[id]; !ok {
		return m
	}
	out := make(map[int64]model.OrgRole, len(m))
	for k, v := range m {
		if k != id {
			out[k] = v
		}
	}
	return out
}
