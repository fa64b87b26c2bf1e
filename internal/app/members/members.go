// Package members manages the members of the selected project: listing,
// adding through a debounced org-user search, removing, and role changes.
package members

import (
	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/dialog"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/reconcile"
	"scrumbringer-admin/internal/remote"
	"scrumbringer-admin/internal/search"
)

type State struct {
	ProjectID int64
	Members   remote.Value[[]model.ProjectMember]
	OrgUsers  remote.Value[[]model.OrgUser]

	// Dialog is Create for "add member" and Delete for "remove member".
	Dialog   dialog.Mode[model.ProjectMember]
	Search   search.State[model.OrgUser]
	Selected *model.OrgUser
	Role     model.ProjectRole
	Submit   feature.Submission

	// Inline role changes on the table.
	RoleChange   feature.Submission
	RoleChanging int64
	RowError     *feature.RowError
}

type Msg interface{ membersMsg() }

type Load struct{}

type MembersLoaded struct {
	ProjectID int64
	Result    api.Result[[]model.ProjectMember]
}

type OrgUsersLoaded struct{ Result api.Result[[]model.OrgUser] }

type OpenAdd struct{}

type OpenRemove struct{ Member model.ProjectMember }

type Close struct{}

type SearchInput struct{ Query string }

// SearchFire is the debounce timer for the add-member search.
type SearchFire struct{ Seq int }

type SearchResult struct {
	Seq    int
	Result api.Result[[]model.OrgUser]
}

type SelectUser struct{ User model.OrgUser }

type RoleInput struct{ Role model.ProjectRole }

type Submit struct{}

// Added, Removed and RoleChanged carry the project they were submitted in.
type Added struct {
	ProjectID int64
	Result    api.Result[model.ProjectMember]
}

type Removed struct {
	ProjectID int64
	UserID    int64
	Err       *model.ApiError
}

type ChangeRole struct {
	UserID int64
	Role   model.ProjectRole
}

type RoleChanged struct {
	ProjectID int64
	UserID    int64
	Result    api.Result[model.ProjectMember]
}

func (Load) membersMsg()           {}
func (MembersLoaded) membersMsg()  {}
func (OrgUsersLoaded) membersMsg() {}
func (OpenAdd) membersMsg()        {}
func (OpenRemove) membersMsg()     {}
func (Close) membersMsg()          {}
func (SearchInput) membersMsg()    {}
func (SearchFire) membersMsg()     {}
func (SearchResult) membersMsg()   {}
func (SelectUser) membersMsg()     {}
func (RoleInput) membersMsg()      {}
func (Submit) membersMsg()         {}
func (Added) membersMsg()          {}
func (Removed) membersMsg()        {}
func (ChangeRole) membersMsg()     {}
func (RoleChanged) membersMsg()    {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		pid, ok := env.Project()
		if !ok {
			return s, effect.None{}
		}
		s.ProjectID = pid
		s.Members = remote.NewLoading[[]model.ProjectMember]()
		s.OrgUsers = remote.NewLoading[[]model.OrgUser]()
		return s, effect.Batch(
			feature.Fetch(api.ListMembers{ProjectID: pid}, func(r api.Result[[]model.ProjectMember]) effect.Msg {
				return MembersLoaded{ProjectID: pid, Result: r}
			}),
			feature.Fetch(api.ListOrgUsers{}, func(r api.Result[[]model.OrgUser]) effect.Msg {
				return OrgUsersLoaded{Result: r}
			}),
		)

	case MembersLoaded:
		if pid, ok := env.Project(); !ok || pid != msg.ProjectID {
			if feature.IsUnauthorized(msg.Result.Err) {
				return s, effect.ResetSession{}
			}
			return s, effect.None{}
		}
		var eff effect.Effect
		s.Members, eff = feature.Fetched(msg.Result)
		return s, eff

	case OrgUsersLoaded:
		var eff effect.Effect
		s.OrgUsers, eff = feature.Fetched(msg.Result)
		return s, eff

	case OpenAdd:
		s.Dialog = dialog.OpenCreate[model.ProjectMember]()
		s.Search = s.Search.Reset()
		s.Selected = nil
		s.Role = model.ProjectRoleMember
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case OpenRemove:
		s.Dialog = dialog.OpenDelete(msg.Member)
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case Close:
		return closeDialog(s), effect.None{}

	case SearchInput:
		next, seq, schedule := s.Search.Input(msg.Query)
		s.Search = next
		if !schedule {
			return s, effect.None{}
		}
		return s, effect.After{Delay: env.Settings.SearchDebounce, Msg: SearchFire{Seq: seq}}

	case SearchFire:
		next, q, issue := s.Search.Fire(msg.Seq)
		if !issue {
			return s, effect.None{}
		}
		s.Search = next
		seq := msg.Seq
		return s, feature.Fetch(api.SearchOrgUsers{Query: q}, func(r api.Result[[]model.OrgUser]) effect.Msg {
			return SearchResult{Seq: seq, Result: r}
		})

	case SearchResult:
		if feature.IsUnauthorized(msg.Result.Err) {
			return s, effect.ResetSession{}
		}
		s.Search, _ = s.Search.Apply(msg.Seq, msg.Result.Value, msg.Result.Err)
		return s, effect.None{}

	case SelectUser:
		u := msg.User
		s.Selected = &u
		s.Submit.Error = ""
		return s, effect.None{}

	case RoleInput:
		s.Role = msg.Role
		return s, effect.None{}

	case Submit:
		return submit(env, s)

	case Added:
		if !env.IsCurrent(msg.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Members = reconcile.Created(s.Members, msg.Result.Value)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastMemberAdded))
		}
		if feature.Classify(msg.Result.Err) == feature.Conflict {
			s.Submit.Error = env.T(i18n.ErrAlreadyMember)
			return s, effect.None{}
		}
		var eff effect.Effect
		s.Submit.Error, eff = feature.Fail(env, msg.Result.Err)
		return s, eff

	case Removed:
		if !env.IsCurrent(msg.ProjectID) {
			return s, feature.Stale(msg.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Err == nil {
			s.Members = reconcile.Deleted(s.Members, msg.UserID)
			return closeDialog(s), feature.SuccessToast(env.T(i18n.ToastMemberRemoved))
		}
		if feature.Classify(msg.Err) == feature.Unprocessable {
			return s, feature.ErrorToast(env.T(i18n.ErrLastManager))
		}
		var eff effect.Effect
		s.Submit.Error, eff = feature.Fail(env, msg.Err)
		return s, eff

	case ChangeRole:
		if s.RoleChange.InFlight {
			return s, effect.None{}
		}
		pid, ok := env.Project()
		if !ok {
			return s, effect.None{}
		}
		cur, found := s.member(msg.UserID)
		if !found || cur.Role == msg.Role {
			return s, effect.None{}
		}
		s.RoleChange, _ = s.RoleChange.Begin()
		s.RoleChanging = msg.UserID
		s.RowError = nil
		uid := msg.UserID
		return s, effect.Call[model.ProjectMember]{
			Request: api.UpdateMemberRole{ProjectID: pid, UserID: uid, Role: msg.Role},
			Wrap: func(r api.Result[model.ProjectMember]) effect.Msg {
				return RoleChanged{ProjectID: pid, UserID: uid, Result: r}
			},
		}

	case RoleChanged:
		if !env.IsCurrent(msg.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.RoleChange = s.RoleChange.Finish()
		s.RoleChanging = 0
		if msg.Result.OK() {
			s.Members = reconcile.Updated(s.Members, msg.Result.Value)
			s.RowError = nil
			return s, feature.SuccessToast(env.T(i18n.ToastRoleUpdated))
		}
		switch feature.Classify(msg.Result.Err) {
		case feature.Unauthorized:
			return s, effect.ResetSession{}
		case feature.Conflict:
			s.RowError = &feature.RowError{ID: msg.UserID, Message: env.T(i18n.ErrRoleConflict)}
			return s, effect.None{}
		case feature.Unprocessable:
			return s, feature.ErrorToast(env.T(i18n.ErrLastManager))
		default:
			inline, eff := feature.Fail(env, msg.Result.Err)
			s.RowError = &feature.RowError{ID: msg.UserID, Message: inline}
			return s, eff
		}
	}
	return s, effect.None{}
}

func submit(env feature.Env, s State) (State, effect.Effect) {
	if s.Submit.InFlight {
		return s, effect.None{}
	}
	pid, ok := env.Project()
	switch s.Dialog.Kind() {
	case dialog.Create:
		if !ok {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrNoProject))
			return s, effect.None{}
		}
		if s.Selected == nil {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrSelectUser))
			return s, effect.None{}
		}
		role := s.Role
		if role == "" {
			role = model.ProjectRoleMember
		}
		s.Submit, _ = s.Submit.Begin()
		return s, effect.Call[model.ProjectMember]{
			Request: api.AddMember{ProjectID: pid, UserID: s.Selected.ID, Role: role},
			Wrap:    func(r api.Result[model.ProjectMember]) effect.Msg { return Added{ProjectID: pid, Result: r} },
		}

	case dialog.Delete:
		if !ok {
			return s, effect.None{}
		}
		m, _ := s.Dialog.Deleting()
		uid := m.UserID
		s.Submit, _ = s.Submit.Begin()
		return s, effect.Call[api.Unit]{
			Request: api.RemoveMember{ProjectID: pid, UserID: uid},
			Wrap:    func(r api.Result[api.Unit]) effect.Msg { return Removed{ProjectID: pid, UserID: uid, Err: r.Err} },
		}
	}
	return s, effect.None{}
}

func closeDialog(s State) State {
	s.Dialog = dialog.Close[model.ProjectMember]()
	s.Search = s.Search.Reset()
	s.Selected = nil
	s.Role = ""
	s.Submit = feature.Submission{}
	return s
}

func (s State) member(userID int64) (model.ProjectMember, bool) {
	for _, m := range s.Members.OrElse(nil) {
		if m.UserID == userID {
			return m, true
		}
	}
	return model.ProjectMember{}, false
}

// UserFor resolves the org user behind a member row.
func (s State) UserFor(userID int64) model.OrgUser {
	u, _ := model.FindOrgUser(s.OrgUsers.OrElse(nil), userID)
	return u
}
