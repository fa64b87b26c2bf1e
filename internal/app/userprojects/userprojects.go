// Package userprojects shows and edits the project memberships of one org user.
package userprojects

import (
	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/reconcile"
	"scrumbringer-admin/internal/remote"
)

type State struct {
	// Open is false while no user is being inspected.
	Open     bool
	User     model.OrgUser
	Projects remote.Value[[]model.UserProject]

	AddProjectID int64
	AddRole      model.ProjectRole
	Add          feature.Submission

	// Row operations (remove, change role) share one guard.
	Row      feature.Submission
	RowBusy  int64
	RowError *feature.RowError
}

type Msg interface{ userProjectsMsg() }

type (
	// OpenFor starts inspecting UserID. Users is the org users cache used to
	// resolve the record; unknown ids get a placeholder.
	OpenFor struct {
		UserID int64
		Users  []model.OrgUser
	}
	Close  struct{}
	Loaded struct {
		UserID int64
		Result api.Result[[]model.UserProject]
	}
	ProjectInput struct{ ProjectID int64 }
	RoleInput    struct{ Role model.ProjectRole }
	Add          struct{}
	Added        struct {
		UserID int64
		Result api.Result[model.UserProject]
	}
	Remove  struct{ ProjectID int64 }
	Removed struct {
		UserID    int64
		ProjectID int64
		Err       *model.ApiError
	}
	ChangeRole struct {
		ProjectID int64
		Role      model.ProjectRole
	}
	RoleChanged struct {
		UserID    int64
		ProjectID int64
		Result    api.Result[model.UserProject]
	}
)

func (OpenFor) userProjectsMsg()      {}
func (Close) userProjectsMsg()        {}
func (Loaded) userProjectsMsg()       {}
func (ProjectInput) userProjectsMsg() {}
func (RoleInput) userProjectsMsg()    {}
func (Add) userProjectsMsg()          {}
func (Added) userProjectsMsg()        {}
func (Remove) userProjectsMsg()       {}
func (Removed) userProjectsMsg()      {}
func (ChangeRole) userProjectsMsg()   {}
func (RoleChanged) userProjectsMsg()  {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case OpenFor:
		u, _ := model.FindOrgUser(msg.Users, msg.UserID)
		s = State{
			Open:     true,
			User:     u,
			Projects: remote.NewLoading[[]model.UserProject](),
			AddRole:  model.ProjectRoleMember,
		}
		uid := msg.UserID
		return s, feature.Fetch(api.ListUserProjects{UserID: uid}, func(r api.Result[[]model.UserProject]) effect.Msg {
			return Loaded{UserID: uid, Result: r}
		})

	case Close:
		return State{}, effect.None{}

	case Loaded:
		if !s.current(msg.UserID) {
			if feature.IsUnauthorized(msg.Result.Err) {
				return s, effect.ResetSession{}
			}
			return s, effect.None{}
		}
		var eff effect.Effect
		s.Projects, eff = feature.Fetched(msg.Result)
		return s, eff

	case ProjectInput:
		s.AddProjectID = msg.ProjectID
		s.Add.Error = ""
		return s, effect.None{}

	case RoleInput:
		s.AddRole = msg.Role
		return s, effect.None{}

	case Add:
		if s.Add.InFlight || !s.Open {
			return s, effect.None{}
		}
		if s.AddProjectID == 0 {
			s.Add = s.Add.Reject(env.T(i18n.ErrSelectProject))
			return s, effect.None{}
		}
		role := s.AddRole
		if role == "" {
			role = model.ProjectRoleMember
		}
		s.Add, _ = s.Add.Begin()
		uid := s.User.ID
		return s, effect.Call[model.UserProject]{
			Request: api.AddUserToProject{UserID: uid, ProjectID: s.AddProjectID, Role: role},
			Wrap: func(r api.Result[model.UserProject]) effect.Msg {
				return Added{UserID: uid, Result: r}
			},
		}

	case Added:
		s.Add = s.Add.Finish()
		if msg.Result.OK() {
			if s.current(msg.UserID) {
				s.Projects = reconcile.Created(s.Projects, msg.Result.Value)
				s.AddProjectID = 0
				s.AddRole = model.ProjectRoleMember
			}
			return s, feature.SuccessToast(env.T(i18n.ToastUserAddedProject))
		}
		if feature.Classify(msg.Result.Err) == feature.Conflict {
			s.Add.Error = env.T(i18n.ErrAlreadyMember)
			return s, effect.None{}
		}
		var eff effect.Effect
		s.Add.Error, eff = feature.Fail(env, msg.Result.Err)
		return s, eff

	case Remove:
		if s.Row.InFlight || !s.Open {
			return s, effect.None{}
		}
		s.Row, _ = s.Row.Begin()
		s.RowBusy = msg.ProjectID
		s.RowError = nil
		uid, pid := s.User.ID, msg.ProjectID
		return s, effect.Call[api.Unit]{
			Request: api.RemoveUserFromProject{UserID: uid, ProjectID: pid},
			Wrap: func(r api.Result[api.Unit]) effect.Msg {
				return Removed{UserID: uid, ProjectID: pid, Err: r.Err}
			},
		}

	case Removed:
		s.Row = s.Row.Finish()
		s.RowBusy = 0
		if msg.Err == nil {
			if s.current(msg.UserID) {
				s.Projects = reconcile.Deleted(s.Projects, msg.ProjectID)
			}
			return s, feature.SuccessToast(env.T(i18n.ToastUserRemovedProj))
		}
		return rowFailure(env, s, msg.ProjectID, msg.Err)

	case ChangeRole:
		if s.Row.InFlight || !s.Open {
			return s, effect.None{}
		}
		if cur, ok := s.project(msg.ProjectID); !ok || cur.Role == msg.Role {
			return s, effect.None{}
		}
		s.Row, _ = s.Row.Begin()
		s.RowBusy = msg.ProjectID
		s.RowError = nil
		uid, pid := s.User.ID, msg.ProjectID
		return s, effect.Call[model.UserProject]{
			Request: api.UpdateUserProjectRole{UserID: uid, ProjectID: pid, Role: msg.Role},
			Wrap: func(r api.Result[model.UserProject]) effect.Msg {
				return RoleChanged{UserID: uid, ProjectID: pid, Result: r}
			},
		}

	case RoleChanged:
		s.Row = s.Row.Finish()
		s.RowBusy = 0
		if msg.Result.OK() {
			if s.current(msg.UserID) {
				s.Projects = reconcile.Updated(s.Projects, msg.Result.Value)
			}
			return s, feature.SuccessToast(env.T(i18n.ToastRoleUpdated))
		}
		return rowFailure(env, s, msg.ProjectID, msg.Result.Err)
	}
	return s, effect.None{}
}

func rowFailure(env feature.Env, s State, projectID int64, err *model.ApiError) (State, effect.Effect) {
	switch feature.Classify(err) {
	case feature.Unauthorized:
		return s, effect.ResetSession{}
	case feature.Conflict:
		s.RowError = &feature.RowError{ID: projectID, Message: env.T(i18n.ErrRoleConflict)}
		return s, effect.None{}
	case feature.Unprocessable:
		return s, feature.ErrorToast(env.T(i18n.ErrLastManager))
	default:
		inline, eff := feature.Fail(env, err)
		s.RowError = &feature.RowError{ID: projectID, Message: inline}
		return s, eff
	}
}

func (s State) current(userID int64) bool {
	return s.Open && s.User.ID == userID
}

func (s State) project(id int64) (model.UserProject, bool) {
	for _, p := range s.Projects.OrElse(nil) {
		if p.ProjectID == id {
			return p, true
		}
	}
	return model.UserProject{}, false
}

// Available filters all down to the projects the user is not a member of yet.
func (s State) Available(all []model.Project) []model.Project {
	out := make([]model.Project, 0, len(all))
	for _, p := range all {
		if _, member := s.project(p.ID); !member {
			out = append(out, p)
		}
	}
	return out
}
