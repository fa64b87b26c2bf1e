package userprojects

import (
	"testing"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() feature.Env {
	return feature.Env{Locale: i18n.English, Settings: feature.DefaultSettings()}
}

func opened(t *testing.T, projects ...model.UserProject) State {
	t.Helper()
	users := []model.OrgUser{{ID: 5, Email: "eve@x.io"}}
	s, eff := Update(testEnv(), State{}, OpenFor{UserID: 5, Users: users})
	require.Equal(t, "user_projects.list", effect.Calls(eff)[0].Op())
	s, _ = Update(testEnv(), s, Loaded{UserID: 5, Result: api.Result[[]model.UserProject]{Value: projects}})
	return s
}

func TestOpenFor_UsesPlaceholderForUnknownUser(t *testing.T) {
	s, _ := Update(testEnv(), State{}, OpenFor{UserID: 77})
	assert.True(t, s.Open)
	assert.Equal(t, "User #77", s.User.Email)
	assert.True(t, s.Projects.IsLoading())
}

func TestLoaded_IgnoresOtherUser(t *testing.T) {
	s, _ := Update(testEnv(), State{}, OpenFor{UserID: 5})
	s, _ = Update(testEnv(), s, Loaded{UserID: 6, Result: api.Result[[]model.UserProject]{Value: []model.UserProject{{ProjectID: 1}}}})
	assert.True(t, s.Projects.IsLoading())
}

func TestAdd_RequiresProject(t *testing.T) {
	env := testEnv()
	s := opened(t)
	s, eff := Update(env, s, Add{})
	assert.True(t, effect.IsNone(eff))
	assert.Equal(t, env.T(i18n.ErrSelectProject), s.Add.Error)

	s, _ = Update(env, s, ProjectInput{ProjectID: 3})
	s, _ = Update(env, s, RoleInput{Role: model.ProjectRoleManager})
	s, eff = Update(env, s, Add{})
	req := eff.(effect.Call[model.UserProject]).Request.(api.AddUserToProject)
	assert.Equal(t, api.AddUserToProject{UserID: 5, ProjectID: 3, Role: model.ProjectRoleManager}, req)

	_, again := Update(env, s, Add{})
	assert.True(t, effect.IsNone(again))

	s, _ = Update(env, s, Added{UserID: 5, Result: api.Result[model.UserProject]{Value: model.UserProject{ProjectID: 3, ProjectName: "Core", Role: model.ProjectRoleManager}}})
	got, _ := s.Projects.Get()
	require.Len(t, got, 1)
	assert.Zero(t, s.AddProjectID)
}

func TestRemoveAndRoleChange_ShareRowGuard(t *testing.T) {
	env := testEnv()
	s := opened(t,
		model.UserProject{ProjectID: 1, Role: model.ProjectRoleMember},
		model.UserProject{ProjectID: 2, Role: model.ProjectRoleManager},
	)
	s, eff := Update(env, s, Remove{ProjectID: 1})
	assert.Len(t, effect.Calls(eff), 1)
	assert.Equal(t, int64(1), s.RowBusy)

	_, eff = Update(env, s, ChangeRole{ProjectID: 2, Role: model.ProjectRoleMember})
	assert.True(t, effect.IsNone(eff))

	s, _ = Update(env, s, Removed{UserID: 5, ProjectID: 1})
	got, _ := s.Projects.Get()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ProjectID)

	s, eff = Update(env, s, ChangeRole{ProjectID: 2, Role: model.ProjectRoleMember})
	require.Len(t, effect.Calls(eff), 1)
	s, eff = Update(env, s, RoleChanged{UserID: 5, ProjectID: 2, Result: api.Result[model.UserProject]{Err: model.NewApiError(422, "last manager")}})
	ts := effect.Collect[effect.Toast](eff)
	require.Len(t, ts, 1)
	assert.Equal(t, env.T(i18n.ErrLastManager), ts[0].Text)
	assert.False(t, s.Row.InFlight)
}

func TestRoleChanged_ConflictTagsRow(t *testing.T) {
	env := testEnv()
	s := opened(t, model.UserProject{ProjectID: 2, Role: model.ProjectRoleManager})
	s, _ = Update(env, s, ChangeRole{ProjectID: 2, Role: model.ProjectRoleMember})
	s, _ = Update(env, s, RoleChanged{UserID: 5, ProjectID: 2, Result: api.Result[model.UserProject]{Err: model.NewApiError(409, "x")}})
	assert.Equal(t, env.T(i18n.ErrRoleConflict), s.RowError.For(2))
}

func TestAvailable_ExcludesMemberships(t *testing.T) {
	s := opened(t, model.UserProject{ProjectID: 2})
	got := s.Available([]model.Project{{ID: 1}, {ID: 2}, {ID: 3}})
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestUnauthorized_Everywhere(t *testing.T) {
	env := testEnv()
	unauth := model.NewApiError(401, "x")
	for _, m := range []Msg{
		Loaded{UserID: 5, Result: api.Result[[]model.UserProject]{Err: unauth}},
		Loaded{UserID: 9, Result: api.Result[[]model.UserProject]{Err: unauth}},
		Added{UserID: 5, Result: api.Result[model.UserProject]{Err: unauth}},
		Removed{UserID: 5, ProjectID: 1, Err: unauth},
		RoleChanged{UserID: 5, ProjectID: 1, Result: api.Result[model.UserProject]{Err: unauth}},
	} {
		s := opened(t, model.UserProject{ProjectID: 1})
		next, eff := Update(env, s, m)
		assert.Len(t, effect.Collect[effect.ResetSession](eff), 1, "%T", m)
		assert.Nil(t, next.RowError, "%T", m)
		assert.Empty(t, next.Add.Error, "%T", m)
	}
}

func TestClose_Resets(t *testing.T) {
	s := opened(t, model.UserProject{ProjectID: 1})
	s, _ = Update(testEnv(), s, Close{})
	assert.False(t, s.Open)
	assert.True(t, s.Projects.IsNotAsked())
}
