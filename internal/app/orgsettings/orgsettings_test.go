package orgsettings

import (
	"testing"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() feature.Env {
	return feature.Env{Locale: i18n.English, Settings: feature.DefaultSettings()}
}

func loaded() State {
	return State{Users: remote.NewLoaded([]model.OrgUser{
		{ID: 1, Email: "root@x.io", OrgRole: model.OrgRoleAdmin},
		{ID: 2, Email: "dev@x.io", OrgRole: model.OrgRoleMember},
	})}
}

func TestRoleDraft_CopiesOnWrite(t *testing.T) {
	env := testEnv()
	before := loaded()
	after, _ := Update(env, before, RoleDraft{UserID: 2, Role: model.OrgRoleAdmin})

	assert.Nil(t, before.Drafts)
	assert.True(t, after.Dirty(2))

	u, _ := after.user(2)
	assert.Equal(t, model.OrgRoleAdmin, after.RoleFor(u))

	// Drafting back to the saved role clears the draft.
	again, _ := Update(env, after, RoleDraft{UserID: 2, Role: model.OrgRoleMember})
	assert.False(t, again.Dirty(2))
	assert.True(t, after.Dirty(2), "previous state must not change")
}

func TestSave_OneAtATime(t *testing.T) {
	env := testEnv()
	s := loaded()
	s, _ = Update(env, s, RoleDraft{UserID: 1, Role: model.OrgRoleMember})
	s, _ = Update(env, s, RoleDraft{UserID: 2, Role: model.OrgRoleAdmin})

	s, eff := Update(env, s, Save{UserID: 2})
	req := eff.(effect.Call[model.OrgUser]).Request.(api.UpdateOrgRole)
	assert.Equal(t, api.UpdateOrgRole{UserID: 2, Role: model.OrgRoleAdmin}, req)
	assert.Equal(t, int64(2), s.Saving)

	_, eff = Update(env, s, Save{UserID: 1})
	assert.True(t, effect.IsNone(eff))

	s, eff = Update(env, s, Saved{UserID: 2, Result: api.Result[model.OrgUser]{Value: model.OrgUser{ID: 2, Email: "dev@x.io", OrgRole: model.OrgRoleAdmin}}})
	assert.Zero(t, s.Saving)
	assert.False(t, s.Dirty(2))
	assert.True(t, s.Dirty(1))
	u, _ := s.user(2)
	assert.Equal(t, model.OrgRoleAdmin, u.OrgRole)
	assert.Len(t, effect.Collect[effect.Toast](eff), 1)
}

func TestSave_WithoutDraftIsNoop(t *testing.T) {
	next, eff := Update(testEnv(), loaded(), Save{UserID: 2})
	assert.True(t, effect.IsNone(eff))
	assert.False(t, next.Save.InFlight)
}

func TestSaved_ConflictTaggedToRow(t *testing.T) {
	env := testEnv()
	s := loaded()
	s, _ = Update(env, s, RoleDraft{UserID: 2, Role: model.OrgRoleAdmin})
	s, _ = Update(env, s, Save{UserID: 2})
	s, eff := Update(env, s, Saved{UserID: 2, Result: api.Result[model.OrgUser]{Err: model.NewApiError(409, "stale role")}})

	assert.True(t, effect.IsNone(eff))
	require.NotNil(t, s.RowError)
	assert.Equal(t, "stale role", s.RowError.For(2))
	assert.Empty(t, s.RowError.For(1))
	assert.True(t, s.Dirty(2), "draft survives a conflict")
}

func TestSaved_LastAdminToast(t *testing.T) {
	env := testEnv()
	s := loaded()
	s, _ = Update(env, s, RoleDraft{UserID: 1, Role: model.OrgRoleMember})
	s, _ = Update(env, s, Save{UserID: 1})
	s, eff := Update(env, s, Saved{UserID: 1, Result: api.Result[model.OrgUser]{Err: model.NewApiError(422, "last admin")}})

	ts := effect.Collect[effect.Toast](eff)
	require.Len(t, ts, 1)
	assert.Equal(t, env.T(i18n.ErrLastAdmin), ts[0].Text)
	assert.Nil(t, s.RowError)
	u, _ := s.user(1)
	assert.Equal(t, model.OrgRoleAdmin, u.OrgRole)
}

func TestSaved_ForbiddenInlineAndToast(t *testing.T) {
	env := testEnv()
	s := loaded()
	s, _ = Update(env, s, RoleDraft{UserID: 2, Role: model.OrgRoleAdmin})
	s, _ = Update(env, s, Save{UserID: 2})
	s, eff := Update(env, s, Saved{UserID: 2, Result: api.Result[model.OrgUser]{Err: model.NewApiError(403, "no")}})
	assert.Equal(t, env.T(i18n.ErrNotPermitted), s.RowError.For(2))
	assert.Len(t, effect.Collect[effect.Toast](eff), 1)
}

func TestSaved_Unauthorized(t *testing.T) {
	env := testEnv()
	s := loaded()
	s.Save.InFlight = true
	s, eff := Update(env, s, Saved{UserID: 2, Result: api.Result[model.OrgUser]{Err: model.NewApiError(401, "x")}})
	assert.Len(t, effect.Collect[effect.ResetSession](eff), 1)
	assert.False(t, s.Save.InFlight)
	assert.Nil(t, s.RowError)
}
