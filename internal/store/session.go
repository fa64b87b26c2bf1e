package store

import (
	"context"
	"strconv"
	"strings"

	"scrumbringer-admin/internal/model"
)

const sessionKey = "session_user"

// SignIn makes the user with email the session user.
func (b *Backend) SignIn(ctx context.Context, email string) (model.User, error) {
	var out model.User
	err := b.write(ctx, func(q querier) error {
		u, err := userByEmail(ctx, q, email)
		if err != nil {
			return err
		}
		out = u
		return metaSet(ctx, q, sessionKey, idKey(u.ID))
	})
	return out, err
}

// SignOut clears the session. Every later request answers 401.
func (b *Backend) SignOut(ctx context.Context) error {
	return b.write(ctx, func(q querier) error {
		return metaSet(ctx, q, sessionKey, "0")
	})
}

func (b *Backend) Me(ctx context.Context) (model.User, error) {
	var out model.User
	err := b.read(ctx, func(q querier) error {
		u, err := actor(ctx, q)
		out = u
		return err
	})
	return out, err
}

// actor returns the session user; no session or a stale one is a 401.
func actor(ctx context.Context, q querier) (model.User, error) {
	v, err := metaGet(ctx, q, sessionKey)
	if err != nil {
		return model.User{}, err
	}
	id, _ := strconv.ParseInt(v, 10, 64)
	if id == 0 {
		return model.User{}, unauthorized()
	}
	u, err := get[model.User](ctx, q, kindUser, idKey(id))
	if err != nil {
		return model.User{}, unauthorized()
	}
	return u, nil
}

func requireAdmin(ctx context.Context, q querier) (model.User, error) {
	u, err := actor(ctx, q)
	if err != nil {
		return u, err
	}
	if !u.IsOrgAdmin() {
		return u, forbidden()
	}
	return u, nil
}

// requireManager allows org admins and managers of the project.
func requireManager(ctx context.Context, q querier, projectID int64) (model.User, error) {
	u, err := actor(ctx, q)
	if err != nil {
		return u, err
	}
	if _, err := get[model.Project](ctx, q, kindProject, idKey(projectID)); err != nil {
		return u, err
	}
	if u.IsOrgAdmin() {
		return u, nil
	}
	m, err := get[model.ProjectMember](ctx, q, kindMember, memberKey(projectID, u.ID))
	if err != nil || m.Role != model.ProjectRoleManager {
		return u, forbidden()
	}
	return u, nil
}

// requireReader allows org admins and members of the project.
func requireReader(ctx context.Context, q querier, projectID int64) (model.User, error) {
	u, err := actor(ctx, q)
	if err != nil {
		return u, err
	}
	if _, err := get[model.Project](ctx, q, kindProject, idKey(projectID)); err != nil {
		return u, err
	}
	if u.IsOrgAdmin() {
		return u, nil
	}
	if ok, err := exists(ctx, q, kindMember, memberKey(projectID, u.ID)); err != nil {
		return u, err
	} else if !ok {
		return u, forbidden()
	}
	return u, nil
}

func userByEmail(ctx context.Context, q querier, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := listAll[model.User](ctx, q, kindUser)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if strings.ToLower(u.Email) == email {
			return u, nil
		}
	}
	return model.User{}, notFound(kindUser)
}

// AddUser creates an org user. It needs no session so a fresh database can
// be bootstrapped.
func (b *Backend) AddUser(ctx context.Context, email string, role model.OrgRole) (model.User, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return model.User{}, invalid("email is invalid")
	}
	var out model.User
	err := b.write(ctx, func(q querier) error {
		if _, err := userByEmail(ctx, q, email); err == nil {
			return conflict("user_exists", "user already exists")
		}
		id, err := nextID(ctx, q, kindUser)
		if err != nil {
			return err
		}
		out = model.User{ID: id, Email: email, OrgID: orgID, OrgRole: role, CreatedAt: b.now()}
		return b.put(ctx, q, kindUser, idKey(id), id, orgID, out)
	})
	return out, err
}

func orgUser(u model.User) model.OrgUser {
	return model.OrgUser{ID: u.ID, Email: u.Email, OrgRole: u.OrgRole, CreatedAt: u.CreatedAt}
}

func (b *Backend) ListOrgUsers(ctx context.Context) ([]model.OrgUser, error) {
	return b.SearchOrgUsers(ctx, "")
}

// SearchOrgUsers matches query against emails, case-insensitively.
func (b *Backend) SearchOrgUsers(ctx context.Context, query string) ([]model.OrgUser, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []model.OrgUser{}
	err := b.read(ctx, func(q querier) error {
		if _, err := actor(ctx, q); err != nil {
			return err
		}
		users, err := listAll[model.User](ctx, q, kindUser)
		if err != nil {
			return err
		}
		for _, u := range users {
			if query == "" || strings.Contains(strings.ToLower(u.Email), query) {
				out = append(out, orgUser(u))
			}
		}
		return nil
	})
	return out, err
}

// UpdateOrgRole changes a user's org role. Demoting the last admin is a 422.
func (b *Backend) UpdateOrgRole(ctx context.Context, userID int64, role model.OrgRole) (model.OrgUser, error) {
	if role != model.OrgRoleAdmin && role != model.OrgRoleMember {
		return model.OrgUser{}, invalid("unknown org role")
	}
	var out model.OrgUser
	err := b.write(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		u, err := get[model.User](ctx, q, kindUser, idKey(userID))
		if err != nil {
			return err
		}
		if u.IsOrgAdmin() && role != model.OrgRoleAdmin {
			users, err := listAll[model.User](ctx, q, kindUser)
			if err != nil {
				return err
			}
			admins := 0
			for _, x := range users {
				if x.IsOrgAdmin() {
					admins++
				}
			}
			if admins <= 1 {
				return unprocessable("last_admin", "cannot demote the last org admin")
			}
		}
		u.OrgRole = role
		out = orgUser(u)
		return b.put(ctx, q, kindUser, idKey(u.ID), u.ID, orgID, u)
	})
	return out, err
}
