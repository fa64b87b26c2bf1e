package store

import (
	"context"
	"fmt"
	"strings"

	"scrumbringer-admin/internal/model"
)

func memberKey(projectID, userID int64) string {
	return fmt.Sprintf("%d:%d", projectID, userID)
}

func validProjectRole(r model.ProjectRole) bool {
	return r == model.ProjectRoleManager || r == model.ProjectRoleMember
}

// ListProjects returns every project for org admins and the user's own
// projects otherwise.
func (b *Backend) ListProjects(ctx context.Context) ([]model.Project, error) {
	out := []model.Project{}
	err := b.read(ctx, func(q querier) error {
		u, err := actor(ctx, q)
		if err != nil {
			return err
		}
		projects, err := listAll[model.Project](ctx, q, kindProject)
		if err != nil {
			return err
		}
		members, err := listAll[model.ProjectMember](ctx, q, kindMember)
		if err != nil {
			return err
		}
		for _, p := range projects {
			p.MembersCount = 0
			p.MyRole = ""
			for _, m := range members {
				if m.ProjectID != p.ID {
					continue
				}
				p.MembersCount++
				if m.UserID == u.ID {
					p.MyRole = m.Role
				}
			}
			if p.MyRole == "" {
				if !u.IsOrgAdmin() {
					continue
				}
				p.MyRole = model.ProjectRoleManager
			}
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// CreateProject creates a project with the caller as its manager.
func (b *Backend) CreateProject(ctx context.Context, name string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, invalid("name is required")
	}
	var out model.Project
	err := b.write(ctx, func(q querier) error {
		u, err := requireAdmin(ctx, q)
		if err != nil {
			return err
		}
		id, err := nextID(ctx, q, kindProject)
		if err != nil {
			return err
		}
		out = model.Project{ID: id, Name: name, CreatedAt: b.now()}
		if err := b.put(ctx, q, kindProject, idKey(id), id, orgID, out); err != nil {
			return err
		}
		if _, err := b.addMember(ctx, q, id, u.ID, model.ProjectRoleManager); err != nil {
			return err
		}
		out.MyRole = model.ProjectRoleManager
		out.MembersCount = 1
		return nil
	})
	return out, err
}

func (b *Backend) ListMembers(ctx context.Context, projectID int64) ([]model.ProjectMember, error) {
	var out []model.ProjectMember
	err := b.read(ctx, func(q querier) error {
		if _, err := requireReader(ctx, q, projectID); err != nil {
			return err
		}
		var err error
		out, err = listByParent[model.ProjectMember](ctx, q, kindMember, projectID)
		return err
	})
	return out, err
}

func (b *Backend) AddMember(ctx context.Context, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error) {
	var out model.ProjectMember
	err := b.write(ctx, func(q querier) error {
		if _, err := requireManager(ctx, q, projectID); err != nil {
			return err
		}
		var err error
		out, err = b.addMember(ctx, q, projectID, userID, role)
		return err
	})
	return out, err
}

func (b *Backend) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return b.write(ctx, func(q querier) error {
		if _, err := requireManager(ctx, q, projectID); err != nil {
			return err
		}
		return removeMember(ctx, q, projectID, userID)
	})
}

func (b *Backend) UpdateMemberRole(ctx context.Context, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error) {
	var out model.ProjectMember
	err := b.write(ctx, func(q querier) error {
		if _, err := requireManager(ctx, q, projectID); err != nil {
			return err
		}
		var err error
		out, err = b.setMemberRole(ctx, q, projectID, userID, role)
		return err
	})
	return out, err
}

func (b *Backend) addMember(ctx context.Context, q querier, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error) {
	if !validProjectRole(role) {
		return model.ProjectMember{}, invalid("unknown project role")
	}
	if _, err := get[model.Project](ctx, q, kindProject, idKey(projectID)); err != nil {
		return model.ProjectMember{}, err
	}
	if _, err := get[model.User](ctx, q, kindUser, idKey(userID)); err != nil {
		return model.ProjectMember{}, err
	}
	key := memberKey(projectID, userID)
	if ok, err := exists(ctx, q, kindMember, key); err != nil {
		return model.ProjectMember{}, err
	} else if ok {
		return model.ProjectMember{}, conflict("already_member", "user is already a member")
	}
	m := model.ProjectMember{UserID: userID, ProjectID: projectID, Role: role, CreatedAt: b.now()}
	return m, b.put(ctx, q, kindMember, key, userID, projectID, m)
}

// lastManager reports whether userID is the only manager of the project.
func lastManager(ctx context.Context, q querier, projectID, userID int64) (bool, error) {
	members, err := listByParent[model.ProjectMember](ctx, q, kindMember, projectID)
	if err != nil {
		return false, err
	}
	managers, isManager := 0, false
	for _, m := range members {
		if m.Role == model.ProjectRoleManager {
			managers++
			if m.UserID == userID {
				isManager = true
			}
		}
	}
	return isManager && managers <= 1, nil
}

func removeMember(ctx context.Context, q querier, projectID, userID int64) error {
	key := memberKey(projectID, userID)
	if _, err := get[model.ProjectMember](ctx, q, kindMember, key); err != nil {
		return err
	}
	last, err := lastManager(ctx, q, projectID, userID)
	if err != nil {
		return err
	}
	if last {
		return unprocessable("last_manager", "cannot remove the last project manager")
	}
	return remove(ctx, q, kindMember, key)
}

func (b *Backend) setMemberRole(ctx context.Context, q querier, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error) {
	if !validProjectRole(role) {
		return model.ProjectMember{}, invalid("unknown project role")
	}
	key := memberKey(projectID, userID)
	m, err := get[model.ProjectMember](ctx, q, kindMember, key)
	if err != nil {
		return m, err
	}
	if role != model.ProjectRoleManager {
		last, err := lastManager(ctx, q, projectID, userID)
		if err != nil {
			return m, err
		}
		if last {
			return m, unprocessable("last_manager", "cannot demote the last project manager")
		}
	}
	m.Role = role
	return m, b.put(ctx, q, kindMember, key, userID, projectID, m)
}

func userProject(ctx context.Context, q querier, m model.ProjectMember) (model.UserProject, error) {
	p, err := get[model.Project](ctx, q, kindProject, idKey(m.ProjectID))
	if err != nil {
		return model.UserProject{}, err
	}
	return model.UserProject{ProjectID: p.ID, ProjectName: p.Name, Role: m.Role}, nil
}

func (b *Backend) ListUserProjects(ctx context.Context, userID int64) ([]model.UserProject, error) {
	out := []model.UserProject{}
	err := b.read(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		if _, err := get[model.User](ctx, q, kindUser, idKey(userID)); err != nil {
			return err
		}
		members, err := listAll[model.ProjectMember](ctx, q, kindMember)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.UserID != userID {
				continue
			}
			up, err := userProject(ctx, q, m)
			if err != nil {
				return err
			}
			out = append(out, up)
		}
		return nil
	})
	return out, err
}

func (b *Backend) AddUserToProject(ctx context.Context, userID, projectID int64, role model.ProjectRole) (model.UserProject, error) {
	var out model.UserProject
	err := b.write(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		m, err := b.addMember(ctx, q, projectID, userID, role)
		if err != nil {
			return err
		}
		out, err = userProject(ctx, q, m)
		return err
	})
	return out, err
}

func (b *Backend) RemoveUserFromProject(ctx context.Context, userID, projectID int64) error {
	return b.write(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		return removeMember(ctx, q, projectID, userID)
	})
}

func (b *Backend) UpdateUserProjectRole(ctx context.Context, userID, projectID int64, role model.ProjectRole) (model.UserProject, error) {
	var out model.UserProject
	err := b.write(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		m, err := b.setMemberRole(ctx, q, projectID, userID, role)
		if err != nil {
			return err
		}
		out, err = userProject(ctx, q, m)
		return err
	})
	return out, err
}
