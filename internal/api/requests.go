package api

import (
	"context"

	"scrumbringer-admin/internal/model"
)

// Request describes one call. Op names the call for logs; Do performs it.
type Request[T any] interface {
	Op() string
	Do(ctx context.Context, b Backend) (T, error)
}

func unit(err error) (Unit, error) { return Unit{}, err }

type FetchMe struct{}

func (FetchMe) Op() string { return "session.me" }
func (FetchMe) Do(ctx context.Context, b Backend) (model.User, error) {
	return b.Me(ctx)
}

// Projects.

type ListProjects struct{}

func (ListProjects) Op() string { return "projects.list" }
func (ListProjects) Do(ctx context.Context, b Backend) ([]model.Project, error) {
	return b.ListProjects(ctx)
}

type CreateProject struct{ Name string }

func (CreateProject) Op() string { return "projects.create" }
func (r CreateProject) Do(ctx context.Context, b Backend) (model.Project, error) {
	return b.CreateProject(ctx, r.Name)
}

// Project members.

type ListMembers struct{ ProjectID int64 }

func (ListMembers) Op() string { return "members.list" }
func (r ListMembers) Do(ctx context.Context, b Backend) ([]model.ProjectMember, error) {
	return b.ListMembers(ctx, r.ProjectID)
}

type AddMember struct {
	ProjectID int64
	UserID    int64
	Role      model.ProjectRole
}

func (AddMember) Op() string { return "members.add" }
func (r AddMember) Do(ctx context.Context, b Backend) (model.ProjectMember, error) {
	return b.AddMember(ctx, r.ProjectID, r.UserID, r.Role)
}

type RemoveMember struct {
	ProjectID int64
	UserID    int64
}

func (RemoveMember) Op() string { return "members.remove" }
func (r RemoveMember) Do(ctx context.Context, b Backend) (Unit, error) {
	return unit(b.RemoveMember(ctx, r.ProjectID, r.UserID))
}

type UpdateMemberRole struct {
	ProjectID int64
	UserID    int64
	Role      model.ProjectRole
}

func (UpdateMemberRole) Op() string { return "members.role" }
func (r UpdateMemberRole) Do(ctx context.Context, b Backend) (model.ProjectMember, error) {
	return b.UpdateMemberRole(ctx, r.ProjectID, r.UserID, r.Role)
}

// Org users.

type ListOrgUsers struct{}

func (ListOrgUsers) Op() string { return "org.users" }
func (ListOrgUsers) Do(ctx context.Context, b Backend) ([]model.OrgUser, error) {
	return b.ListOrgUsers(ctx)
}

type SearchOrgUsers struct{ Query string }

func (SearchOrgUsers) Op() string { return "org.users.search" }
func (r SearchOrgUsers) Do(ctx context.Context, b Backend) ([]model.OrgUser, error) {
	return b.SearchOrgUsers(ctx, r.Query)
}

type UpdateOrgRole struct {
	UserID int64
	Role   model.OrgRole
}

func (UpdateOrgRole) Op() string { return "org.role" }
func (r UpdateOrgRole) Do(ctx context.Context, b Backend) (model.OrgUser, error) {
	return b.UpdateOrgRole(ctx, r.UserID, r.Role)
}

// User projects.

type ListUserProjects struct{ UserID int64 }

func (ListUserProjects) Op() string { return "user_projects.list" }
func (r ListUserProjects) Do(ctx context.Context, b Backend) ([]model.UserProject, error) {
	return b.ListUserProjects(ctx, r.UserID)
}

type AddUserToProject struct {
	UserID    int64
	ProjectID int64
	Role      model.ProjectRole
}

func (AddUserToProject) Op() string { return "user_projects.add" }
func (r AddUserToProject) Do(ctx context.Context, b Backend) (model.UserProject, error) {
	return b.AddUserToProject(ctx, r.UserID, r.ProjectID, r.Role)
}

type RemoveUserFromProject struct {
	UserID    int64
	ProjectID int64
}

func (RemoveUserFromProject) Op() string { return "user_projects.remove" }
func (r RemoveUserFromProject) Do(ctx context.Context, b Backend) (Unit, error) {
	return unit(b.RemoveUserFromProject(ctx, r.UserID, r.ProjectID))
}

type UpdateUserProjectRole struct {
	UserID    int64
	ProjectID int64
	Role      model.ProjectRole
}

func (UpdateUserProjectRole) Op() string { return "user_projects.role" }
func (r UpdateUserProjectRole) Do(ctx context.Context, b Backend) (model.UserProject, error) {
	return b.UpdateUserProjectRole(ctx, r.UserID, r.ProjectID, r.Role)
}

// Cards.

type ListCards struct{ ProjectID int64 }

func (ListCards) Op() string { return "cards.list" }
func (r ListCards) Do(ctx context.Context, b Backend) ([]model.Card, error) {
	return b.ListCards(ctx, r.ProjectID)
}

type CreateCard struct {
	ProjectID int64
	Input     CardInput
}

func (CreateCard) Op() string { return "cards.create" }
func (r CreateCard) Do(ctx context.Context, b Backend) (model.Card, error) {
	return b.CreateCard(ctx, r.ProjectID, r.Input)
}

type UpdateCard struct {
	ID    int64
	Input CardInput
}

func (UpdateCard) Op() string { return "cards.update" }
func (r UpdateCard) Do(ctx context.Context, b Backend) (model.Card, error) {
	return b.UpdateCard(ctx, r.ID, r.Input)
}

type DeleteCard struct{ ID int64 }

func (DeleteCard) Op() string { return "cards.delete" }
func (r DeleteCard) Do(ctx context.Context, b Backend) (Unit, error) {
	return unit(b.DeleteCard(ctx, r.ID))
}

// Workflows and rules.

type ListWorkflows struct{ ProjectID *int64 }

func (ListWorkflows) Op() string { return "workflows.list" }
func (r ListWorkflows) Do(ctx context.Context, b Backend) ([]model.Workflow, error) {
	return b.ListWorkflows(ctx, r.ProjectID)
}

type CreateWorkflow struct{ Input WorkflowInput }

func (CreateWorkflow) Op() string { return "workflows.create" }
func (r CreateWorkflow) Do(ctx context.Context, b Backend) (model.Workflow, error) {
	return b.CreateWorkflow(ctx, r.Input)
}

type UpdateWorkflow struct {
	ID    int64
	Input WorkflowInput
}

func (UpdateWorkflow) Op() string { return "workflows.update" }
func (r UpdateWorkflow) Do(ctx context.Context, b Backend) (model.Workflow, error) {
	return b.UpdateWorkflow(ctx, r.ID, r.Input)
}

type DeleteWorkflow struct{ ID int64 }

func (DeleteWorkflow) Op() string { return "workflows.delete" }
func (r DeleteWorkflow) Do(ctx context.Context, b Backend) (Unit, error) {
	return unit(b.DeleteWorkflow(ctx, r.ID))
}

type ListRules struct{ WorkflowID int64 }

func (ListRules) Op() string { return "rules.list" }
func (r ListRules) Do(ctx context.Context, b Backend) ([]model.Rule, error) {
	return b.ListRules(ctx, r.WorkflowID)
}

type CreateRule struct {
	WorkflowID int64
	Input      RuleInput
}

func (CreateRule) Op() string { return "rules.create" }
func (r CreateRule) Do(ctx context.Context, b Backend) (model.Rule, error) {
	return b.CreateRule(ctx, r.WorkflowID, r.Input)
}

type UpdateRule struct {
	ID    int64
	Input RuleInput
}

func (UpdateRule) Op() string { return "rules.update" }
func (r UpdateRule) Do(ctx context.Context, b Backend) (model.Rule, error) {
	return b.UpdateRule(ctx, r.ID, r.Input)
}

type DeleteRule struct{ ID int64 }

func (DeleteRule) Op() string { return "rules.delete" }
func (r DeleteRule) Do(ctx context.Context, b Backend) (Unit, error) {
	return unit(b.DeleteRule(ctx, r.ID))
}

type AttachTemplate struct {
	RuleID     int64
	TemplateID int64
	Order      int
}

func (AttachTemplate) Op() string { return "rules.attach_template" }
func (r AttachTemplate) Do(ctx context.Context, b Backend) (model.Rule, error) {
	return b.AttachTemplate(ctx, r.RuleID, r.TemplateID, r.Order)
}

type DetachTemplate struct {
	RuleID     int64
	TemplateID int64
}

func (DetachTemplate) Op() string { return "rules.detach_template" }
func (r DetachTemplate) Do(ctx context.Context, b Backend) (model.Rule, error) {
	return b.DetachTemplate(ctx, r.RuleID, r.TemplateID)
}

// Task templates.

type ListTemplates struct{ ProjectID *int64 }

func (ListTemplates) Op() string { return "templates.list" }
func (r ListTemplates) Do(ctx context.Context, b Backend) ([]model.TaskTemplate, error) {
	return b.ListTemplates(ctx, r.ProjectID)
}

type CreateTemplate struct{ Input TemplateInput }

func (CreateTemplate) Op() string { return "templates.create" }
func (r CreateTemplate) Do(ctx context.Context, b Backend) (model.TaskTemplate, error) {
	return b.CreateTemplate(ctx, r.Input)
}

type UpdateTemplate struct {
	ID    int64
	Input TemplateInput
}

func (UpdateTemplate) Op() string { return "templates.update" }
func (r UpdateTemplate) Do(ctx context.Context, b Backend) (model.TaskTemplate, error) {
	return b.UpdateTemplate(ctx, r.ID, r.Input)
}

type DeleteTemplate struct{ ID int64 }

func (DeleteTemplate) Op() string { return "templates.delete" }
func (r DeleteTemplate) Do(ctx context.Context, b Backend) (Unit, error) {
	return unit(b.DeleteTemplate(ctx, r.ID))
}

// Invite links.

type ListInvites struct{}

func (ListInvites) Op() string { return "invites.list" }
func (ListInvites) Do(ctx context.Context, b Backend) ([]model.InviteLink, error) {
	return b.ListInvites(ctx)
}

type CreateInvite struct{ Email string }

func (CreateInvite) Op() string { return "invites.create" }
func (r CreateInvite) Do(ctx context.Context, b Backend) (model.InviteLink, error) {
	return b.CreateInvite(ctx, r.Email)
}

type RegenerateInvite struct{ Email string }

func (RegenerateInvite) Op() string { return "invites.regenerate" }
func (r RegenerateInvite) Do(ctx context.Context, b Backend) (model.InviteLink, error) {
	return b.RegenerateInvite(ctx, r.Email)
}

// Rule metrics.

type MetricsSummary struct{ Days int }

func (MetricsSummary) Op() string { return "metrics.summary" }
func (r MetricsSummary) Do(ctx context.Context, b Backend) ([]model.WorkflowMetrics, error) {
	return b.MetricsSummary(ctx, r.Days)
}

type WorkflowMetrics struct {
	WorkflowID int64
	Days       int
}

func (WorkflowMetrics) Op() string { return "metrics.workflow" }
func (r WorkflowMetrics) Do(ctx context.Context, b Backend) (model.WorkflowMetricsDetail, error) {
	return b.WorkflowMetrics(ctx, r.WorkflowID, r.Days)
}

type RuleExecutions struct {
	RuleID int64
	Days   int
	Limit  int
	Offset int
}

func (RuleExecutions) Op() string { return "metrics.executions" }
func (r RuleExecutions) Do(ctx context.Context, b Backend) (model.ExecutionsPage, error) {
	return b.RuleExecutions(ctx, r.RuleID, r.Days, r.Limit, r.Offset)
}
