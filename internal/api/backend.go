// Package api is the boundary between the state engine and the server.
//
// Requests are plain values; Backend implementations (HTTP, local sqlite)
// perform them. Every failure that reaches the engine is a *model.ApiError.
package api

import (
	"context"
	"errors"

	"scrumbringer-admin/internal/model"
)

type CardInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type WorkflowInput struct {
	ProjectID   *int64 `json:"projectId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

type RuleInput struct {
	Name         string             `json:"name"`
	Goal         string             `json:"goal,omitempty"`
	ResourceType model.ResourceType `json:"resourceType"`
	TaskTypeID   *int64             `json:"taskTypeId,omitempty"`
	ToState      string             `json:"toState"`
	Active       bool               `json:"active"`
}

type TemplateInput struct {
	ProjectID   *int64 `json:"projectId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TypeID      int64  `json:"typeId"`
	Priority    int    `json:"priority"`
}

// Backend performs requests. Implementations should return *model.ApiError for
// server-side failures; anything else is normalized by AsAPIError.
type Backend interface {
	Me(ctx context.Context) (model.User, error)

	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, name string) (model.Project, error)

	ListMembers(ctx context.Context, projectID int64) ([]model.ProjectMember, error)
	AddMember(ctx context.Context, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, userID int64) error
	UpdateMemberRole(ctx context.Context, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error)

	ListOrgUsers(ctx context.Context) ([]model.OrgUser, error)
	SearchOrgUsers(ctx context.Context, query string) ([]model.OrgUser, error)
	UpdateOrgRole(ctx context.Context, userID int64, role model.OrgRole) (model.OrgUser, error)

	ListUserProjects(ctx context.Context, userID int64) ([]model.UserProject, error)
	AddUserToProject(ctx context.Context, userID, projectID int64, role model.ProjectRole) (model.UserProject, error)
	RemoveUserFromProject(ctx context.Context, userID, projectID int64) error
	UpdateUserProjectRole(ctx context.Context, userID, projectID int64, role model.ProjectRole) (model.UserProject, error)

	ListCards(ctx context.Context, projectID int64) ([]model.Card, error)
	CreateCard(ctx context.Context, projectID int64, in CardInput) (model.Card, error)
	UpdateCard(ctx context.Context, id int64, in CardInput) (model.Card, error)
	DeleteCard(ctx context.Context, id int64) error

	ListWorkflows(ctx context.Context, projectID *int64) ([]model.Workflow, error)
	CreateWorkflow(ctx context.Context, in WorkflowInput) (model.Workflow, error)
	UpdateWorkflow(ctx context.Context, id int64, in WorkflowInput) (model.Workflow, error)
	DeleteWorkflow(ctx context.Context, id int64) error

	ListRules(ctx context.Context, workflowID int64) ([]model.Rule, error)
	CreateRule(ctx context.Context, workflowID int64, in RuleInput) (model.Rule, error)
	UpdateRule(ctx context.Context, id int64, in RuleInput) (model.Rule, error)
	DeleteRule(ctx context.Context, id int64) error
	AttachTemplate(ctx context.Context, ruleID, templateID int64, order int) (model.Rule, error)
	DetachTemplate(ctx context.Context, ruleID, templateID int64) (model.Rule, error)

	ListTemplates(ctx context.Context, projectID *int64) ([]model.TaskTemplate, error)
	CreateTemplate(ctx context.Context, in TemplateInput) (model.TaskTemplate, error)
	UpdateTemplate(ctx context.Context, id int64, in TemplateInput) (model.TaskTemplate, error)
	DeleteTemplate(ctx context.Context, id int64) error

	ListInvites(ctx context.Context) ([]model.InviteLink, error)
	CreateInvite(ctx context.Context, email string) (model.InviteLink, error)
	RegenerateInvite(ctx context.Context, email string) (model.InviteLink, error)

	MetricsSummary(ctx context.Context, days int) ([]model.WorkflowMetrics, error)
	WorkflowMetrics(ctx context.Context, workflowID int64, days int) (model.WorkflowMetricsDetail, error)
	RuleExecutions(ctx context.Context, ruleID int64, days, limit, offset int) (model.ExecutionsPage, error)
}

// Unit is the value of requests that only succeed or fail.
type Unit struct{}

// Result is the outcome of one request. Exactly one of Value/Err is meaningful.
type Result[T any] struct {
	Value T
	Err   *model.ApiError
}

func NewResult[T any](v T, err error) Result[T] {
	if err != nil {
		var zero T
		return Result[T]{Value: zero, Err: AsAPIError(err)}
	}
	return Result[T]{Value: v}
}

func (r Result[T]) OK() bool { return r.Err == nil }

// AsAPIError normalizes err. Non-API errors (transport, context) get status 0.
func AsAPIError(err error) *model.ApiError {
	if err == nil {
		return nil
	}
	var ae *model.ApiError
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	return &model.ApiError{Status: 0, Message: err.Error()}
}
