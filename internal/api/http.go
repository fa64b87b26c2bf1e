package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scrumbringer-admin/internal/model"
)

// HTTPBackend talks to the server's JSON API under /api/v1.
//
// Success bodies are {"data": ...}; failures are {"error": {"code", "message"}}.
type HTTPBackend struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token  string
	Client *http.Client
}

func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:   strings.TrimSpace(token),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *HTTPBackend) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := h.BaseURL + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &model.ApiError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			ae.Code = env.Error.Code
			if strings.TrimSpace(env.Error.Message) != "" {
				ae.Message = env.Error.Message
			}
		}
		return ae
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func projectQuery(projectID *int64) url.Values {
	if projectID == nil {
		return nil
	}
	return url.Values{"project_id": {id(*projectID)}}
}

func (h *HTTPBackend) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := h.do(ctx, http.MethodGet, "/me", nil, nil, &u)
	return u, err
}

func (h *HTTPBackend) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := h.do(ctx, http.MethodGet, "/projects", nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) CreateProject(ctx context.Context, name string) (model.Project, error) {
	var out model.Project
	err := h.do(ctx, http.MethodPost, "/projects", nil, map[string]any{"name": name}, &out)
	return out, err
}

func (h *HTTPBackend) ListMembers(ctx context.Context, projectID int64) ([]model.ProjectMember, error) {
	var out []model.ProjectMember
	err := h.do(ctx, http.MethodGet, "/projects/"+id(projectID)+"/members", nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) AddMember(ctx context.Context, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error) {
	var out model.ProjectMember
	err := h.do(ctx, http.MethodPost, "/projects/"+id(projectID)+"/members", nil,
		map[string]any{"user_id": userID, "role": role}, &out)
	return out, err
}

func (h *HTTPBackend) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return h.do(ctx, http.MethodDelete, "/projects/"+id(projectID)+"/members/"+id(userID), nil, nil, nil)
}

func (h *HTTPBackend) UpdateMemberRole(ctx context.Context, projectID, userID int64, role model.ProjectRole) (model.ProjectMember, error) {
	var out model.ProjectMember
	err := h.do(ctx, http.MethodPatch, "/projects/"+id(projectID)+"/members/"+id(userID), nil,
		map[string]any{"role": role}, &out)
	return out, err
}

func (h *HTTPBackend) ListOrgUsers(ctx context.Context) ([]model.OrgUser, error) {
	var out []model.OrgUser
	err := h.do(ctx, http.MethodGet, "/org/users", nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) SearchOrgUsers(ctx context.Context, query string) ([]model.OrgUser, error) {
	var out []model.OrgUser
	err := h.do(ctx, http.MethodGet, "/org/users", url.Values{"q": {query}}, nil, &out)
	return out, err
}

func (h *HTTPBackend) UpdateOrgRole(ctx context.Context, userID int64, role model.OrgRole) (model.OrgUser, error) {
	var out model.OrgUser
	err := h.do(ctx, http.MethodPatch, "/org/users/"+id(userID), nil, map[string]any{"role": role}, &out)
	return out, err
}

func (h *HTTPBackend) ListUserProjects(ctx context.Context, userID int64) ([]model.UserProject, error) {
	var out []model.UserProject
	err := h.do(ctx, http.MethodGet, "/org/users/"+id(userID)+"/projects", nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) AddUserToProject(ctx context.Context, userID, projectID int64, role model.ProjectRole) (model.UserProject, error) {
	var out model.UserProject
	err := h.do(ctx, http.MethodPost, "/org/users/"+id(userID)+"/projects", nil,
		map[string]any{"project_id": projectID, "role": role}, &out)
	return out, err
}

func (h *HTTPBackend) RemoveUserFromProject(ctx context.Context, userID, projectID int64) error {
	return h.do(ctx, http.MethodDelete, "/org/users/"+id(userID)+"/projects/"+id(projectID), nil, nil, nil)
}

func (h *HTTPBackend) UpdateUserProjectRole(ctx context.Context, userID, projectID int64, role model.ProjectRole) (model.UserProject, error) {
	var out model.UserProject
	err := h.do(ctx, http.MethodPatch, "/org/users/"+id(userID)+"/projects/"+id(projectID), nil,
		map[string]any{"role": role}, &out)
	return out, err
}

func (h *HTTPBackend) ListCards(ctx context.Context, projectID int64) ([]model.Card, error) {
	var out []model.Card
	err := h.do(ctx, http.MethodGet, "/projects/"+id(projectID)+"/cards", nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) CreateCard(ctx context.Context, projectID int64, in CardInput) (model.Card, error) {
	var out model.Card
	err := h.do(ctx, http.MethodPost, "/projects/"+id(projectID)+"/cards", nil, in, &out)
	return out, err
}

func (h *HTTPBackend) UpdateCard(ctx context.Context, cardID int64, in CardInput) (model.Card, error) {
	var out model.Card
	err := h.do(ctx, http.MethodPatch, "/cards/"+id(cardID), nil, in, &out)
	return out, err
}

func (h *HTTPBackend) DeleteCard(ctx context.Context, cardID int64) error {
	return h.do(ctx, http.MethodDelete, "/cards/"+id(cardID), nil, nil, nil)
}

func (h *HTTPBackend) ListWorkflows(ctx context.Context, projectID *int64) ([]model.Workflow, error) {
	var out []model.Workflow
	err := h.do(ctx, http.MethodGet, "/workflows", projectQuery(projectID), nil, &out)
	return out, err
}

func (h *HTTPBackend) CreateWorkflow(ctx context.Context, in WorkflowInput) (model.Workflow, error) {
	var out model.Workflow
	err := h.do(ctx, http.MethodPost, "/workflows", nil, in, &out)
	return out, err
}

func (h *HTTPBackend) UpdateWorkflow(ctx context.Context, workflowID int64, in WorkflowInput) (model.Workflow, error) {
	var out model.Workflow
	err := h.do(ctx, http.MethodPatch, "/workflows/"+id(workflowID), nil, in, &out)
	return out, err
}

func (h *HTTPBackend) DeleteWorkflow(ctx context.Context, workflowID int64) error {
	return h.do(ctx, http.MethodDelete, "/workflows/"+id(workflowID), nil, nil, nil)
}

func (h *HTTPBackend) ListRules(ctx context.Context, workflowID int64) ([]model.Rule, error) {
	var out []model.Rule
	err := h.do(ctx, http.MethodGet, "/workflows/"+id(workflowID)+"/rules", nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) CreateRule(ctx context.Context, workflowID int64, in RuleInput) (model.Rule, error) {
	var out model.Rule
	err := h.do(ctx, http.MethodPost, "/workflows/"+id(workflowID)+"/rules", nil, in, &out)
	return out, err
}

func (h *HTTPBackend) UpdateRule(ctx context.Context, ruleID int64, in RuleInput) (model.Rule, error) {
	var out model.Rule
	err := h.do(ctx, http.MethodPatch, "/rules/"+id(ruleID), nil, in, &out)
	return out, err
}

func (h *HTTPBackend) DeleteRule(ctx context.Context, ruleID int64) error {
	return h.do(ctx, http.MethodDelete, "/rules/"+id(ruleID), nil, nil, nil)
}

func (h *HTTPBackend) AttachTemplate(ctx context.Context, ruleID, templateID int64, order int) (model.Rule, error) {
	var out model.Rule
	err := h.do(ctx, http.MethodPost, "/rules/"+id(ruleID)+"/templates", nil,
		map[string]any{"template_id": templateID, "execution_order": order}, &out)
	return out, err
}

func (h *HTTPBackend) DetachTemplate(ctx context.Context, ruleID, templateID int64) (model.Rule, error) {
	var out model.Rule
	err := h.do(ctx, http.MethodDelete, "/rules/"+id(ruleID)+"/templates/"+id(templateID), nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) ListTemplates(ctx context.Context, projectID *int64) ([]model.TaskTemplate, error) {
	var out []model.TaskTemplate
	err := h.do(ctx, http.MethodGet, "/task-templates", projectQuery(projectID), nil, &out)
	return out, err
}

func (h *HTTPBackend) CreateTemplate(ctx context.Context, in TemplateInput) (model.TaskTemplate, error) {
	var out model.TaskTemplate
	err := h.do(ctx, http.MethodPost, "/task-templates", nil, in, &out)
	return out, err
}

func (h *HTTPBackend) UpdateTemplate(ctx context.Context, templateID int64, in TemplateInput) (model.TaskTemplate, error) {
	var out model.TaskTemplate
	err := h.do(ctx, http.MethodPatch, "/task-templates/"+id(templateID), nil, in, &out)
	return out, err
}

func (h *HTTPBackend) DeleteTemplate(ctx context.Context, templateID int64) error {
	return h.do(ctx, http.MethodDelete, "/task-templates/"+id(templateID), nil, nil, nil)
}

func (h *HTTPBackend) ListInvites(ctx context.Context) ([]model.InviteLink, error) {
	var out []model.InviteLink
	err := h.do(ctx, http.MethodGet, "/org/invite-links", nil, nil, &out)
	return out, err
}

func (h *HTTPBackend) CreateInvite(ctx context.Context, email string) (model.InviteLink, error) {
	var out model.InviteLink
	err := h.do(ctx, http.MethodPost, "/org/invite-links", nil, map[string]any{"email": email}, &out)
	return out, err
}

func (h *HTTPBackend) RegenerateInvite(ctx context.Context, email string) (model.InviteLink, error) {
	var out model.InviteLink
	err := h.do(ctx, http.MethodPost, "/org/invite-links/regenerate", nil, map[string]any{"email": email}, &out)
	return out, err
}

func (h *HTTPBackend) MetricsSummary(ctx context.Context, days int) ([]model.WorkflowMetrics, error) {
	var out []model.WorkflowMetrics
	err := h.do(ctx, http.MethodGet, "/org/metrics/workflows", url.Values{"days": {strconv.Itoa(days)}}, nil, &out)
	return out, err
}

func (h *HTTPBackend) WorkflowMetrics(ctx context.Context, workflowID int64, days int) (model.WorkflowMetricsDetail, error) {
	var out model.WorkflowMetricsDetail
	err := h.do(ctx, http.MethodGet, "/org/metrics/workflows/"+id(workflowID), url.Values{"days": {strconv.Itoa(days)}}, nil, &out)
	return out, err
}

func (h *HTTPBackend) RuleExecutions(ctx context.Context, ruleID int64, days, limit, offset int) (model.ExecutionsPage, error) {
	var out model.ExecutionsPage
	q := url.Values{
		"days":   {strconv.Itoa(days)},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	err := h.do(ctx, http.MethodGet, "/org/metrics/rules/"+id(ruleID)+"/executions", q, nil, &out)
	return out, err
}

var _ Backend = (*HTTPBackend)(nil)
