package model

import (
	"fmt"
	"time"
)

type OrgRole string

const (
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
)

type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "manager"
	ProjectRoleMember  ProjectRole = "member"
)

// User is the authenticated session user.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	OrgID     int64     `json:"orgId"`
	OrgRole   OrgRole   `json:"orgRole"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) IsOrgAdmin() bool { return u.OrgRole == OrgRoleAdmin }

type OrgUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	OrgRole   OrgRole   `json:"orgRole"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u OrgUser) Key() int64 { return u.ID }

// FallbackOrgUser builds the placeholder shown when a user id is not present
// in the org users cache.
func FallbackOrgUser(id int64) OrgUser {
	return OrgUser{ID: id, Email: fmt.Sprintf("User #%d", id), OrgRole: OrgRoleMember}
}

// FindOrgUser looks id up in users, falling back to FallbackOrgUser.
// The second return value reports whether the record was real.
func FindOrgUser(users []OrgUser, id int64) (OrgUser, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return FallbackOrgUser(id), false
}

type Project struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	MyRole       ProjectRole `json:"myRole"`
	MembersCount int         `json:"membersCount"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (p Project) Key() int64 { return p.ID }

type ProjectMember struct {
	UserID    int64       `json:"userId"`
	ProjectID int64       `json:"projectId"`
	Role      ProjectRole `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (m ProjectMember) Key() int64 { return m.UserID }

// UserProject is a project membership seen from the user side.
type UserProject struct {
	ProjectID   int64       `json:"projectId"`
	ProjectName string      `json:"projectName"`
	Role        ProjectRole `json:"role"`
}

func (p UserProject) Key() int64 { return p.ProjectID }

type CardState string

const (
	CardPending    CardState = "pending"
	CardInProgress CardState = "in_progress"
	CardClosed     CardState = "closed"
)

type Card struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"projectId"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Color          string    `json:"color,omitempty"`
	State          CardState `json:"state"`
	TaskCount      int       `json:"taskCount"`
	CompletedCount int       `json:"completedCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (c Card) Key() int64 { return c.ID }

type Workflow struct {
	ID          int64     `json:"id"`
	OrgID       int64     `json:"orgId"`
	ProjectID   *int64    `json:"projectId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	RuleCount   int       `json:"ruleCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (w Workflow) Key() int64 { return w.ID }

type ResourceType string

const (
	ResourceTask ResourceType = "task"
	ResourceCard ResourceType = "card"
)

// RuleTemplate is a task template attached to a rule.
type RuleTemplate struct {
	TemplateID     int64  `json:"templateId"`
	Name           string `json:"name"`
	ExecutionOrder int    `json:"executionOrder"`
}

type Rule struct {
	ID           int64          `json:"id"`
	WorkflowID   int64          `json:"workflowId"`
	Name         string         `json:"name"`
	Goal         string         `json:"goal,omitempty"`
	ResourceType ResourceType   `json:"resourceType"`
	TaskTypeID   *int64         `json:"taskTypeId,omitempty"`
	ToState      string         `json:"toState"`
	Active       bool           `json:"active"`
	Templates    []RuleTemplate `json:"templates,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (r Rule) Key() int64 { return r.ID }

type TaskTemplate struct {
	ID          int64     `json:"id"`
	OrgID       int64     `json:"orgId"`
	ProjectID   *int64    `json:"projectId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TypeID      int64     `json:"typeId"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t TaskTemplate) Key() int64 { return t.ID }

type InviteState string

const (
	InviteActive      InviteState = "active"
	InviteUsed        InviteState = "used"
	InviteInvalidated InviteState = "invalidated"
)

type InviteLink struct {
	Email     string      `json:"email"`
	Token     string      `json:"token"`
	URL       string      `json:"url"`
	State     InviteState `json:"state"`
	CreatedAt time.Time   `json:"createdAt"`
	UsedAt    *time.Time  `json:"usedAt,omitempty"`
}

// WorkflowMetrics is one row of the metrics summary table.
type WorkflowMetrics struct {
	WorkflowID   int64  `json:"workflowId"`
	WorkflowName string `json:"workflowName"`
	RuleCount    int    `json:"ruleCount"`
	Evaluated    int    `json:"evaluated"`
	Applied      int    `json:"applied"`
	Suppressed   int    `json:"suppressed"`
}

type RuleMetrics struct {
	RuleID                     int64  `json:"ruleId"`
	RuleName                   string `json:"ruleName"`
	Evaluated                  int    `json:"evaluated"`
	Applied                    int    `json:"applied"`
	SuppressedIdempotent       int    `json:"suppressedIdempotent"`
	SuppressedNotUserTriggered int    `json:"suppressedNotUserTriggered"`
	SuppressedNotMatching      int    `json:"suppressedNotMatching"`
	SuppressedInactive         int    `json:"suppressedInactive"`
}

type WorkflowMetricsDetail struct {
	WorkflowID   int64         `json:"workflowId"`
	WorkflowName string        `json:"workflowName"`
	Rules        []RuleMetrics `json:"rules"`
}

type RuleExecution struct {
	ID                int64     `json:"id"`
	RuleID            int64     `json:"ruleId"`
	OriginType        string    `json:"originType"`
	OriginID          int64     `json:"originId"`
	Outcome           string    `json:"outcome"`
	SuppressionReason string    `json:"suppressionReason,omitempty"`
	UserID            int64     `json:"userId"`
	UserEmail         string    `json:"userEmail"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type ExecutionsPage struct {
	RuleID     int64           `json:"ruleId"`
	Executions []RuleExecution `json:"executions"`
	Pagination Pagination      `json:"pagination"`
}
