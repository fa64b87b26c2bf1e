package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openTest(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(context.Background(), filepath.Join(t.TempDir(), "admin.sqlite"),
		WithClock(func() time.Time { return fixedNow }),
		WithBaseURL("https://sb.test/"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func seeded(t *testing.T) (*Backend, model.User) {
	t.Helper()
	b := openTest(t)
	admin, err := b.Seed(context.Background(), SeedOptions{Executions: 10})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return b, admin
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var ae *model.ApiError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ApiError %d, got %v", status, err)
	}
	if ae.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, ae.Status, ae.Message)
	}
}

func signIn(t *testing.T, b *Backend, email string) model.User {
	t.Helper()
	u, err := b.SignIn(context.Background(), email)
	if err != nil {
		t.Fatalf("SignIn %s: %v", email, err)
	}
	return u
}

func TestMe_WithoutSessionIsUnauthorized(t *testing.T) {
	b := openTest(t)
	_, err := b.Me(context.Background())
	wantStatus(t, err, 401)
	_, err = b.ListProjects(context.Background())
	wantStatus(t, err, 401)
}

func TestSeed_SignsInAdminAndRefusesTwice(t *testing.T) {
	b, admin := seeded(t)
	ctx := context.Background()
	me, err := b.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.ID != admin.ID || !me.IsOrgAdmin() {
		t.Fatalf("unexpected session user: %+v", me)
	}
	if _, err := b.Seed(ctx, SeedOptions{}); !errors.Is(err, ErrAlreadySeeded) {
		t.Fatalf("expected ErrAlreadySeeded, got %v", err)
	}

	if err := b.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	_, err = b.Me(ctx)
	wantStatus(t, err, 401)
}

func TestProjects_VisibilityAndRole(t *testing.T) {
	b, _ := seeded(t)
	ctx := context.Background()

	ps, err := b.ListProjects(ctx)
	if err != nil || len(ps) != 1 {
		t.Fatalf("ListProjects: %v %+v", err, ps)
	}
	if ps[0].MyRole != model.ProjectRoleManager || ps[0].MembersCount != 2 {
		t.Fatalf("unexpected project: %+v", ps[0])
	}

	signIn(t, b, "bob@example.com")
	ps, err = b.ListProjects(ctx)
	if err != nil || len(ps) != 0 {
		t.Fatalf("non-member should see no projects: %v %+v", err, ps)
	}
	_, err = b.CreateProject(ctx, "Nope")
	wantStatus(t, err, 403)
	_, err = b.ListCards(ctx, 1)
	wantStatus(t, err, 403)
}

func TestMembers_DuplicateAndLastManager(t *testing.T) {
	b, admin := seeded(t)
	ctx := context.Background()
	bob, err := userByEmail(ctx, b.db, "bob@example.com")
	if err != nil {
		t.Fatalf("lookup bob: %v", err)
	}

	_, err = b.AddMember(ctx, 1, 2, model.ProjectRoleMember)
	wantStatus(t, err, 409)

	_, err = b.UpdateMemberRole(ctx, 1, admin.ID, model.ProjectRoleMember)
	wantStatus(t, err, 422)
	err = b.RemoveMember(ctx, 1, admin.ID)
	wantStatus(t, err, 422)

	if _, err := b.AddMember(ctx, 1, bob.ID, model.ProjectRoleManager); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, err := b.UpdateMemberRole(ctx, 1, admin.ID, model.ProjectRoleMember); err != nil {
		t.Fatalf("demote with another manager: %v", err)
	}

	// A plain member cannot manage the project.
	signIn(t, b, "alice@example.com")
	err = b.RemoveMember(ctx, 1, bob.ID)
	wantStatus(t, err, 403)
}

func TestUserProjects_AdminOnly(t *testing.T) {
	b, _ := seeded(t)
	ctx := context.Background()

	ups, err := b.ListUserProjects(ctx, 2)
	if err != nil || len(ups) != 1 || ups[0].ProjectName != "Demo" {
		t.Fatalf("ListUserProjects: %v %+v", err, ups)
	}
	up, err := b.UpdateUserProjectRole(ctx, 2, 1, model.ProjectRoleManager)
	if err != nil || up.Role != model.ProjectRoleManager {
		t.Fatalf("UpdateUserProjectRole: %v %+v", err, up)
	}
	_, err = b.AddUserToProject(ctx, 2, 1, model.ProjectRoleMember)
	wantStatus(t, err, 409)

	signIn(t, b, "alice@example.com")
	_, err = b.ListUserProjects(ctx, 2)
	wantStatus(t, err, 403)
}

func TestOrgRole_LastAdmin(t *testing.T) {
	b, admin := seeded(t)
	ctx := context.Background()

	_, err := b.UpdateOrgRole(ctx, admin.ID, model.OrgRoleMember)
	wantStatus(t, err, 422)

	u, err := b.UpdateOrgRole(ctx, 2, model.OrgRoleAdmin)
	if err != nil || u.OrgRole != model.OrgRoleAdmin {
		t.Fatalf("promote: %v %+v", err, u)
	}
	if _, err := b.UpdateOrgRole(ctx, admin.ID, model.OrgRoleMember); err != nil {
		t.Fatalf("demote with another admin: %v", err)
	}
	// The former admin lost org permissions.
	_, err = b.UpdateOrgRole(ctx, 2, model.OrgRoleMember)
	wantStatus(t, err, 403)
}

func TestCards_DeleteWithTasksConflicts(t *testing.T) {
	b, _ := seeded(t)
	ctx := context.Background()

	cards, err := b.ListCards(ctx, 1)
	if err != nil || len(cards) != 3 {
		t.Fatalf("ListCards: %v %+v", err, cards)
	}
	busy := cards[1]
	if busy.TaskCount != 4 || busy.State != model.CardInProgress {
		t.Fatalf("unexpected seeded card: %+v", busy)
	}
	wantStatus(t, b.DeleteCard(ctx, busy.ID), 409)
	if err := b.DeleteCard(ctx, cards[0].ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	wantStatus(t, b.DeleteCard(ctx, cards[0].ID), 404)

	_, err = b.CreateCard(ctx, 1, api.CardInput{Title: "  "})
	wantStatus(t, err, 422)
}

func TestRules_AttachDetachAndTemplateRename(t *testing.T) {
	b, _ := seeded(t)
	ctx := context.Background()

	rules, err := b.ListRules(ctx, 1)
	if err != nil || len(rules) != 1 || len(rules[0].Templates) != 1 {
		t.Fatalf("ListRules: %v %+v", err, rules)
	}
	rule := rules[0]
	_, err = b.AttachTemplate(ctx, rule.ID, rule.Templates[0].TemplateID, 2)
	wantStatus(t, err, 409)

	r, err := b.AttachTemplate(ctx, rule.ID, 2, 0)
	wantStatus(t, err, 422)
	r, err = b.AttachTemplate(ctx, rule.ID, 2, 1)
	if err != nil || len(r.Templates) != 2 {
		t.Fatalf("AttachTemplate: %v %+v", err, r)
	}

	if _, err := b.UpdateTemplate(ctx, 2, api.TemplateInput{Name: "Peer review", TypeID: 2}); err != nil {
		t.Fatalf("UpdateTemplate: %v", err)
	}
	rules, _ = b.ListRules(ctx, 1)
	found := false
	for _, rt := range rules[0].Templates {
		if rt.TemplateID == 2 && rt.Name == "Peer review" {
			found = true
		}
	}
	if !found {
		t.Fatalf("attachment name not refreshed: %+v", rules[0].Templates)
	}

	if err := b.DeleteTemplate(ctx, 2); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	rules, _ = b.ListRules(ctx, 1)
	if len(rules[0].Templates) != 1 {
		t.Fatalf("deleted template still attached: %+v", rules[0].Templates)
	}
	_, err = b.DetachTemplate(ctx, rule.ID, 2)
	wantStatus(t, err, 404)
}

func TestWorkflows_ScopeAndRuleCount(t *testing.T) {
	b, _ := seeded(t)
	ctx := context.Background()
	pid := int64(1)

	org, err := b.ListWorkflows(ctx, nil)
	if err != nil || len(org) != 1 || org[0].RuleCount != 1 {
		t.Fatalf("org workflows: %v %+v", err, org)
	}
	proj, err := b.ListWorkflows(ctx, &pid)
	if err != nil || len(proj) != 1 || proj[0].ProjectID == nil {
		t.Fatalf("project workflows: %v %+v", err, proj)
	}

	_, err = b.CreateRule(ctx, org[0].ID, api.RuleInput{Name: "x", ResourceType: model.ResourceCard})
	wantStatus(t, err, 422)

	if err := b.DeleteWorkflow(ctx, org[0].ID); err != nil {
		t.Fatalf("DeleteWorkflow: %v", err)
	}
	_, err = b.ListRules(ctx, org[0].ID)
	wantStatus(t, err, 404)

	signIn(t, b, "alice@example.com")
	_, err = b.CreateWorkflow(ctx, api.WorkflowInput{Name: "org level"})
	wantStatus(t, err, 403)
}

func TestInvites_CreateRegenerate(t *testing.T) {
	b, _ := seeded(t)
	ctx := context.Background()

	links, err := b.ListInvites(ctx)
	if err != nil || len(links) != 2 {
		t.Fatalf("ListInvites: %v %+v", err, links)
	}
	first := links[0]
	if !strings.HasPrefix(first.URL, "https://sb.test/accept-invite?token=") || first.State != model.InviteActive {
		t.Fatalf("unexpected link: %+v", first)
	}

	again, err := b.RegenerateInvite(ctx, strings.ToUpper(first.Email))
	if err != nil {
		t.Fatalf("RegenerateInvite: %v", err)
	}
	if again.Token == first.Token || again.Email != first.Email {
		t.Fatalf("expected a new token for the same email: %+v", again)
	}
	links, _ = b.ListInvites(ctx)
	if len(links) != 2 {
		t.Fatalf("regenerate must not add a link: %+v", links)
	}

	_, err = b.CreateInvite(ctx, "alice@example.com")
	wantStatus(t, err, 409)
	_, err = b.CreateInvite(ctx, "nope")
	wantStatus(t, err, 422)
	_, err = b.RegenerateInvite(ctx, "ghost@example.com")
	wantStatus(t, err, 404)
}

func TestMetrics_WindowAndPaging(t *testing.T) {
	b, _ := seeded(t)
	ctx := context.Background()

	// Seeded executions are 6h apart, so 7 days cover all 10 per rule.
	sum, err := b.MetricsSummary(ctx, 7)
	if err != nil || len(sum) != 2 {
		t.Fatalf("MetricsSummary: %v %+v", err, sum)
	}
	if sum[0].Evaluated != 10 || sum[0].Applied != 4 || sum[0].Suppressed != 6 {
		t.Fatalf("unexpected summary row: %+v", sum[0])
	}

	d, err := b.WorkflowMetrics(ctx, sum[0].WorkflowID, 1)
	if err != nil || len(d.Rules) != 1 {
		t.Fatalf("WorkflowMetrics: %v %+v", err, d)
	}
	if d.Rules[0].Evaluated != 5 {
		t.Fatalf("1 day should keep 5 executions, got %+v", d.Rules[0])
	}

	page, err := b.RuleExecutions(ctx, 1, 30, 4, 8)
	if err != nil {
		t.Fatalf("RuleExecutions: %v", err)
	}
	if len(page.Executions) != 2 || page.Pagination.Total != 10 || page.Pagination.Offset != 8 {
		t.Fatalf("unexpected page: %+v", page.Pagination)
	}
	if !page.Executions[0].CreatedAt.After(page.Executions[1].CreatedAt) {
		t.Fatalf("executions should be newest first")
	}

	_, err = b.RuleExecutions(ctx, 1, 30, 0, 0)
	wantStatus(t, err, 422)
}
