package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/model"
)

var ErrAlreadySeeded = errors.New("database already has users")

type SeedOptions struct {
	AdminEmail string
	// Executions is the number of rule executions generated per rule.
	Executions int
}

// Seed fills an empty database with a demo organization and signs the admin
// in.
func (b *Backend) Seed(ctx context.Context, opts SeedOptions) (model.User, error) {
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@example.com"
	}
	if opts.Executions <= 0 {
		opts.Executions = 25
	}
	var users []model.User
	if err := b.read(ctx, func(q querier) error {
		var err error
		users, err = listAll[model.User](ctx, q, kindUser)
		return err
	}); err != nil {
		return model.User{}, err
	}
	if len(users) > 0 {
		return model.User{}, ErrAlreadySeeded
	}

	admin, err := b.AddUser(ctx, opts.AdminEmail, model.OrgRoleAdmin)
	if err != nil {
		return admin, err
	}
	alice, err := b.AddUser(ctx, "alice@example.com", model.OrgRoleMember)
	if err != nil {
		return admin, err
	}
	if _, err := b.AddUser(ctx, "bob@example.com", model.OrgRoleMember); err != nil {
		return admin, err
	}
	if _, err := b.SignIn(ctx, admin.Email); err != nil {
		return admin, err
	}

	step := func(what string, err error) error {
		if err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		return nil
	}

	proj, err := b.CreateProject(ctx, "Demo")
	if err := step("project", err); err != nil {
		return admin, err
	}
	_, err = b.AddMember(ctx, proj.ID, alice.ID, model.ProjectRoleMember)
	if err := step("member", err); err != nil {
		return admin, err
	}

	for i, title := range []string{"Onboarding", "Release 1.0", "Bug bash"} {
		c, err := b.CreateCard(ctx, proj.ID, api.CardInput{Title: title, Description: "Seeded card **" + title + "**"})
		if err := step("card", err); err != nil {
			return admin, err
		}
		if i == 1 {
			if err := step("card tasks", b.SetCardTasks(ctx, c.ID, 4, 1)); err != nil {
				return admin, err
			}
		}
	}

	tmpl, err := b.CreateTemplate(ctx, api.TemplateInput{Name: "Write release notes", TypeID: 1, Priority: 2})
	if err := step("template", err); err != nil {
		return admin, err
	}
	review, err := b.CreateTemplate(ctx, api.TemplateInput{ProjectID: &proj.ID, Name: "Code review", TypeID: 2})
	if err := step("template", err); err != nil {
		return admin, err
	}

	wf, err := b.CreateWorkflow(ctx, api.WorkflowInput{Name: "Release", Description: "Org-wide release flow", Active: true})
	if err := step("workflow", err); err != nil {
		return admin, err
	}
	pwf, err := b.CreateWorkflow(ctx, api.WorkflowInput{ProjectID: &proj.ID, Name: "Review", Active: true})
	if err := step("workflow", err); err != nil {
		return admin, err
	}

	onClose, err := b.CreateRule(ctx, wf.ID, api.RuleInput{Name: "Card closed", ResourceType: model.ResourceCard, ToState: "closed", Active: true})
	if err := step("rule", err); err != nil {
		return admin, err
	}
	_, err = b.AttachTemplate(ctx, onClose.ID, tmpl.ID, 1)
	if err := step("attach", err); err != nil {
		return admin, err
	}
	typeID := int64(2)
	onDone, err := b.CreateRule(ctx, pwf.ID, api.RuleInput{Name: "Task done", ResourceType: model.ResourceTask, TaskTypeID: &typeID, ToState: "done", Active: true})
	if err := step("rule", err); err != nil {
		return admin, err
	}
	_, err = b.AttachTemplate(ctx, onDone.ID, review.ID, 1)
	if err := step("attach", err); err != nil {
		return admin, err
	}

	reasons := []string{ReasonIdempotent, ReasonNotUserTriggered, ReasonNotMatching, ReasonInactive}
	now := b.now()
	for _, r := range []model.Rule{onClose, onDone} {
		for i := range opts.Executions {
			e := model.RuleExecution{
				RuleID:     r.ID,
				OriginType: string(r.ResourceType),
				OriginID:   int64(i + 1),
				Outcome:    OutcomeApplied,
				UserID:     admin.ID,
				UserEmail:  admin.Email,
				CreatedAt:  now.Add(-time.Duration(i) * 6 * time.Hour),
			}
			if i%3 != 0 {
				e.Outcome = OutcomeSuppressed
				e.SuppressionReason = reasons[i%len(reasons)]
			}
			if _, err := b.RecordExecution(ctx, e); err != nil {
				return admin, step("execution", err)
			}
		}
	}

	for _, email := range []string{"carol@example.com", "dave@example.com"} {
		_, err := b.CreateInvite(ctx, email)
		if err := step("invite", err); err != nil {
			return admin, err
		}
	}
	return admin, nil
}
