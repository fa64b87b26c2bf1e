package store

import (
	"context"
	"slices"
	"strings"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/model"
)

// scopeParent maps an optional project scope to the parent column; org-wide
// rows use 0.
func scopeParent(projectID *int64) int64 {
	if projectID == nil {
		return 0
	}
	return *projectID
}

// requireScope checks access to a project scope, or to the org scope when
// projectID is nil. Org scope mutations need an org admin.
func requireScope(ctx context.Context, q querier, projectID *int64, mutate bool) error {
	var err error
	switch {
	case projectID != nil && mutate:
		_, err = requireManager(ctx, q, *projectID)
	case projectID != nil:
		_, err = requireReader(ctx, q, *projectID)
	case mutate:
		_, err = requireAdmin(ctx, q)
	default:
		_, err = actor(ctx, q)
	}
	return err
}

func copyScope(projectID *int64) *int64 {
	if projectID == nil {
		return nil
	}
	v := *projectID
	return &v
}

func (b *Backend) ListWorkflows(ctx context.Context, projectID *int64) ([]model.Workflow, error) {
	var out []model.Workflow
	err := b.read(ctx, func(q querier) error {
		if err := requireScope(ctx, q, projectID, false); err != nil {
			return err
		}
		var err error
		out, err = listByParent[model.Workflow](ctx, q, kindWorkflow, scopeParent(projectID))
		if err != nil {
			return err
		}
		for i := range out {
			rules, err := listByParent[model.Rule](ctx, q, kindRule, out[i].ID)
			if err != nil {
				return err
			}
			out[i].RuleCount = len(rules)
		}
		return nil
	})
	return out, err
}

func (b *Backend) CreateWorkflow(ctx context.Context, in api.WorkflowInput) (model.Workflow, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Workflow{}, invalid("name is required")
	}
	var out model.Workflow
	err := b.write(ctx, func(q querier) error {
		if err := requireScope(ctx, q, in.ProjectID, true); err != nil {
			return err
		}
		id, err := nextID(ctx, q, kindWorkflow)
		if err != nil {
			return err
		}
		out = model.Workflow{
			ID:          id,
			OrgID:       orgID,
			ProjectID:   copyScope(in.ProjectID),
			Name:        in.Name,
			Description: in.Description,
			Active:      in.Active,
			CreatedAt:   b.now(),
		}
		return b.put(ctx, q, kindWorkflow, idKey(id), id, scopeParent(in.ProjectID), out)
	})
	return out, err
}

// UpdateWorkflow edits name, description and active flag. The scope of a
// workflow never changes.
func (b *Backend) UpdateWorkflow(ctx context.Context, id int64, in api.WorkflowInput) (model.Workflow, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Workflow{}, invalid("name is required")
	}
	var out model.Workflow
	err := b.write(ctx, func(q querier) error {
		w, err := get[model.Workflow](ctx, q, kindWorkflow, idKey(id))
		if err != nil {
			return err
		}
		if err := requireScope(ctx, q, w.ProjectID, true); err != nil {
			return err
		}
		w.Name = in.Name
		w.Description = in.Description
		w.Active = in.Active
		if err := b.put(ctx, q, kindWorkflow, idKey(id), id, scopeParent(w.ProjectID), w); err != nil {
			return err
		}
		rules, err := listByParent[model.Rule](ctx, q, kindRule, id)
		w.RuleCount = len(rules)
		out = w
		return err
	})
	return out, err
}

func (b *Backend) DeleteWorkflow(ctx context.Context, id int64) error {
	return b.write(ctx, func(q querier) error {
		w, err := get[model.Workflow](ctx, q, kindWorkflow, idKey(id))
		if err != nil {
			return err
		}
		if err := requireScope(ctx, q, w.ProjectID, true); err != nil {
			return err
		}
		if err := removeByParent(ctx, q, kindRule, id); err != nil {
			return err
		}
		return remove(ctx, q, kindWorkflow, idKey(id))
	})
}

// workflowOf loads the workflow a rule belongs to and checks access to it.
func workflowOf(ctx context.Context, q querier, workflowID int64, mutate bool) (model.Workflow, error) {
	w, err := get[model.Workflow](ctx, q, kindWorkflow, idKey(workflowID))
	if err != nil {
		return w, err
	}
	return w, requireScope(ctx, q, w.ProjectID, mutate)
}

func validateRule(in api.RuleInput) (api.RuleInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ToState = strings.TrimSpace(in.ToState)
	if in.Name == "" {
		return in, invalid("name is required")
	}
	if in.ToState == "" {
		return in, invalid("target state is required")
	}
	switch in.ResourceType {
	case model.ResourceTask:
	case model.ResourceCard:
		in.TaskTypeID = nil
	default:
		return in, invalid("unknown resource type")
	}
	return in, nil
}

func (b *Backend) ListRules(ctx context.Context, workflowID int64) ([]model.Rule, error) {
	var out []model.Rule
	err := b.read(ctx, func(q querier) error {
		if _, err := workflowOf(ctx, q, workflowID, false); err != nil {
			return err
		}
		var err error
		out, err = listByParent[model.Rule](ctx, q, kindRule, workflowID)
		return err
	})
	return out, err
}

func (b *Backend) CreateRule(ctx context.Context, workflowID int64, in api.RuleInput) (model.Rule, error) {
	in, err := validateRule(in)
	if err != nil {
		return model.Rule{}, err
	}
	var out model.Rule
	err = b.write(ctx, func(q querier) error {
		if _, err := workflowOf(ctx, q, workflowID, true); err != nil {
			return err
		}
		id, err := nextID(ctx, q, kindRule)
		if err != nil {
			return err
		}
		out = model.Rule{
			ID:           id,
			WorkflowID:   workflowID,
			Name:         in.Name,
			Goal:         in.Goal,
			ResourceType: in.ResourceType,
			TaskTypeID:   copyScope(in.TaskTypeID),
			ToState:      in.ToState,
			Active:       in.Active,
			CreatedAt:    b.now(),
		}
		return b.put(ctx, q, kindRule, idKey(id), id, workflowID, out)
	})
	return out, err
}

func (b *Backend) UpdateRule(ctx context.Context, id int64, in api.RuleInput) (model.Rule, error) {
	in, err := validateRule(in)
	if err != nil {
		return model.Rule{}, err
	}
	var out model.Rule
	err = b.write(ctx, func(q querier) error {
		r, err := get[model.Rule](ctx, q, kindRule, idKey(id))
		if err != nil {
			return err
		}
		if _, err := workflowOf(ctx, q, r.WorkflowID, true); err != nil {
			return err
		}
		r.Name = in.Name
		r.Goal = in.Goal
		r.ResourceType = in.ResourceType
		r.TaskTypeID = copyScope(in.TaskTypeID)
		r.ToState = in.ToState
		r.Active = in.Active
		out = r
		return b.put(ctx, q, kindRule, idKey(id), id, r.WorkflowID, r)
	})
	return out, err
}

func (b *Backend) DeleteRule(ctx context.Context, id int64) error {
	return b.write(ctx, func(q querier) error {
		r, err := get[model.Rule](ctx, q, kindRule, idKey(id))
		if err != nil {
			return err
		}
		if _, err := workflowOf(ctx, q, r.WorkflowID, true); err != nil {
			return err
		}
		return remove(ctx, q, kindRule, idKey(id))
	})
}

// AttachTemplate adds a template to a rule at the given execution order.
func (b *Backend) AttachTemplate(ctx context.Context, ruleID, templateID int64, order int) (model.Rule, error) {
	if order < 1 {
		return model.Rule{}, invalid("execution order must be positive")
	}
	var out model.Rule
	err := b.write(ctx, func(q querier) error {
		r, err := get[model.Rule](ctx, q, kindRule, idKey(ruleID))
		if err != nil {
			return err
		}
		if _, err := workflowOf(ctx, q, r.WorkflowID, true); err != nil {
			return err
		}
		t, err := get[model.TaskTemplate](ctx, q, kindTemplate, idKey(templateID))
		if err != nil {
			return err
		}
		if slices.ContainsFunc(r.Templates, func(x model.RuleTemplate) bool { return x.TemplateID == templateID }) {
			return conflict("already_attached", "template is already attached")
		}
		r.Templates = append(r.Templates, model.RuleTemplate{TemplateID: t.ID, Name: t.Name, ExecutionOrder: order})
		slices.SortStableFunc(r.Templates, func(a, b model.RuleTemplate) int { return a.ExecutionOrder - b.ExecutionOrder })
		out = r
		return b.put(ctx, q, kindRule, idKey(ruleID), ruleID, r.WorkflowID, r)
	})
	return out, err
}

func (b *Backend) DetachTemplate(ctx context.Context, ruleID, templateID int64) (model.Rule, error) {
	var out model.Rule
	err := b.write(ctx, func(q querier) error {
		r, err := get[model.Rule](ctx, q, kindRule, idKey(ruleID))
		if err != nil {
			return err
		}
		if _, err := workflowOf(ctx, q, r.WorkflowID, true); err != nil {
			return err
		}
		n := len(r.Templates)
		r.Templates = slices.DeleteFunc(r.Templates, func(x model.RuleTemplate) bool { return x.TemplateID == templateID })
		if len(r.Templates) == n {
			return notFound("attached template")
		}
		out = r
		return b.put(ctx, q, kindRule, idKey(ruleID), ruleID, r.WorkflowID, r)
	})
	return out, err
}

func validateTemplate(in api.TemplateInput) (api.TemplateInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("name is required")
	}
	if in.TypeID <= 0 {
		return in, invalid("type is required")
	}
	if in.Priority == 0 {
		in.Priority = 3
	}
	if in.Priority < 1 || in.Priority > 5 {
		return in, invalid("priority must be between 1 and 5")
	}
	return in, nil
}

func (b *Backend) ListTemplates(ctx context.Context, projectID *int64) ([]model.TaskTemplate, error) {
	var out []model.TaskTemplate
	err := b.read(ctx, func(q querier) error {
		if err := requireScope(ctx, q, projectID, false); err != nil {
			return err
		}
		var err error
		out, err = listByParent[model.TaskTemplate](ctx, q, kindTemplate, scopeParent(projectID))
		return err
	})
	return out, err
}

func (b *Backend) CreateTemplate(ctx context.Context, in api.TemplateInput) (model.TaskTemplate, error) {
	in, err := validateTemplate(in)
	if err != nil {
		return model.TaskTemplate{}, err
	}
	var out model.TaskTemplate
	err = b.write(ctx, func(q querier) error {
		if err := requireScope(ctx, q, in.ProjectID, true); err != nil {
			return err
		}
		id, err := nextID(ctx, q, kindTemplate)
		if err != nil {
			return err
		}
		out = model.TaskTemplate{
			ID:          id,
			OrgID:       orgID,
			ProjectID:   copyScope(in.ProjectID),
			Name:        in.Name,
			Description: in.Description,
			TypeID:      in.TypeID,
			Priority:    in.Priority,
			CreatedAt:   b.now(),
		}
		return b.put(ctx, q, kindTemplate, idKey(id), id, scopeParent(in.ProjectID), out)
	})
	return out, err
}

// UpdateTemplate also refreshes the template name on every rule it is
// attached to.
func (b *Backend) UpdateTemplate(ctx context.Context, id int64, in api.TemplateInput) (model.TaskTemplate, error) {
	in, err := validateTemplate(in)
	if err != nil {
		return model.TaskTemplate{}, err
	}
	var out model.TaskTemplate
	err = b.write(ctx, func(q querier) error {
		t, err := get[model.TaskTemplate](ctx, q, kindTemplate, idKey(id))
		if err != nil {
			return err
		}
		if err := requireScope(ctx, q, t.ProjectID, true); err != nil {
			return err
		}
		t.Name = in.Name
		t.Description = in.Description
		t.TypeID = in.TypeID
		t.Priority = in.Priority
		out = t
		if err := b.put(ctx, q, kindTemplate, idKey(id), id, scopeParent(t.ProjectID), t); err != nil {
			return err
		}
		return b.rewriteAttachments(ctx, q, id, func(rt *model.RuleTemplate) bool {
			rt.Name = t.Name
			return true
		})
	})
	return out, err
}

// DeleteTemplate detaches the template from every rule before removing it.
func (b *Backend) DeleteTemplate(ctx context.Context, id int64) error {
	return b.write(ctx, func(q querier) error {
		t, err := get[model.TaskTemplate](ctx, q, kindTemplate, idKey(id))
		if err != nil {
			return err
		}
		if err := requireScope(ctx, q, t.ProjectID, true); err != nil {
			return err
		}
		if err := b.rewriteAttachments(ctx, q, id, func(*model.RuleTemplate) bool { return false }); err != nil {
			return err
		}
		return remove(ctx, q, kindTemplate, idKey(id))
	})
}

// rewriteAttachments applies fn to every attachment of templateID; fn
// returning false drops the attachment.
func (b *Backend) rewriteAttachments(ctx context.Context, q querier, templateID int64, fn func(*model.RuleTemplate) bool) error {
	rules, err := listAll[model.Rule](ctx, q, kindRule)
	if err != nil {
		return err
	}
	for _, r := range rules {
		changed := false
		kept := r.Templates[:0]
		for _, rt := range r.Templates {
			if rt.TemplateID == templateID {
				changed = true
				if !fn(&rt) {
					continue
				}
			}
			kept = append(kept, rt)
		}
		if !changed {
			continue
		}
		r.Templates = kept
		if err := b.put(ctx, q, kindRule, idKey(r.ID), r.ID, r.WorkflowID, r); err != nil {
			return err
		}
	}
	return nil
}
