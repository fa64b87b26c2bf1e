package store

import (
	"context"
	"slices"
	"time"

	"scrumbringer-admin/internal/model"
)

// Execution outcomes and suppression reasons.
const (
	OutcomeApplied    = "applied"
	OutcomeSuppressed = "suppressed"

	ReasonIdempotent       = "idempotent"
	ReasonNotUserTriggered = "not_user_triggered"
	ReasonNotMatching      = "not_matching"
	ReasonInactive         = "inactive"
)

// RecordExecution stores one rule evaluation. The server's rule engine
// produces these; the local backend gets them from seeding.
func (b *Backend) RecordExecution(ctx context.Context, e model.RuleExecution) (model.RuleExecution, error) {
	err := b.write(ctx, func(q querier) error {
		if _, err := get[model.Rule](ctx, q, kindRule, idKey(e.RuleID)); err != nil {
			return err
		}
		id, err := nextID(ctx, q, kindExecution)
		if err != nil {
			return err
		}
		e.ID = id
		if e.CreatedAt.IsZero() {
			e.CreatedAt = b.now()
		}
		return b.put(ctx, q, kindExecution, idKey(id), id, e.RuleID, e)
	})
	return e, err
}

func (b *Backend) since(days int) (time.Time, error) {
	if days < 1 {
		return time.Time{}, invalid("days must be positive")
	}
	return b.now().Add(-time.Duration(days) * 24 * time.Hour), nil
}

// windowed returns the executions of ruleID newer than from, newest first.
func windowed(ctx context.Context, q querier, ruleID int64, from time.Time) ([]model.RuleExecution, error) {
	all, err := listByParent[model.RuleExecution](ctx, q, kindExecution, ruleID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if !e.CreatedAt.Before(from) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b model.RuleExecution) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out, nil
}

func ruleMetrics(r model.Rule, execs []model.RuleExecution) model.RuleMetrics {
	m := model.RuleMetrics{RuleID: r.ID, RuleName: r.Name, Evaluated: len(execs)}
	for _, e := range execs {
		if e.Outcome == OutcomeApplied {
			m.Applied++
			continue
		}
		switch e.SuppressionReason {
		case ReasonIdempotent:
			m.SuppressedIdempotent++
		case ReasonNotUserTriggered:
			m.SuppressedNotUserTriggered++
		case ReasonNotMatching:
			m.SuppressedNotMatching++
		case ReasonInactive:
			m.SuppressedInactive++
		}
	}
	return m
}

func (b *Backend) MetricsSummary(ctx context.Context, days int) ([]model.WorkflowMetrics, error) {
	from, err := b.since(days)
	if err != nil {
		return nil, err
	}
	out := []model.WorkflowMetrics{}
	err = b.read(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		workflows, err := listAll[model.Workflow](ctx, q, kindWorkflow)
		if err != nil {
			return err
		}
		for _, w := range workflows {
			d, err := detail(ctx, q, w, from)
			if err != nil {
				return err
			}
			row := model.WorkflowMetrics{WorkflowID: w.ID, WorkflowName: w.Name, RuleCount: len(d.Rules)}
			for _, r := range d.Rules {
				row.Evaluated += r.Evaluated
				row.Applied += r.Applied
				row.Suppressed += r.Evaluated - r.Applied
			}
			out = append(out, row)
		}
		return nil
	})
	return out, err
}

func detail(ctx context.Context, q querier, w model.Workflow, from time.Time) (model.WorkflowMetricsDetail, error) {
	d := model.WorkflowMetricsDetail{WorkflowID: w.ID, WorkflowName: w.Name, Rules: []model.RuleMetrics{}}
	rules, err := listByParent[model.Rule](ctx, q, kindRule, w.ID)
	if err != nil {
		return d, err
	}
	for _, r := range rules {
		execs, err := windowed(ctx, q, r.ID, from)
		if err != nil {
			return d, err
		}
		d.Rules = append(d.Rules, ruleMetrics(r, execs))
	}
	return d, nil
}

func (b *Backend) WorkflowMetrics(ctx context.Context, workflowID int64, days int) (model.WorkflowMetricsDetail, error) {
	from, err := b.since(days)
	if err != nil {
		return model.WorkflowMetricsDetail{}, err
	}
	var out model.WorkflowMetricsDetail
	err = b.read(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		w, err := get[model.Workflow](ctx, q, kindWorkflow, idKey(workflowID))
		if err != nil {
			return err
		}
		out, err = detail(ctx, q, w, from)
		return err
	})
	return out, err
}

// RuleExecutions returns one page of a rule's executions, newest first.
func (b *Backend) RuleExecutions(ctx context.Context, ruleID int64, days, limit, offset int) (model.ExecutionsPage, error) {
	from, err := b.since(days)
	if err != nil {
		return model.ExecutionsPage{}, err
	}
	if limit < 1 || offset < 0 {
		return model.ExecutionsPage{}, invalid("invalid page")
	}
	var out model.ExecutionsPage
	err = b.read(ctx, func(q querier) error {
		if _, err := requireAdmin(ctx, q); err != nil {
			return err
		}
		if _, err := get[model.Rule](ctx, q, kindRule, idKey(ruleID)); err != nil {
			return err
		}
		execs, err := windowed(ctx, q, ruleID, from)
		if err != nil {
			return err
		}
		lo := min(offset, len(execs))
		hi := min(lo+limit, len(execs))
		out = model.ExecutionsPage{
			RuleID:     ruleID,
			Executions: append([]model.RuleExecution{}, execs[lo:hi]...),
			Pagination: model.Pagination{Limit: limit, Offset: offset, Total: len(execs)},
		}
		return nil
	})
	return out, err
}
