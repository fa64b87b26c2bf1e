// Package metrics shows rule execution metrics: a per-workflow summary, one
// expandable workflow row with per-rule numbers and a paginated executions
// overlay for a single rule.
package metrics

import (
	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/paging"
	"scrumbringer-admin/internal/remote"
)

// Windows are the selectable summary windows in days.
var Windows = []int{7, 30, 90}

func validWindow(days int) bool {
	for _, d := range Windows {
		if d == days {
			return true
		}
	}
	return false
}

// Executions is the drill-down overlay for one rule.
type Executions struct {
	RuleID   int64
	RuleName string
	Offset   int
	Page     remote.Value[model.ExecutionsPage]
}

type State struct {
	Days    int
	Summary remote.Value[[]model.WorkflowMetrics]

	// Expanded is the workflow whose rule rows are shown; 0 means none.
	Expanded int64
	Detail   remote.Value[model.WorkflowMetricsDetail]

	Executions *Executions
}

type Msg interface{ metricsMsg() }

type (
	Load          struct{}
	SetDays       struct{ Days int }
	SummaryLoaded struct {
		Days   int
		Result api.Result[[]model.WorkflowMetrics]
	}
	Toggle       struct{ WorkflowID int64 }
	DetailLoaded struct {
		WorkflowID int64
		Result     api.Result[model.WorkflowMetricsDetail]
	}
	OpenExecutions struct {
		RuleID   int64
		RuleName string
	}
	ExecutionsLoaded struct {
		RuleID int64
		Offset int
		Result api.Result[model.ExecutionsPage]
	}
	FirstPage       struct{}
	PrevPage        struct{}
	NextPage        struct{}
	LastPage        struct{}
	CloseExecutions struct{}
)

func (Load) metricsMsg()             {}
func (SetDays) metricsMsg()          {}
func (SummaryLoaded) metricsMsg()    {}
func (Toggle) metricsMsg()           {}
func (DetailLoaded) metricsMsg()     {}
func (OpenExecutions) metricsMsg()   {}
func (ExecutionsLoaded) metricsMsg() {}
func (FirstPage) metricsMsg()        {}
func (PrevPage) metricsMsg()         {}
func (NextPage) metricsMsg()         {}
func (LastPage) metricsMsg()         {}
func (CloseExecutions) metricsMsg()  {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		if !validWindow(s.Days) {
			s.Days = env.Settings.MetricsDays
			if !validWindow(s.Days) {
				s.Days = 30
			}
		}
		return fetchSummary(s)

	case SetDays:
		if !validWindow(msg.Days) || msg.Days == s.Days {
			return s, effect.None{}
		}
		s.Days = msg.Days
		return fetchSummary(s)

	case SummaryLoaded:
		if msg.Days != s.Days {
			return s, unauthorizedOnly(msg.Result.Err)
		}
		var eff effect.Effect
		s.Summary, eff = feature.Fetched(msg.Result)
		return s, eff

	case Toggle:
		if s.Expanded == msg.WorkflowID {
			s.Expanded = 0
			s.Detail = remote.NewNotAsked[model.WorkflowMetricsDetail]()
			return s, effect.None{}
		}
		s.Expanded = msg.WorkflowID
		s.Detail = remote.NewLoading[model.WorkflowMetricsDetail]()
		wid := msg.WorkflowID
		return s, feature.Fetch(api.WorkflowMetrics{WorkflowID: wid, Days: s.Days}, func(r api.Result[model.WorkflowMetricsDetail]) effect.Msg {
			return DetailLoaded{WorkflowID: wid, Result: r}
		})

	case DetailLoaded:
		if msg.WorkflowID != s.Expanded {
			return s, unauthorizedOnly(msg.Result.Err)
		}
		var eff effect.Effect
		s.Detail, eff = feature.Fetched(msg.Result)
		return s, eff

	case OpenExecutions:
		s.Executions = &Executions{RuleID: msg.RuleID, RuleName: msg.RuleName}
		return fetchPage(env, s, 0)

	case ExecutionsLoaded:
		x := s.Executions
		if x == nil || x.RuleID != msg.RuleID || x.Offset != msg.Offset {
			return s, unauthorizedOnly(msg.Result.Err)
		}
		next := *x
		var eff effect.Effect
		next.Page, eff = feature.Fetched(msg.Result)
		s.Executions = &next
		return s, eff

	case FirstPage, PrevPage, NextPage, LastPage:
		p, ok := s.Pager()
		if !ok {
			return s, effect.None{}
		}
		var off int
		switch msg.(type) {
		case FirstPage:
			off = p.FirstOffset()
		case PrevPage:
			off = p.PrevOffset()
		case NextPage:
			off = p.NextOffset()
		case LastPage:
			off = p.LastOffset()
		}
		if off == s.Executions.Offset {
			return s, effect.None{}
		}
		return fetchPage(env, s, off)

	case CloseExecutions:
		s.Executions = nil
		return s, effect.None{}
	}
	return s, effect.None{}
}

func fetchSummary(s State) (State, effect.Effect) {
	s.Summary = remote.NewLoading[[]model.WorkflowMetrics]()
	s.Expanded = 0
	s.Detail = remote.NewNotAsked[model.WorkflowMetricsDetail]()
	days := s.Days
	return s, feature.Fetch(api.MetricsSummary{Days: days}, func(r api.Result[[]model.WorkflowMetrics]) effect.Msg {
		return SummaryLoaded{Days: days, Result: r}
	})
}

// fetchPage always refetches; pages are never cached.
func fetchPage(env feature.Env, s State, offset int) (State, effect.Effect) {
	next := *s.Executions
	next.Offset = offset
	next.Page = remote.NewLoading[model.ExecutionsPage]()
	s.Executions = &next

	limit := env.Settings.ExecutionsPageSize
	if limit <= 0 {
		limit = 10
	}
	rid := next.RuleID
	return s, feature.Fetch(api.RuleExecutions{RuleID: rid, Days: s.Days, Limit: limit, Offset: offset}, func(r api.Result[model.ExecutionsPage]) effect.Msg {
		return ExecutionsLoaded{RuleID: rid, Offset: offset, Result: r}
	})
}

func unauthorizedOnly(err *model.ApiError) effect.Effect {
	if feature.IsUnauthorized(err) {
		return effect.ResetSession{}
	}
	return effect.None{}
}

// Pager returns the pagination of the loaded executions page.
func (s State) Pager() (paging.Page, bool) {
	if s.Executions == nil {
		return paging.Page{}, false
	}
	pg, ok := s.Executions.Page.Get()
	if !ok {
		return paging.Page{}, false
	}
	return paging.Page{Limit: pg.Pagination.Limit, Offset: pg.Pagination.Offset, Total: pg.Pagination.Total}, true
}
