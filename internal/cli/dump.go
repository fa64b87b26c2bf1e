package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/model"

	"github.com/spf13/cobra"
)

type dumpFlags struct {
	project  int64
	workflow int64
	rule     int64
	user     int64
	days     int
	limit    int
	offset   int
}

// fetch performs req through the runner so dumps log like the TUI does.
func fetch[T any](ctx context.Context, env *Env, req api.Request[T]) (any, error) {
	msgs := env.Runner.Resolve(ctx, effect.Call[T]{
		Request: req,
		Wrap:    func(r api.Result[T]) effect.Msg { return r },
	})
	if len(msgs) != 1 {
		return nil, fmt.Errorf("%s: no result", req.Op())
	}
	r := msgs[0].(api.Result[T])
	if !r.OK() {
		return nil, r.Err
	}
	return r.Value, nil
}

func projectScope(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

var dumpKinds = map[string]func(ctx context.Context, env *Env, f dumpFlags) (any, error){
	"me": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		return fetch[model.User](ctx, env, api.FetchMe{})
	},
	"projects": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		return fetch[[]model.Project](ctx, env, api.ListProjects{})
	},
	"members": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		if f.project == 0 {
			return nil, errors.New("members: --project is required")
		}
		return fetch[[]model.ProjectMember](ctx, env, api.ListMembers{ProjectID: f.project})
	},
	"cards": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		if f.project == 0 {
			return nil, errors.New("cards: --project is required")
		}
		return fetch[[]model.Card](ctx, env, api.ListCards{ProjectID: f.project})
	},
	"workflows": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		return fetch[[]model.Workflow](ctx, env, api.ListWorkflows{ProjectID: projectScope(f.project)})
	},
	"rules": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		if f.workflow == 0 {
			return nil, errors.New("rules: --workflow is required")
		}
		return fetch[[]model.Rule](ctx, env, api.ListRules{WorkflowID: f.workflow})
	},
	"templates": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		return fetch[[]model.TaskTemplate](ctx, env, api.ListTemplates{ProjectID: projectScope(f.project)})
	},
	"org-users": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		return fetch[[]model.OrgUser](ctx, env, api.ListOrgUsers{})
	},
	"user-projects": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		if f.user == 0 {
			return nil, errors.New("user-projects: --user is required")
		}
		return fetch[[]model.UserProject](ctx, env, api.ListUserProjects{UserID: f.user})
	},
	"invites": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		return fetch[[]model.InviteLink](ctx, env, api.ListInvites{})
	},
	"metrics": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		if f.workflow != 0 {
			return fetch[model.WorkflowMetricsDetail](ctx, env, api.WorkflowMetrics{WorkflowID: f.workflow, Days: f.days})
		}
		return fetch[[]model.WorkflowMetrics](ctx, env, api.MetricsSummary{Days: f.days})
	},
	"executions": func(ctx context.Context, env *Env, f dumpFlags) (any, error) {
		if f.rule == 0 {
			return nil, errors.New("executions: --rule is required")
		}
		return fetch[model.ExecutionsPage](ctx, env, api.RuleExecutions{RuleID: f.rule, Days: f.days, Limit: f.limit, Offset: f.offset})
	},
}

func dumpKindNames() []string {
	out := make([]string, 0, len(dumpKinds))
	for k := range dumpKinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newDumpCmd(a *App) *cobra.Command {
	var f dumpFlags
	cmd := &cobra.Command{
		Use:       "dump <kind>",
		Short:     "Print a collection from the configured backend (" + strings.Join(dumpKindNames(), "|") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: dumpKindNames(),
		Example: strings.TrimSpace(`
  sbadmin dump projects
  sbadmin dump cards --project 1 --format yaml
  sbadmin dump executions --rule 3 --days 7 --limit 20
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, ok := dumpKinds[strings.ToLower(strings.TrimSpace(args[0]))]
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown kind %q (known: %s)", args[0], strings.Join(dumpKindNames(), ", ")))
			}
			env, err := resolve(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer env.Close()
			if f.days == 0 {
				f.days = env.Options.Settings.MetricsDays
			}
			if f.limit == 0 {
				f.limit = env.Options.Settings.ExecutionsPageSize
			}
			v, err := run(cmd.Context(), env, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, v)
		},
	}
	cmd.Flags().Int64Var(&f.project, "project", 0, "Project id (cards, members; scopes workflows/templates)")
	cmd.Flags().Int64Var(&f.workflow, "workflow", 0, "Workflow id (rules; detail for metrics)")
	cmd.Flags().Int64Var(&f.rule, "rule", 0, "Rule id (executions)")
	cmd.Flags().Int64Var(&f.user, "user", 0, "User id (user-projects)")
	cmd.Flags().IntVar(&f.days, "days", 0, "Metrics window in days (default: config metricsDays)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Executions page size (default: config executionsPageSize)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Executions page offset")
	return cmd
}
