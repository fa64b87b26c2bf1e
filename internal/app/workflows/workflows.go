// Package workflows manages workflows, the rules of the selected workflow and
// the task templates attached to each rule.
//
// Workflows are project-scoped while a project is selected and org-scoped
// otherwise. Three independent dialogs exist: one for workflows, one for
// rules and one for attaching a template to a rule.
package workflows

import (
	"strings"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/dialog"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/reconcile"
	"scrumbringer-admin/internal/remote"
)

type Draft struct {
	Name        string
	Description string
	Active      bool
}

func draftFrom(w model.Workflow) Draft {
	return Draft{Name: w.Name, Description: w.Description, Active: w.Active}
}

type RuleDraft struct {
	Name         string
	Goal         string
	ResourceType model.ResourceType
	TaskTypeID   *int64
	ToState      string
	Active       bool
}

func ruleDraftFrom(r model.Rule) RuleDraft {
	return RuleDraft{
		Name:         r.Name,
		Goal:         r.Goal,
		ResourceType: r.ResourceType,
		TaskTypeID:   r.TaskTypeID,
		ToState:      r.ToState,
		Active:       r.Active,
	}
}

func (d RuleDraft) input() api.RuleInput {
	rt := d.ResourceType
	if rt == "" {
		rt = model.ResourceTask
	}
	return api.RuleInput{
		Name:         strings.TrimSpace(d.Name),
		Goal:         strings.TrimSpace(d.Goal),
		ResourceType: rt,
		TaskTypeID:   d.TaskTypeID,
		ToState:      strings.TrimSpace(d.ToState),
		Active:       d.Active,
	}
}

// Attach is the "attach template to rule" dialog.
type Attach struct {
	Rule       *model.Rule
	TemplateID int64
	Order      int
}

type State struct {
	// Scope is the project the list was fetched for; nil means org-wide.
	Scope     *int64
	Workflows remote.Value[[]model.Workflow]
	Dialog    dialog.Mode[model.Workflow]
	Draft     Draft
	Submit    feature.Submission

	Toggle   feature.Submission
	Toggling int64

	SelectedID int64
	Rules      remote.Value[[]model.Rule]
	RuleDialog dialog.Mode[model.Rule]
	RuleDraft  RuleDraft
	RuleSubmit feature.Submission

	Attach       Attach
	AttachSubmit feature.Submission
}

type Msg interface{ workflowsMsg() }

// Workflow list and dialog.
type (
	Load   struct{}
	Loaded struct {
		Scope  *int64
		Result api.Result[[]model.Workflow]
	}
	OpenCreate   struct{}
	OpenEdit     struct{ Workflow model.Workflow }
	OpenDelete   struct{ Workflow model.Workflow }
	Close        struct{}
	NameInput    struct{ Value string }
	DescInput    struct{ Value string }
	ActiveInput  struct{ Value bool }
	Submit       struct{}
	// Mutation results carry the scope they were submitted in.
	Created struct {
		Scope  *int64
		Result api.Result[model.Workflow]
	}
	Updated struct {
		Scope  *int64
		Result api.Result[model.Workflow]
	}
	Deleted struct {
		Scope *int64
		ID    int64
		Err   *model.ApiError
	}
	ToggleActive struct{ Workflow model.Workflow }
	Toggled      struct {
		Scope  *int64
		ID     int64
		Result api.Result[model.Workflow]
	}
)

// Rules of the selected workflow.
type (
	SelectWorkflow struct{ ID int64 }
	Deselect       struct{}
	RulesLoaded    struct {
		WorkflowID int64
		Result     api.Result[[]model.Rule]
	}
	OpenCreateRule    struct{}
	OpenEditRule      struct{ Rule model.Rule }
	OpenDeleteRule    struct{ Rule model.Rule }
	CloseRule         struct{}
	RuleNameInput     struct{ Value string }
	RuleGoalInput     struct{ Value string }
	RuleResourceInput struct{ Value model.ResourceType }
	RuleTaskTypeInput struct{ Value *int64 }
	RuleStateInput    struct{ Value string }
	RuleActiveInput   struct{ Value bool }
	SubmitRule        struct{}
	RuleCreated       struct {
		WorkflowID int64
		Result     api.Result[model.Rule]
	}
	// Rule results carry the workflow that was selected on submit.
	RuleUpdated struct {
		WorkflowID int64
		Result     api.Result[model.Rule]
	}
	RuleDeleted struct {
		WorkflowID int64
		ID         int64
		Err        *model.ApiError
	}
)

// Template attachment.
type (
	OpenAttach          struct{ Rule model.Rule }
	CloseAttach         struct{}
	AttachTemplateInput struct{ TemplateID int64 }
	AttachOrderInput    struct{ Order int }
	SubmitAttach        struct{}
	TemplateAttached    struct {
		WorkflowID int64
		Result     api.Result[model.Rule]
	}
	Detach struct {
		RuleID     int64
		TemplateID int64
	}
	TemplateDetached struct {
		WorkflowID int64
		Result     api.Result[model.Rule]
	}
)

// EventKind is what a self-contained CRUD component reports back.
type EventKind int

const (
	EventCreated EventKind = iota
	EventUpdated
	EventDeleted
	EventCloseRequested
)

// WorkflowEvent and RuleEvent come from the CRUD component; they reconcile
// the cached lists without an API call.
type (
	WorkflowEvent struct {
		Kind     EventKind
		Workflow model.Workflow
	}
	RuleEvent struct {
		Kind EventKind
		Rule model.Rule
	}
)

func (Load) workflowsMsg()                {}
func (Loaded) workflowsMsg()              {}
func (OpenCreate) workflowsMsg()          {}
func (OpenEdit) workflowsMsg()            {}
func (OpenDelete) workflowsMsg()          {}
func (Close) workflowsMsg()               {}
func (NameInput) workflowsMsg()           {}
func (DescInput) workflowsMsg()           {}
func (ActiveInput) workflowsMsg()         {}
func (Submit) workflowsMsg()              {}
func (Created) workflowsMsg()             {}
func (Updated) workflowsMsg()             {}
func (Deleted) workflowsMsg()             {}
func (ToggleActive) workflowsMsg()        {}
func (Toggled) workflowsMsg()             {}
func (SelectWorkflow) workflowsMsg()      {}
func (Deselect) workflowsMsg()            {}
func (RulesLoaded) workflowsMsg()         {}
func (OpenCreateRule) workflowsMsg()      {}
func (OpenEditRule) workflowsMsg()        {}
func (OpenDeleteRule) workflowsMsg()      {}
func (CloseRule) workflowsMsg()           {}
func (RuleNameInput) workflowsMsg()       {}
func (RuleGoalInput) workflowsMsg()       {}
func (RuleResourceInput) workflowsMsg()   {}
func (RuleTaskTypeInput) workflowsMsg()   {}
func (RuleStateInput) workflowsMsg()      {}
func (RuleActiveInput) workflowsMsg()     {}
func (SubmitRule) workflowsMsg()          {}
func (RuleCreated) workflowsMsg()         {}
func (RuleUpdated) workflowsMsg()         {}
func (RuleDeleted) workflowsMsg()         {}
func (OpenAttach) workflowsMsg()          {}
func (CloseAttach) workflowsMsg()         {}
func (AttachTemplateInput) workflowsMsg() {}
func (AttachOrderInput) workflowsMsg()    {}
func (SubmitAttach) workflowsMsg()        {}
func (TemplateAttached) workflowsMsg()    {}
func (Detach) workflowsMsg()              {}
func (TemplateDetached) workflowsMsg()    {}
func (WorkflowEvent) workflowsMsg()       {}
func (RuleEvent) workflowsMsg()           {}

func Update(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load, Loaded, OpenCreate, OpenEdit, OpenDelete, Close, NameInput,
		DescInput, ActiveInput, Submit, Created, Updated, Deleted,
		ToggleActive, Toggled, WorkflowEvent:
		return updateWorkflows(env, s, msg)
	case OpenAttach, CloseAttach, AttachTemplateInput, AttachOrderInput,
		SubmitAttach, TemplateAttached, Detach, TemplateDetached:
		return updateAttach(env, s, msg)
	default:
		return updateRules(env, s, msg)
	}
}

func updateWorkflows(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case Load:
		scope := env.ProjectID
		s.Scope = scope
		s.Workflows = remote.NewLoading[[]model.Workflow]()
		return s, feature.Fetch(api.ListWorkflows{ProjectID: scope}, func(r api.Result[[]model.Workflow]) effect.Msg {
			return Loaded{Scope: scope, Result: r}
		})

	case Loaded:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		var eff effect.Effect
		s.Workflows, eff = feature.Fetched(msg.Result)
		return s, eff

	case OpenCreate:
		s.Dialog = dialog.OpenCreate[model.Workflow]()
		s.Draft = Draft{Active: true}
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case OpenEdit:
		s.Dialog = dialog.OpenEdit(msg.Workflow)
		s.Draft = draftFrom(msg.Workflow)
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case OpenDelete:
		s.Dialog = dialog.OpenDelete(msg.Workflow)
		s.Draft = Draft{}
		s.Submit = feature.Submission{}
		return s, effect.None{}

	case Close:
		return closeWorkflowDialog(s), effect.None{}

	case NameInput:
		s.Draft.Name = msg.Value
		return s, effect.None{}

	case DescInput:
		s.Draft.Description = msg.Value
		return s, effect.None{}

	case ActiveInput:
		s.Draft.Active = msg.Value
		return s, effect.None{}

	case Submit:
		return submitWorkflow(env, s)

	case Created:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Workflows = reconcile.Created(s.Workflows, msg.Result.Value)
			return closeWorkflowDialog(s), feature.SuccessToast(env.T(i18n.ToastWorkflowCreated))
		}
		return failWorkflow(env, s, msg.Result.Err)

	case Updated:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Result.OK() {
			s.Workflows = reconcile.Updated(s.Workflows, msg.Result.Value)
			return closeWorkflowDialog(s), feature.SuccessToast(env.T(i18n.ToastWorkflowUpdated))
		}
		return failWorkflow(env, s, msg.Result.Err)

	case Deleted:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Err)
		}
		s.Submit = s.Submit.Finish()
		if msg.Err == nil {
			s.Workflows = reconcile.Deleted(s.Workflows, msg.ID)
			if s.SelectedID == msg.ID {
				s = deselect(s)
			}
			return closeWorkflowDialog(s), feature.SuccessToast(env.T(i18n.ToastWorkflowDeleted))
		}
		return failWorkflow(env, s, msg.Err)

	case ToggleActive:
		if s.Toggle.InFlight {
			return s, effect.None{}
		}
		w := msg.Workflow
		s.Toggle, _ = s.Toggle.Begin()
		s.Toggling = w.ID
		id := w.ID
		scope := scopeOf(env)
		return s, effect.Call[model.Workflow]{
			Request: api.UpdateWorkflow{ID: id, Input: api.WorkflowInput{
				ProjectID:   w.ProjectID,
				Name:        w.Name,
				Description: w.Description,
				Active:      !w.Active,
			}},
			Wrap: func(r api.Result[model.Workflow]) effect.Msg { return Toggled{Scope: scope, ID: id, Result: r} },
		}

	case Toggled:
		if !feature.SameScope(msg.Scope, env.ProjectID) {
			return s, feature.Stale(msg.Result.Err)
		}
		s.Toggle = s.Toggle.Finish()
		s.Toggling = 0
		if msg.Result.OK() {
			s.Workflows = reconcile.Updated(s.Workflows, msg.Result.Value)
			return s, feature.SuccessToast(env.T(i18n.ToastWorkflowUpdated))
		}
		// No form to show an inline error on; surface it as a toast.
		inline, eff := feature.Fail(env, msg.Result.Err)
		if inline != "" && effect.IsNone(eff) {
			eff = feature.ErrorToast(inline)
		}
		return s, eff

	case WorkflowEvent:
		switch msg.Kind {
		case EventCreated:
			s.Workflows = reconcile.Created(s.Workflows, msg.Workflow)
		case EventUpdated:
			s.Workflows = reconcile.Updated(s.Workflows, msg.Workflow)
		case EventDeleted:
			s.Workflows = reconcile.Deleted(s.Workflows, msg.Workflow.ID)
			if s.SelectedID == msg.Workflow.ID {
				s = deselect(s)
			}
		}
		return closeWorkflowDialog(s), effect.None{}
	}
	return s, effect.None{}
}

func submitWorkflow(env feature.Env, s State) (State, effect.Effect) {
	if s.Submit.InFlight {
		return s, effect.None{}
	}
	scope := scopeOf(env)
	switch s.Dialog.Kind() {
	case dialog.Create, dialog.Edit:
		name := strings.TrimSpace(s.Draft.Name)
		if name == "" {
			s.Submit = s.Submit.Reject(env.T(i18n.ErrNameRequired))
			return s, effect.None{}
		}
		in := api.WorkflowInput{
			ProjectID:   env.ProjectID,
			Name:        name,
			Description: strings.TrimSpace(s.Draft.Description),
			Active:      s.Draft.Active,
		}
		s.Submit, _ = s.Submit.Begin()
		if w, ok := s.Dialog.Editing(); ok {
			in.ProjectID = w.ProjectID
			return s, effect.Call[model.Workflow]{
				Request: api.UpdateWorkflow{ID: w.ID, Input: in},
				Wrap:    func(r api.Result[model.Workflow]) effect.Msg { return Updated{Scope: scope, Result: r} },
			}
		}
		return s, effect.Call[model.Workflow]{
			Request: api.CreateWorkflow{Input: in},
			Wrap:    func(r api.Result[model.Workflow]) effect.Msg { return Created{Scope: scope, Result: r} },
		}

	case dialog.Delete:
		w, _ := s.Dialog.Deleting()
		id := w.ID
		s.Submit, _ = s.Submit.Begin()
		return s, effect.Call[api.Unit]{
			Request: api.DeleteWorkflow{ID: id},
			Wrap:    func(r api.Result[api.Unit]) effect.Msg { return Deleted{Scope: scope, ID: id, Err: r.Err} },
		}
	}
	return s, effect.None{}
}

func failWorkflow(env feature.Env, s State, err *model.ApiError) (State, effect.Effect) {
	var eff effect.Effect
	s.Submit.Error, eff = feature.Fail(env, err)
	return s, eff
}

func closeWorkflowDialog(s State) State {
	s.Dialog = dialog.Close[model.Workflow]()
	s.Draft = Draft{}
	s.Submit = feature.Submission{}
	return s
}

func updateRules(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case SelectWorkflow:
		s = deselect(s)
		s.SelectedID = msg.ID
		s.Rules = remote.NewLoading[[]model.Rule]()
		id := msg.ID
		return s, feature.Fetch(api.ListRules{WorkflowID: id}, func(r api.Result[[]model.Rule]) effect.Msg {
			return RulesLoaded{WorkflowID: id, Result: r}
		})

	case Deselect:
		return deselect(s), effect.None{}

	case RulesLoaded:
		if msg.WorkflowID != s.SelectedID {
			return s, feature.Stale(msg.Result.Err)
		}
		var eff effect.Effect
		s.Rules, eff = feature.Fetched(msg.Result)
		return s, eff

	case OpenCreateRule:
		if s.SelectedID == 0 {
			return s, effect.None{}
		}
		s.RuleDialog = dialog.OpenCreate[model.Rule]()
		s.RuleDraft = RuleDraft{ResourceType: model.ResourceTask, Active: true}
		s.RuleSubmit = feature.Submission{}
		return s, effect.None{}

	case OpenEditRule:
		s.RuleDialog = dialog.OpenEdit(msg.Rule)
		s.RuleDraft = ruleDraftFrom(msg.Rule)
		s.RuleSubmit = feature.Submission{}
		return s, effect.None{}

	case OpenDeleteRule:
		s.RuleDialog = dialog.OpenDelete(msg.Rule)
		s.RuleDraft = RuleDraft{}
		s.RuleSubmit = feature.Submission{}
		return s, effect.None{}

	case CloseRule:
		return closeRuleDialog(s), effect.None{}

	case RuleNameInput:
		s.RuleDraft.Name = msg.Value
		return s, effect.None{}

	case RuleGoalInput:
		s.RuleDraft.Goal = msg.Value
		return s, effect.None{}

	case RuleResourceInput:
		s.RuleDraft.ResourceType = msg.Value
		if msg.Value == model.ResourceCard {
			s.RuleDraft.TaskTypeID = nil
		}
		return s, effect.None{}

	case RuleTaskTypeInput:
		s.RuleDraft.TaskTypeID = msg.Value
		return s, effect.None{}

	case RuleStateInput:
		s.RuleDraft.ToState = msg.Value
		return s, effect.None{}

	case RuleActiveInput:
		s.RuleDraft.Active = msg.Value
		return s, effect.None{}

	case SubmitRule:
		return submitRule(env, s)

	case RuleCreated:
		if msg.WorkflowID != s.SelectedID {
			return s, feature.Stale(msg.Result.Err)
		}
		s.RuleSubmit = s.RuleSubmit.Finish()
		if msg.Result.OK() {
			s.Rules = reconcile.Created(s.Rules, msg.Result.Value)
			return closeRuleDialog(s), feature.SuccessToast(env.T(i18n.ToastRuleCreated))
		}
		return failRule(env, s, msg.Result.Err)

	case RuleUpdated:
		if msg.WorkflowID != s.SelectedID {
			return s, feature.Stale(msg.Result.Err)
		}
		s.RuleSubmit = s.RuleSubmit.Finish()
		if msg.Result.OK() {
			s.Rules = reconcile.Updated(s.Rules, msg.Result.Value)
			return closeRuleDialog(s), feature.SuccessToast(env.T(i18n.ToastRuleUpdated))
		}
		return failRule(env, s, msg.Result.Err)

	case RuleDeleted:
		if msg.WorkflowID != s.SelectedID {
			return s, feature.Stale(msg.Err)
		}
		s.RuleSubmit = s.RuleSubmit.Finish()
		if msg.Err == nil {
			s.Rules = reconcile.Deleted(s.Rules, msg.ID)
			return closeRuleDialog(s), feature.SuccessToast(env.T(i18n.ToastRuleDeleted))
		}
		return failRule(env, s, msg.Err)

	case RuleEvent:
		switch msg.Kind {
		case EventCreated:
			if msg.Rule.WorkflowID == s.SelectedID {
				s.Rules = reconcile.Created(s.Rules, msg.Rule)
			}
		case EventUpdated:
			s.Rules = reconcile.Updated(s.Rules, msg.Rule)
		case EventDeleted:
			s.Rules = reconcile.Deleted(s.Rules, msg.Rule.ID)
		}
		return closeRuleDialog(s), effect.None{}
	}
	return s, effect.None{}
}

func submitRule(env feature.Env, s State) (State, effect.Effect) {
	if s.RuleSubmit.InFlight {
		return s, effect.None{}
	}
	switch s.RuleDialog.Kind() {
	case dialog.Create, dialog.Edit:
		in := s.RuleDraft.input()
		if in.Name == "" {
			s.RuleSubmit = s.RuleSubmit.Reject(env.T(i18n.ErrNameRequired))
			return s, effect.None{}
		}
		if in.ToState == "" {
			s.RuleSubmit = s.RuleSubmit.Reject(env.T(i18n.ErrStateRequired))
			return s, effect.None{}
		}
		wid := s.SelectedID
		if r, ok := s.RuleDialog.Editing(); ok {
			s.RuleSubmit, _ = s.RuleSubmit.Begin()
			return s, effect.Call[model.Rule]{
				Request: api.UpdateRule{ID: r.ID, Input: in},
				Wrap:    func(r api.Result[model.Rule]) effect.Msg { return RuleUpdated{WorkflowID: wid, Result: r} },
			}
		}
		if s.SelectedID == 0 {
			s.RuleSubmit = s.RuleSubmit.Reject(env.T(i18n.ErrSelectWorkflow))
			return s, effect.None{}
		}
		s.RuleSubmit, _ = s.RuleSubmit.Begin()
		return s, effect.Call[model.Rule]{
			Request: api.CreateRule{WorkflowID: wid, Input: in},
			Wrap: func(r api.Result[model.Rule]) effect.Msg {
				return RuleCreated{WorkflowID: wid, Result: r}
			},
		}

	case dialog.Delete:
		r, _ := s.RuleDialog.Deleting()
		id, wid := r.ID, s.SelectedID
		s.RuleSubmit, _ = s.RuleSubmit.Begin()
		return s, effect.Call[api.Unit]{
			Request: api.DeleteRule{ID: id},
			Wrap:    func(r api.Result[api.Unit]) effect.Msg { return RuleDeleted{WorkflowID: wid, ID: id, Err: r.Err} },
		}
	}
	return s, effect.None{}
}

func failRule(env feature.Env, s State, err *model.ApiError) (State, effect.Effect) {
	var eff effect.Effect
	s.RuleSubmit.Error, eff = feature.Fail(env, err)
	return s, eff
}

func closeRuleDialog(s State) State {
	s.RuleDialog = dialog.Close[model.Rule]()
	s.RuleDraft = RuleDraft{}
	s.RuleSubmit = feature.Submission{}
	return s
}

func deselect(s State) State {
	s.SelectedID = 0
	s.Rules = remote.NewNotAsked[[]model.Rule]()
	s = closeRuleDialog(s)
	s.Attach = Attach{}
	s.AttachSubmit = feature.Submission{}
	return s
}

func updateAttach(env feature.Env, s State, msg Msg) (State, effect.Effect) {
	switch msg := msg.(type) {
	case OpenAttach:
		r := msg.Rule
		s.Attach = Attach{Rule: &r, Order: len(r.Templates) + 1}
		s.AttachSubmit = feature.Submission{}
		return s, effect.None{}

	case CloseAttach:
		s.Attach = Attach{}
		s.AttachSubmit = feature.Submission{}
		return s, effect.None{}

	case AttachTemplateInput:
		s.Attach.TemplateID = msg.TemplateID
		s.AttachSubmit.Error = ""
		return s, effect.None{}

	case AttachOrderInput:
		if msg.Order > 0 {
			s.Attach.Order = msg.Order
		}
		return s, effect.None{}

	case SubmitAttach:
		if s.AttachSubmit.InFlight || s.Attach.Rule == nil {
			return s, effect.None{}
		}
		if s.Attach.TemplateID == 0 {
			s.AttachSubmit = s.AttachSubmit.Reject(env.T(i18n.ErrSelectTemplate))
			return s, effect.None{}
		}
		s.AttachSubmit, _ = s.AttachSubmit.Begin()
		wid := s.SelectedID
		return s, effect.Call[model.Rule]{
			Request: api.AttachTemplate{RuleID: s.Attach.Rule.ID, TemplateID: s.Attach.TemplateID, Order: s.Attach.Order},
			Wrap:    func(r api.Result[model.Rule]) effect.Msg { return TemplateAttached{WorkflowID: wid, Result: r} },
		}

	case TemplateAttached:
		if msg.WorkflowID != s.SelectedID {
			return s, feature.Stale(msg.Result.Err)
		}
		s.AttachSubmit = s.AttachSubmit.Finish()
		if msg.Result.OK() {
			s.Rules = reconcile.Updated(s.Rules, msg.Result.Value)
			s.Attach = Attach{}
			s.AttachSubmit = feature.Submission{}
			return s, feature.SuccessToast(env.T(i18n.ToastTemplateAttached))
		}
		var eff effect.Effect
		s.AttachSubmit.Error, eff = feature.Fail(env, msg.Result.Err)
		return s, eff

	case Detach:
		if s.AttachSubmit.InFlight {
			return s, effect.None{}
		}
		s.AttachSubmit, _ = s.AttachSubmit.Begin()
		wid := s.SelectedID
		return s, effect.Call[model.Rule]{
			Request: api.DetachTemplate{RuleID: msg.RuleID, TemplateID: msg.TemplateID},
			Wrap:    func(r api.Result[model.Rule]) effect.Msg { return TemplateDetached{WorkflowID: wid, Result: r} },
		}

	case TemplateDetached:
		if msg.WorkflowID != s.SelectedID {
			return s, feature.Stale(msg.Result.Err)
		}
		s.AttachSubmit = s.AttachSubmit.Finish()
		if msg.Result.OK() {
			s.Rules = reconcile.Updated(s.Rules, msg.Result.Value)
			return s, feature.SuccessToast(env.T(i18n.ToastTemplateDetached))
		}
		inline, eff := feature.Fail(env, msg.Result.Err)
		if inline != "" && effect.IsNone(eff) {
			eff = feature.ErrorToast(inline)
		}
		return s, eff
	}
	return s, effect.None{}
}

// scopeOf copies the selected project so results do not alias state.
func scopeOf(env feature.Env) *int64 {
	if pid, ok := env.Project(); ok {
		return &pid
	}
	return nil
}

// Selected returns the workflow whose rules are shown.
func (s State) Selected() (model.Workflow, bool) {
	for _, w := range s.Workflows.OrElse(nil) {
		if w.ID == s.SelectedID {
			return w, true
		}
	}
	return model.Workflow{}, false
}
