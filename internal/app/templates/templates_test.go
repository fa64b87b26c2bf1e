package templates

import (
	"testing"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/dialog"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/remote"
)

func testEnv() feature.Env {
	return feature.Env{Locale: i18n.English, Settings: feature.DefaultSettings()}
}

func TestSubmit_RequiresNameAndType(t *testing.T) {
	env := testEnv()
	s, _ := Update(env, State{Templates: remote.NewLoaded([]model.TaskTemplate{})}, OpenCreate{})
	if s.Draft.Priority != DefaultPriority {
		t.Fatalf("expected default priority; got %d", s.Draft.Priority)
	}

	s, _ = Update(env, s, NameInput{Value: "Review"})
	s, eff := Update(env, s, Submit{})
	if !effect.IsNone(eff) || s.Submit.Error != env.T(i18n.ErrTypeRequired) {
		t.Fatalf("expected type error; got %q", s.Submit.Error)
	}

	s, _ = Update(env, s, TypeInput{TypeID: 2})
	s, eff = Update(env, s, Submit{})
	req := eff.(effect.Call[model.TaskTemplate]).Request.(api.CreateTemplate)
	if req.Input.Name != "Review" || req.Input.TypeID != 2 || req.Input.Priority != DefaultPriority {
		t.Fatalf("unexpected request %+v", req)
	}

	s, _ = Update(env, s, Created{Result: api.Result[model.TaskTemplate]{Value: model.TaskTemplate{ID: 4, Name: "Review"}}})
	if _, ok := s.Find(4); !ok || s.Dialog.IsOpen() {
		t.Fatalf("expected template 4 and closed dialog")
	}
}

func TestPriorityInput_IgnoresOutOfRange(t *testing.T) {
	env := testEnv()
	s, _ := Update(env, State{}, OpenCreate{})
	s, _ = Update(env, s, PriorityInput{Value: 9})
	if s.Draft.Priority != DefaultPriority {
		t.Fatalf("expected priority unchanged; got %d", s.Draft.Priority)
	}
	s, _ = Update(env, s, PriorityInput{Value: 1})
	if s.Draft.Priority != 1 {
		t.Fatalf("expected priority 1; got %d", s.Draft.Priority)
	}
}

func TestEditAndDelete(t *testing.T) {
	env := testEnv()
	a := model.TaskTemplate{ID: 1, Name: "a", TypeID: 1, Priority: 2}
	b := model.TaskTemplate{ID: 2, Name: "b", TypeID: 1, Priority: 2}
	s := State{Templates: remote.NewLoaded([]model.TaskTemplate{a, b})}

	s, _ = Update(env, s, OpenEdit{Template: a})
	s, _ = Update(env, s, NameInput{Value: "A"})
	s, eff := Update(env, s, Submit{})
	if req := eff.(effect.Call[model.TaskTemplate]).Request.(api.UpdateTemplate); req.ID != 1 || req.Input.Priority != 2 {
		t.Fatalf("unexpected update %+v", req)
	}
	a.Name = "A"
	s, _ = Update(env, s, Updated{Result: api.Result[model.TaskTemplate]{Value: a}})

	s, _ = Update(env, s, OpenDelete{Template: b})
	s, eff = Update(env, s, Submit{})
	if len(effect.Calls(eff)) != 1 {
		t.Fatalf("expected delete call")
	}
	s, _ = Update(env, s, Deleted{ID: 2})
	got, _ := s.Templates.Get()
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("unexpected templates %+v", got)
	}
}

func TestDeleteFailure_KeepsDialog(t *testing.T) {
	env := testEnv()
	tpl := model.TaskTemplate{ID: 1}
	s, _ := Update(env, State{Templates: remote.NewLoaded([]model.TaskTemplate{tpl})}, OpenDelete{Template: tpl})
	s, _ = Update(env, s, Submit{})
	s, _ = Update(env, s, Deleted{ID: 1, Err: model.NewApiError(409, "in use by a rule")})
	if s.Dialog.Kind() != dialog.Delete || s.Submit.Error != "in use by a rule" || s.Submit.InFlight {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestComponentEvent_CloseRequested(t *testing.T) {
	env := testEnv()
	s, _ := Update(env, State{}, OpenCreate{})
	s, eff := Update(env, s, ComponentEvent{Kind: EventCloseRequested})
	if s.Dialog.IsOpen() || !effect.IsNone(eff) {
		t.Fatalf("expected closed dialog without effect")
	}
}

func TestUnauthorized_ResetsSession(t *testing.T) {
	env := testEnv()
	unauth := model.NewApiError(401, "x")
	for _, m := range []Msg{
		Loaded{Result: api.Result[[]model.TaskTemplate]{Err: unauth}},
		Created{Result: api.Result[model.TaskTemplate]{Err: unauth}},
		Updated{Result: api.Result[model.TaskTemplate]{Err: unauth}},
		Deleted{ID: 1, Err: unauth},
	} {
		next, eff := Update(env, State{Submit: feature.Submission{InFlight: true}}, m)
		if len(effect.Collect[effect.ResetSession](eff)) != 1 || next.Submit.InFlight || next.Submit.Error != "" {
			t.Fatalf("%T: expected clean session reset", m)
		}
	}
}

func TestResultsForOtherScope_AreDropped(t *testing.T) {
	pid := int64(8)
	env := testEnv()
	env.ProjectID = &pid
	keep := model.TaskTemplate{ID: 1, Name: "in 8", ProjectID: &pid}
	s := State{Scope: &pid, Templates: remote.NewLoaded([]model.TaskTemplate{keep})}
	s, _ = Update(env, s, OpenCreate{})
	s, _ = Update(env, s, NameInput{Value: "draft in 8"})
	s.Submit.InFlight = true

	old := int64(7)
	msgs := []Msg{
		Created{Scope: &old, Result: api.Result[model.TaskTemplate]{Value: model.TaskTemplate{ID: 5, ProjectID: &old}}},
		Created{Result: api.Result[model.TaskTemplate]{Value: model.TaskTemplate{ID: 6}}},
		Updated{Scope: &old, Result: api.Result[model.TaskTemplate]{Value: model.TaskTemplate{ID: 1, Name: "renamed"}}},
		Deleted{Scope: &old, ID: 1},
	}
	for _, m := range msgs {
		next, eff := Update(env, s, m)
		if !effect.IsNone(eff) {
			t.Fatalf("%T: expected no effect; got %T", m, eff)
		}
		got, _ := next.Templates.Get()
		if len(got) != 1 || got[0].Name != "in 8" {
			t.Fatalf("%T: templates of project 8 changed: %+v", m, got)
		}
		if !next.Dialog.IsCreate() || next.Draft.Name != "draft in 8" || !next.Submit.InFlight {
			t.Fatalf("%T: dialog of project 8 changed: %+v", m, next)
		}
	}
}
