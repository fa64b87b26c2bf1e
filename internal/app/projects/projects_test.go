package projects

import (
	"testing"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/remote"
)

func TestCreateProject_Flow(t *testing.T) {
	env := feature.Env{Locale: i18n.English}
	s := State{Projects: remote.NewLoaded([]model.Project{{ID: 1, Name: "Old"}})}

	s, _ = Update(env, s, OpenCreate{})
	s, eff := Update(env, s, Submit{})
	if !effect.IsNone(eff) || s.Submit.Error != "Name is required" {
		t.Fatalf("expected validation error; got %q", s.Submit.Error)
	}

	s, _ = Update(env, s, NameInput{Value: " New "})
	s, eff = Update(env, s, Submit{})
	req := eff.(effect.Call[model.Project]).Request.(api.CreateProject)
	if req.Name != "New" {
		t.Fatalf("expected trimmed name; got %q", req.Name)
	}
	if _, again := Update(env, s, Submit{}); !effect.IsNone(again) {
		t.Fatalf("expected guarded resubmit")
	}

	s, _ = Update(env, s, Created{Result: api.Result[model.Project]{Value: model.Project{ID: 2, Name: "New"}}})
	if s.Dialog.IsOpen() || s.Submit.InFlight {
		t.Fatalf("expected closed dialog")
	}
	if p, ok := s.Find(2); !ok || p.Name != "New" {
		t.Fatalf("expected project 2 in list")
	}
}

func TestCreated_401ResetsSession(t *testing.T) {
	env := feature.Env{Locale: i18n.English}
	s := State{Submit: feature.Submission{InFlight: true}}
	s, eff := Update(env, s, Created{Result: api.Result[model.Project]{Err: model.NewApiError(401, "x")}})
	if len(effect.Collect[effect.ResetSession](eff)) != 1 || s.Submit.InFlight {
		t.Fatalf("expected session reset with cleared guard")
	}

	_, eff = Update(env, State{}, Loaded{Result: api.Result[[]model.Project]{Err: model.NewApiError(401, "x")}})
	if len(effect.Collect[effect.ResetSession](eff)) != 1 {
		t.Fatalf("expected session reset from list fetch")
	}
}
