package invites

import (
	"errors"
	"testing"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/remote"
)

func testEnv() feature.Env {
	return feature.Env{Locale: i18n.English, Settings: feature.DefaultSettings()}
}

func TestCreate_RequiresAtSign(t *testing.T) {
	env := testEnv()
	s := State{Links: remote.NewLoaded([]model.InviteLink{})}
	s, _ = Update(env, s, EmailInput{Value: "nobody"})
	s, eff := Update(env, s, Create{})
	if !effect.IsNone(eff) || s.Create.Error != env.T(i18n.ErrEmailInvalid) || s.Create.InFlight {
		t.Fatalf("expected email error; got %+v", s.Create)
	}

	s, _ = Update(env, s, EmailInput{Value: " new@x.io "})
	s, eff = Update(env, s, Create{})
	if req := eff.(effect.Call[model.InviteLink]).Request.(api.CreateInvite); req.Email != "new@x.io" {
		t.Fatalf("unexpected request %+v", req)
	}
	if _, again := Update(env, s, Create{}); !effect.IsNone(again) {
		t.Fatalf("expected guarded create")
	}

	s, _ = Update(env, s, Created{Result: api.Result[model.InviteLink]{Value: model.InviteLink{Email: "new@x.io", Token: "t1"}}})
	got, _ := s.Links.Get()
	if len(got) != 1 || got[0].Token != "t1" || s.Email != "" {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestRegenerate_ReplacesByEmail(t *testing.T) {
	env := testEnv()
	s := State{Links: remote.NewLoaded([]model.InviteLink{
		{Email: "a@x.io", Token: "old"},
		{Email: "b@x.io", Token: "b"},
	})}
	s, eff := Update(env, s, Regenerate{Email: "a@x.io"})
	if s.Regenerating != "a@x.io" || len(effect.Calls(eff)) != 1 {
		t.Fatalf("expected regenerate in flight for a@x.io")
	}
	if _, again := Update(env, s, Regenerate{Email: "b@x.io"}); !effect.IsNone(again) {
		t.Fatalf("expected second regenerate to be guarded")
	}
	s, _ = Update(env, s, Regenerated{Email: "a@x.io", Result: api.Result[model.InviteLink]{Value: model.InviteLink{Email: "A@x.io", Token: "new"}}})
	got, _ := s.Links.Get()
	if len(got) != 2 || got[0].Token != "new" || got[1].Token != "b" {
		t.Fatalf("unexpected links %+v", got)
	}
	if s.Regenerating != "" || s.Regen.InFlight {
		t.Fatalf("expected guard cleared")
	}
}

func TestCopy_ProducesClipboardEffect(t *testing.T) {
	env := testEnv()
	_, eff := Update(env, State{}, Copy{URL: "https://x.io/invite/t1"})
	cb, ok := eff.(effect.Clipboard)
	if !ok || cb.Text != "https://x.io/invite/t1" {
		t.Fatalf("expected clipboard effect; got %T", eff)
	}
	if _, ok := cb.Wrap(nil).(Copied); !ok {
		t.Fatalf("expected Copied message")
	}

	_, eff = Update(env, State{}, Copied{})
	if ts := effect.Collect[effect.Toast](eff); len(ts) != 1 || ts[0].Level != effect.ToastSuccess {
		t.Fatalf("expected success toast; got %+v", ts)
	}
	_, eff = Update(env, State{}, Copied{Err: errors.New("no display")})
	ts := effect.Collect[effect.Toast](eff)
	if len(ts) != 1 || ts[0].Level != effect.ToastError || ts[0].Text != "Could not copy to clipboard: no display" {
		t.Fatalf("expected error toast; got %+v", ts)
	}
}

func TestUnauthorized(t *testing.T) {
	env := testEnv()
	unauth := model.NewApiError(401, "x")
	for _, m := range []Msg{
		Loaded{Result: api.Result[[]model.InviteLink]{Err: unauth}},
		Created{Result: api.Result[model.InviteLink]{Err: unauth}},
		Regenerated{Email: "a@x.io", Result: api.Result[model.InviteLink]{Err: unauth}},
	} {
		next, eff := Update(env, State{}, m)
		if len(effect.Collect[effect.ResetSession](eff)) != 1 || next.Create.Error != "" || next.Regen.Error != "" {
			t.Fatalf("%T: expected clean session reset", m)
		}
	}
}
