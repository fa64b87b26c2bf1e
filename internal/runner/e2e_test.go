package runner

import (
	"context"
	"path/filepath"
	"testing"

	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/app/cards"
	"scrumbringer-admin/internal/app/members"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/store"
)

func localSession(t *testing.T) (*Driver, *store.Backend) {
	t.Helper()
	ctx := context.Background()
	b, err := store.Open(ctx, filepath.Join(t.TempDir(), "e2e.sqlite"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	if _, err := b.Seed(ctx, store.SeedOptions{Executions: 5}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	d, err := NewDriver(ctx, New(b), app.DefaultOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d, b
}

func TestEndToEnd_BootAndCardConflict(t *testing.T) {
	d, _ := localSession(t)
	ctx := context.Background()

	if d.State.Core.User == nil || d.State.Core.Page != app.PageProjects {
		t.Fatalf("expected signed-in projects page, got %+v", d.State.Core)
	}
	projects, ok := d.State.Projects.Projects.Get()
	if !ok || len(projects) != 1 {
		t.Fatalf("expected 1 project, got %+v", d.State.Projects.Projects)
	}

	pid := projects[0].ID
	if err := d.Send(ctx, app.SelectProject{ID: &pid}, app.Navigate{Page: app.PageCards}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	list, ok := d.State.Cards.Cards.Get()
	if !ok || len(list) != 3 {
		t.Fatalf("expected 3 cards, got %+v", d.State.Cards.Cards)
	}

	var busy model.Card
	for _, c := range list {
		if c.TaskCount > 0 {
			busy = c
		}
	}
	if err := d.Send(ctx, cards.OpenDelete{Card: busy}, cards.Submit{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !d.State.Cards.Dialog.IsOpen() {
		t.Fatalf("dialog should stay open after a conflict")
	}
	if d.State.Cards.Submit.InFlight {
		t.Fatalf("guard should be released")
	}
	if want := d.State.T(i18n.ErrCardHasTasks); d.State.Cards.Submit.Error != want {
		t.Fatalf("expected %q, got %q", want, d.State.Cards.Submit.Error)
	}

	// Creating a card reconciles the list and shows a toast.
	if err := d.Send(ctx, cards.Close{}, cards.OpenCreate{}, cards.TitleInput{Value: "New"}, cards.Submit{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	list, _ = d.State.Cards.Cards.Get()
	if len(list) != 4 || d.State.Cards.Dialog.IsOpen() {
		t.Fatalf("expected 4 cards and a closed dialog, got %d open=%v", len(list), d.State.Cards.Dialog.IsOpen())
	}
	if d.State.UI.Toast == nil || d.State.UI.Toast.Text != d.State.T(i18n.ToastCardCreated) {
		t.Fatalf("expected created toast, got %+v", d.State.UI.Toast)
	}
	if err := d.Fire(ctx); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if d.State.UI.Toast != nil {
		t.Fatalf("toast should expire once its timer fires")
	}
}

func TestEndToEnd_MembersSearchAndLastManager(t *testing.T) {
	d, _ := localSession(t)
	ctx := context.Background()
	pid := int64(1)
	if err := d.Send(ctx, app.SelectProject{ID: &pid}, app.Navigate{Page: app.PageMembers}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	ms, ok := d.State.Members.Members.Get()
	if !ok || len(ms) != 2 {
		t.Fatalf("expected 2 members, got %+v", d.State.Members.Members)
	}

	me := d.State.Core.User.ID
	var mine model.ProjectMember
	for _, m := range ms {
		if m.UserID == me {
			mine = m
		}
	}
	if err := d.Send(ctx, members.OpenRemove{Member: mine}, members.Submit{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if d.State.UI.Toast == nil || d.State.UI.Toast.Text != d.State.T(i18n.ErrLastManager) {
		t.Fatalf("expected last manager toast, got %+v", d.State.UI.Toast)
	}

	// Only the last keystroke's timer issues a search.
	if err := d.Send(ctx, members.OpenAdd{}, members.SearchInput{Query: "b"}, members.SearchInput{Query: "bo"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := d.Fire(ctx); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	found, ok := d.State.Members.Search.Results.Get()
	if !ok || len(found) != 1 || found[0].Email != "bob@example.com" {
		t.Fatalf("unexpected search results: %+v", d.State.Members.Search.Results)
	}
}

func TestEndToEnd_ExpiredSessionReturnsToLogin(t *testing.T) {
	d, b := localSession(t)
	ctx := context.Background()
	pid := int64(1)
	if err := d.Send(ctx, app.SelectProject{ID: &pid}, app.Navigate{Page: app.PageCards}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if err := b.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if err := d.Send(ctx, cards.Load{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if d.State.Core.User != nil || d.State.Core.Page != app.PageLogin {
		t.Fatalf("expected login page after 401, got %+v", d.State.Core)
	}
	if d.State.Cards.Cards.IsLoaded() {
		t.Fatalf("feature state should be dropped")
	}

	if _, err := b.SignIn(ctx, "alice@example.com"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := d.Send(ctx, app.Reconnect{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if d.State.Core.User == nil || d.State.Core.User.Email != "alice@example.com" {
		t.Fatalf("expected alice signed in, got %+v", d.State.Core.User)
	}
}
