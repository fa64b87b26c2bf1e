// Package app is the root of the state engine: one State tree, one Reduce.
//
// Reduce is pure. Feature messages are routed to the owning feature's Update,
// which only ever rewrites its own sub-state. Toast and ResetSession effects
// are absorbed here into UI and Core state; everything else is returned for
// the runner to execute.
package app

import (
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app/cards"
	"scrumbringer-admin/internal/app/feature"
	"scrumbringer-admin/internal/app/invites"
	"scrumbringer-admin/internal/app/members"
	"scrumbringer-admin/internal/app/metrics"
	"scrumbringer-admin/internal/app/orgsettings"
	"scrumbringer-admin/internal/app/projects"
	"scrumbringer-admin/internal/app/templates"
	"scrumbringer-admin/internal/app/userprojects"
	"scrumbringer-admin/internal/app/workflows"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
)

// Core is the session shared by every feature.
type Core struct {
	User      *model.User
	ProjectID *int64
	Page      Page
	// AuthError explains why the login page is shown, when known.
	AuthError string
}

type Toast struct {
	Text  string
	Level effect.ToastLevel
	Seq   int
}

// UI is chrome state. Rendering reads it and never writes it.
type UI struct {
	Toast    *Toast
	ToastSeq int
	Locale   i18n.Locale
	Theme    string
}

// Options are fixed for the lifetime of a session.
type Options struct {
	Settings      feature.Settings
	ToastDuration time.Duration
	Locale        i18n.Locale
	Theme         string
}

func DefaultOptions() Options {
	return Options{
		Settings:      feature.DefaultSettings(),
		ToastDuration: 4 * time.Second,
		Locale:        i18n.English,
		Theme:         "auto",
	}
}

type State struct {
	Opts Options
	Core Core
	UI   UI

	Projects     projects.State
	Members      members.State
	Cards        cards.State
	Workflows    workflows.State
	Templates    templates.State
	OrgSettings  orgsettings.State
	UserProjects userprojects.State
	Metrics      metrics.State
	Invites      invites.State
}

// Root messages.
type (
	SessionLoaded struct{ Result api.Result[model.User] }
	Reconnect     struct{}
	Logout        struct{}
	Navigate      struct{ Page Page }
	// SelectProject switches the project scope; nil selects none.
	SelectProject    struct{ ID *int64 }
	OpenUserProjects struct{ UserID int64 }
	SetLocale        struct{ Locale i18n.Locale }
	SetTheme         struct{ Theme string }
	ToastExpired     struct{ Seq int }
	DismissToast     struct{}
)

// New builds the initial state and the boot effect.
func New(opts Options) (State, effect.Effect) {
	s := State{
		Opts: opts,
		Core: Core{Page: PageLogin},
		UI:   UI{Locale: opts.Locale, Theme: opts.Theme},
	}
	return s, Init()
}

// Init fetches the session user.
func Init() effect.Effect {
	return feature.Fetch(api.FetchMe{}, func(r api.Result[model.User]) effect.Msg {
		return SessionLoaded{Result: r}
	})
}

func (s State) Env() feature.Env {
	return feature.Env{
		User:      s.Core.User,
		ProjectID: s.Core.ProjectID,
		Locale:    s.UI.Locale,
		Settings:  s.Opts.Settings,
	}
}

func (s State) T(key i18n.Key, args ...any) string {
	return i18n.T(s.UI.Locale, key, args...)
}

// Reduce is the single state transition function.
func Reduce(s State, msg effect.Msg) (State, effect.Effect) {
	next, eff := reduce(s, msg)
	return next.absorb(eff)
}

func reduce(s State, msg effect.Msg) (State, effect.Effect) {
	env := s.Env()
	var eff effect.Effect

	switch msg := msg.(type) {
	case projects.Msg:
		s.Projects, eff = projects.Update(env, s.Projects, msg)
	case members.Msg:
		s.Members, eff = members.Update(env, s.Members, msg)
	case cards.Msg:
		s.Cards, eff = cards.Update(env, s.Cards, msg)
	case workflows.Msg:
		s.Workflows, eff = workflows.Update(env, s.Workflows, msg)
	case templates.Msg:
		s.Templates, eff = templates.Update(env, s.Templates, msg)
	case orgsettings.Msg:
		s.OrgSettings, eff = orgsettings.Update(env, s.OrgSettings, msg)
	case userprojects.Msg:
		s.UserProjects, eff = userprojects.Update(env, s.UserProjects, msg)
	case metrics.Msg:
		s.Metrics, eff = metrics.Update(env, s.Metrics, msg)
	case invites.Msg:
		s.Invites, eff = invites.Update(env, s.Invites, msg)

	case SessionLoaded:
		return s.sessionLoaded(msg)

	case Reconnect:
		s.Core.AuthError = ""
		return s, Init()

	case Logout:
		return s.withSession(nil), effect.None{}

	case Navigate:
		return s.navigate(msg.Page)

	case SelectProject:
		return s.selectProject(msg.ID)

	case OpenUserProjects:
		if s.Core.User == nil || !s.Core.User.IsOrgAdmin() {
			return s, feature.ErrorToast(s.T(i18n.ErrNotPermitted))
		}
		return reduce(s, userprojects.OpenFor{UserID: msg.UserID, Users: s.OrgSettings.Users.OrElse(nil)})

	case SetLocale:
		s.UI.Locale = msg.Locale
		return s, effect.None{}

	case SetTheme:
		s.UI.Theme = msg.Theme
		return s, effect.None{}

	case ToastExpired:
		if s.UI.Toast != nil && s.UI.Toast.Seq == msg.Seq {
			s.UI.Toast = nil
		}
		return s, effect.None{}

	case DismissToast:
		s.UI.Toast = nil
		return s, effect.None{}

	default:
		return s, effect.None{}
	}
	return s, eff
}

func (s State) sessionLoaded(msg SessionLoaded) (State, effect.Effect) {
	if !msg.Result.OK() {
		s = s.withSession(nil)
		if !feature.IsUnauthorized(msg.Result.Err) {
			s.Core.AuthError = msg.Result.Err.Message
		}
		return s, effect.None{}
	}
	u := msg.Result.Value
	s = s.withSession(&u)
	s.Core.AuthError = ""
	s.Core.Page = PageProjects
	var projEff effect.Effect
	s.Projects, projEff = projects.Update(s.Env(), s.Projects, projects.Load{})
	return s, projEff
}

// withSession replaces the user and drops every feature sub-state.
func (s State) withSession(u *model.User) State {
	return State{
		Opts: s.Opts,
		Core: Core{User: u, Page: PageLogin},
		UI:   s.UI,
	}
}

func (s State) navigate(p Page) (State, effect.Effect) {
	if s.Core.User == nil {
		return s, effect.None{}
	}
	if p.AdminOnly() && !s.Core.User.IsOrgAdmin() {
		return s, feature.ErrorToast(s.T(i18n.ErrNotPermitted))
	}
	if p.NeedsProject() && s.Core.ProjectID == nil {
		return s, feature.ErrorToast(s.T(i18n.ErrNoProject))
	}
	s.Core.Page = p
	return s.loadPage()
}

// loadPage issues the fetches of the current page.
func (s State) loadPage() (State, effect.Effect) {
	var effs []effect.Effect
	step := func(msg effect.Msg) {
		var e effect.Effect
		s, e = reduce(s, msg)
		effs = append(effs, e)
	}
	switch s.Core.Page {
	case PageProjects:
		step(projects.Load{})
	case PageMembers:
		step(members.Load{})
	case PageCards:
		step(cards.Load{})
	case PageWorkflows:
		step(workflows.Load{})
		step(templates.Load{})
	case PageTemplates:
		step(templates.Load{})
	case PageOrgSettings:
		step(orgsettings.Load{})
	case PageMetrics:
		step(metrics.Load{})
	case PageInvites:
		step(invites.Load{})
	}
	return s, effect.Batch(effs...)
}

func (s State) selectProject(id *int64) (State, effect.Effect) {
	if s.Core.User == nil {
		return s, effect.None{}
	}
	if id != nil {
		v := *id
		id = &v
	}
	s.Core.ProjectID = id
	s.Members = members.State{}
	s.Cards = cards.State{}
	s.Workflows = workflows.State{}
	s.Templates = templates.State{}
	if s.Core.Page.NeedsProject() && id == nil {
		s.Core.Page = PageProjects
	}
	return s.loadPage()
}

// absorb applies Toast and ResetSession leaves of eff to the state and
// returns what is left for the runner.
func (s State) absorb(eff effect.Effect) (State, effect.Effect) {
	var out []effect.Effect
	var toasts []effect.Toast
	for _, e := range effect.Flatten(eff) {
		switch e := e.(type) {
		case effect.ResetSession:
			// A reset supersedes every other outcome of the same step.
			s = s.withSession(nil)
			s.Core.AuthError = s.T(i18n.ErrSessionExpired)
			s, out = s.showToast(effect.Toast{Text: s.Core.AuthError, Level: effect.ToastWarning}, nil)
			return s, effect.Batch(out...)
		case effect.Toast:
			toasts = append(toasts, e)
		default:
			out = append(out, e)
		}
	}
	for _, t := range toasts {
		s, out = s.showToast(t, out)
	}
	return s, effect.Batch(out...)
}

// showToast replaces the current toast and schedules its expiry. Only the
// newest toast's timer can clear it.
func (s State) showToast(t effect.Toast, rest []effect.Effect) (State, []effect.Effect) {
	s.UI.ToastSeq++
	s.UI.Toast = &Toast{Text: t.Text, Level: t.Level, Seq: s.UI.ToastSeq}
	if s.Opts.ToastDuration <= 0 {
		return s, rest
	}
	return s, append(rest, effect.After{Delay: s.Opts.ToastDuration, Msg: ToastExpired{Seq: s.UI.ToastSeq}})
}
