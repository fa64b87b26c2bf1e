// Package feature holds the pieces every admin feature reducer shares: the
// read-only environment, the in-flight submission guard and the error taxonomy.
package feature

import (
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/effect"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/remote"
)

// Settings are runtime knobs that reducers read but never change.
type Settings struct {
	SearchDebounce     time.Duration
	ExecutionsPageSize int
	MetricsDays        int
}

func DefaultSettings() Settings {
	return Settings{
		SearchDebounce:     300 * time.Millisecond,
		ExecutionsPageSize: 10,
		MetricsDays:        30,
	}
}

// Env is the read-only slice of the core session a feature may consult.
type Env struct {
	User      *model.User
	ProjectID *int64
	Locale    i18n.Locale
	Settings  Settings
}

func (e Env) T(key i18n.Key, args ...any) string {
	return i18n.T(e.Locale, key, args...)
}

// Project returns the selected project id.
func (e Env) Project() (int64, bool) {
	if e.ProjectID == nil {
		return 0, false
	}
	return *e.ProjectID, true
}

// IsCurrent reports whether pid is the selected project.
func (e Env) IsCurrent(pid int64) bool {
	cur, ok := e.Project()
	return ok && cur == pid
}

// SameScope compares two optional project scopes; nil is org-wide.
func SameScope(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Stale is the outcome of a result for a project that is no longer selected:
// it must not touch the new project's state, but a 401 still ends the session.
func Stale(err *model.ApiError) effect.Effect {
	if IsUnauthorized(err) {
		return effect.ResetSession{}
	}
	return effect.None{}
}

// Submission is the per-action in-flight guard plus the inline error shown
// next to the form.
type Submission struct {
	InFlight bool
	Error    string
}

// Begin marks the action in flight. ok is false when it already was; the
// caller must then return the state unchanged with no effect.
func (s Submission) Begin() (Submission, bool) {
	if s.InFlight {
		return s, false
	}
	return Submission{InFlight: true}, true
}

// Reject records a validation error without starting the action.
func (s Submission) Reject(msg string) Submission {
	s.Error = msg
	return s
}

// Finish clears the guard. Every result message calls it first.
func (s Submission) Finish() Submission {
	s.InFlight = false
	return s
}

// RowError is an error shown next to one table row only, keyed by the row's id.
type RowError struct {
	ID      int64
	Message string
}

// For returns the message when the error belongs to row id.
func (e *RowError) For(id int64) string {
	if e == nil || e.ID != id {
		return ""
	}
	return e.Message
}

type Failure int

const (
	Unauthorized Failure = iota
	Forbidden
	Conflict
	Unprocessable
	Other
)

func Classify(err *model.ApiError) Failure {
	if err == nil {
		return Other
	}
	switch err.Status {
	case model.StatusUnauthorized:
		return Unauthorized
	case model.StatusForbidden:
		return Forbidden
	case model.StatusConflict:
		return Conflict
	case model.StatusUnprocessable:
		return Unprocessable
	default:
		return Other
	}
}

func IsUnauthorized(err *model.ApiError) bool {
	return err != nil && err.Status == model.StatusUnauthorized
}

func ErrorToast(text string) effect.Effect {
	return effect.Toast{Text: text, Level: effect.ToastError}
}

func SuccessToast(text string) effect.Effect {
	return effect.Toast{Text: text, Level: effect.ToastSuccess}
}

// Fail applies the default taxonomy to a mutation failure and returns the
// inline error plus the effect to emit.
//
//	401: no inline error, ResetSession.
//	403: localized "not permitted" inline and as a toast.
//	422: server message as a toast only.
//	anything else: server message inline.
func Fail(env Env, err *model.ApiError) (string, effect.Effect) {
	switch Classify(err) {
	case Unauthorized:
		return "", effect.ResetSession{}
	case Forbidden:
		msg := env.T(i18n.ErrNotPermitted)
		return msg, ErrorToast(msg)
	case Unprocessable:
		return "", ErrorToast(err.Message)
	default:
		if err == nil {
			return "", effect.None{}
		}
		return err.Message, effect.None{}
	}
}

// Fetched maps a list/record fetch onto a remote value. A 401 yields the
// ResetSession effect as well.
func Fetched[T any](r api.Result[T]) (remote.Value[T], effect.Effect) {
	if IsUnauthorized(r.Err) {
		return remote.NewFailed[T](r.Err), effect.ResetSession{}
	}
	return remote.FromResult(r.Value, r.Err), effect.None{}
}

// Fetch builds the call effect for a read request.
func Fetch[T any](req api.Request[T], wrap func(api.Result[T]) effect.Msg) effect.Effect {
	return effect.Call[T]{Request: req, Wrap: wrap}
}
