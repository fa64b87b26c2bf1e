// Package search implements the debounced, sequence-numbered search field.
//
// Every keystroke bumps Seq. The caller schedules a timer tagged with that
// Seq; only the timer carrying the latest Seq issues a request, and only the
// response carrying the latest Seq is applied. One counter per field, so two
// different queries of equal length can never collide.
package search

import (
	"strings"

	"scrumbringer-admin/internal/model"
	"scrumbringer-admin/internal/remote"
)

type Status int

const (
	Idle Status = iota
	Typing
	Searching
	Done
)

type State[T any] struct {
	Query   string
	Seq     int
	Results remote.Value[[]T]
}

func (s State[T]) Status() Status {
	switch {
	case strings.TrimSpace(s.Query) == "":
		return Idle
	case s.Results.IsLoading():
		return Searching
	case s.Results.IsLoaded(), s.Results.IsFailed():
		return Done
	default:
		return Typing
	}
}

// Input records the new draft query. schedule is false when the query is
// blank: the field resets to Idle and nothing should be scheduled. Seq still
// advances so pending timers and in-flight responses become stale.
func (s State[T]) Input(q string) (next State[T], seq int, schedule bool) {
	s.Query = q
	s.Seq++
	if strings.TrimSpace(q) == "" {
		s.Results = remote.NewNotAsked[[]T]()
		return s, s.Seq, false
	}
	return s, s.Seq, true
}

// Fire handles a debounce timer. issue is true when the timer is the latest
// one and a request tagged with seq should go out.
func (s State[T]) Fire(seq int) (next State[T], query string, issue bool) {
	if seq != s.Seq || strings.TrimSpace(s.Query) == "" {
		return s, "", false
	}
	s.Results = remote.NewLoading[[]T]()
	return s, strings.TrimSpace(s.Query), true
}

// Apply stores a response. Responses for any seq but the latest are dropped.
func (s State[T]) Apply(seq int, v []T, err *model.ApiError) (next State[T], applied bool) {
	if seq != s.Seq || strings.TrimSpace(s.Query) == "" {
		return s, false
	}
	s.Results = remote.FromResult(v, err)
	return s, true
}

// Reset returns the field to Idle while keeping the counter monotonic.
func (s State[T]) Reset() State[T] {
	return State[T]{Seq: s.Seq + 1}
}
