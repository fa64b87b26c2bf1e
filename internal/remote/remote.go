// Package remote holds the four-state wrapper used for every server-backed
// collection or record.
package remote

import "scrumbringer-admin/internal/model"

type Kind int

const (
	NotAsked Kind = iota
	Loading
	Loaded
	Failed
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not-asked"
	}
}

// Value is NotAsked, Loading, Loaded(v) or Failed(err). The zero value is NotAsked.
type Value[T any] struct {
	kind  Kind
	value T
	err   *model.ApiError
}

func NewNotAsked[T any]() Value[T] { return Value[T]{} }

func NewLoading[T any]() Value[T] { return Value[T]{kind: Loading} }

func NewLoaded[T any](v T) Value[T] { return Value[T]{kind: Loaded, value: v} }

func NewFailed[T any](err *model.ApiError) Value[T] {
	if err == nil {
		err = &model.ApiError{Message: "unknown error"}
	}
	return Value[T]{kind: Failed, err: err}
}

// FromResult maps a finished request onto Loaded or Failed.
func FromResult[T any](v T, err *model.ApiError) Value[T] {
	if err != nil {
		return NewFailed[T](err)
	}
	return NewLoaded(v)
}

func (r Value[T]) Kind() Kind { return r.kind }

func (r Value[T]) IsNotAsked() bool { return r.kind == NotAsked }
func (r Value[T]) IsLoading() bool  { return r.kind == Loading }
func (r Value[T]) IsLoaded() bool   { return r.kind == Loaded }
func (r Value[T]) IsFailed() bool   { return r.kind == Failed }

// Get returns the loaded value; ok is false for every other state.
func (r Value[T]) Get() (T, bool) {
	if r.kind != Loaded {
		var zero T
		return zero, false
	}
	return r.value, true
}

// OrElse returns the loaded value or def.
func (r Value[T]) OrElse(def T) T {
	if v, ok := r.Get(); ok {
		return v
	}
	return def
}

// Err returns the failure, or nil when the value is not Failed.
func (r Value[T]) Err() *model.ApiError {
	if r.kind != Failed {
		return nil
	}
	return r.err
}

// Map transforms a Loaded value and passes every other state through unchanged.
func Map[T, U any](r Value[T], f func(T) U) Value[U] {
	switch r.kind {
	case Loaded:
		return NewLoaded(f(r.value))
	case Loading:
		return NewLoading[U]()
	case Failed:
		return NewFailed[U](r.err)
	default:
		return NewNotAsked[U]()
	}
}
