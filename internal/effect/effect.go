// Package effect describes side effects as data.
//
// Reducers return an Effect; they never perform I/O. A runner interprets the
// description and feeds result messages back into the reducer.
package effect

import (
	"context"
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Msg is anything the reducer can receive.
type Msg = tea.Msg

type Effect interface {
	effect()
}

// None performs nothing.
type None struct{}

// Batched runs every effect; ordering of completion is not defined.
type Batched struct {
	Effects []Effect
}

// Runnable is an effect that needs the backend. Run also reports the
// normalized failure so the caller can log it; the message carries it too.
type Runnable interface {
	Effect
	Op() string
	Run(ctx context.Context, b api.Backend) (Msg, *model.ApiError)
}

// Call performs Request and turns the outcome into a message with Wrap.
// Wrap must be a plain constructor of the feature's result message.
type Call[T any] struct {
	Request api.Request[T]
	Wrap    func(api.Result[T]) Msg
}

func (c Call[T]) Op() string { return c.Request.Op() }

func (c Call[T]) Run(ctx context.Context, b api.Backend) (Msg, *model.ApiError) {
	v, err := c.Request.Do(ctx, b)
	res := api.NewResult(v, err)
	return c.Wrap(res), res.Err
}

// After delivers Msg once Delay has elapsed.
type After struct {
	Delay time.Duration
	Msg   Msg
}

type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// Toast asks for a transient notification. The root reducer absorbs it into
// UI state; runners never see it.
type Toast struct {
	Text  string
	Level ToastLevel
}

// Clipboard writes Text and reports the outcome through Wrap (nil on success).
type Clipboard struct {
	Text string
	Wrap func(error) Msg
}

// ResetSession clears the session and routes to the login page. Like Toast,
// the root reducer absorbs it.
type ResetSession struct{}

func (None) effect()         {}
func (Batched) effect()      {}
func (Call[T]) effect()      {}
func (After) effect()        {}
func (Toast) effect()        {}
func (Clipboard) effect()    {}
func (ResetSession) effect() {}

// Batch combines effects, dropping None/nil and unwrapping single entries.
func Batch(effs ...Effect) Effect {
	out := make([]Effect, 0, len(effs))
	for _, e := range effs {
		switch e := e.(type) {
		case nil, None:
			continue
		case Batched:
			out = append(out, e.Effects...)
		default:
			out = append(out, e)
		}
	}
	switch len(out) {
	case 0:
		return None{}
	case 1:
		return out[0]
	default:
		return Batched{Effects: out}
	}
}

// IsNone reports whether e performs nothing.
func IsNone(e Effect) bool {
	return len(Flatten(e)) == 0
}

// Flatten returns the leaf effects of e in order.
func Flatten(e Effect) []Effect {
	var out []Effect
	var walk func(Effect)
	walk = func(e Effect) {
		switch e := e.(type) {
		case nil, None:
		case Batched:
			for _, x := range e.Effects {
				walk(x)
			}
		default:
			out = append(out, e)
		}
	}
	walk(e)
	return out
}

// Collect returns every leaf effect of type E.
func Collect[E Effect](e Effect) []E {
	var out []E
	for _, x := range Flatten(e) {
		if v, ok := x.(E); ok {
			out = append(out, v)
		}
	}
	return out
}

// Calls returns every backend call in e.
func Calls(e Effect) []Runnable {
	return Collect[Runnable](e)
}
