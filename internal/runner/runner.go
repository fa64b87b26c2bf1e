// Package runner executes effect descriptions and turns their outcomes back
// into messages.
//
// Cmd adapts an effect to a bubbletea command for the interactive program.
// Resolve executes an effect synchronously, firing timers immediately, for
// headless use and tests.
package runner

import (
	"context"
	"log/slog"
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/effect"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultTimeout = 15 * time.Second

type Runner struct {
	backend   api.Backend
	log       *slog.Logger
	timeout   time.Duration
	clipboard func(string) error
}

type Option func(*Runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithClipboard(write func(string) error) Option {
	return func(r *Runner) {
		if write != nil {
			r.clipboard = write
		}
	}
}

func New(b api.Backend, opts ...Option) *Runner {
	r := &Runner{
		backend:   b,
		log:       slog.New(slog.DiscardHandler),
		timeout:   defaultTimeout,
		clipboard: CopyToClipboard,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Cmd returns nil for effects that do nothing.
func (r *Runner) Cmd(eff effect.Effect) tea.Cmd {
	leaves := effect.Flatten(eff)
	if len(leaves) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(leaves))
	for _, e := range leaves {
		if c := r.leafCmd(e); c != nil {
			cmds = append(cmds, c)
		}
	}
	return tea.Batch(cmds...)
}

func (r *Runner) leafCmd(e effect.Effect) tea.Cmd {
	switch e := e.(type) {
	case effect.Runnable:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			defer cancel()
			return r.call(ctx, e)
		}
	case effect.After:
		msg := e.Msg
		return tea.Tick(e.Delay, func(time.Time) tea.Msg { return msg })
	case effect.Clipboard:
		return func() tea.Msg { return r.copy(e) }
	default:
		r.log.Warn("effect not runnable", "type", typeName(e))
		return nil
	}
}

// Resolve runs eff to completion and returns the resulting messages in
// effect order. Timers fire immediately.
func (r *Runner) Resolve(ctx context.Context, eff effect.Effect) []effect.Msg {
	var out []effect.Msg
	for _, e := range effect.Flatten(eff) {
		switch e := e.(type) {
		case effect.Runnable:
			cctx, cancel := context.WithTimeout(ctx, r.timeout)
			out = append(out, r.call(cctx, e))
			cancel()
		case effect.After:
			out = append(out, e.Msg)
		case effect.Clipboard:
			out = append(out, r.copy(e))
		default:
			r.log.Warn("effect not runnable", "type", typeName(e))
		}
	}
	return out
}

func (r *Runner) call(ctx context.Context, e effect.Runnable) effect.Msg {
	start := time.Now()
	msg, err := e.Run(ctx, r.backend)
	if err != nil {
		r.log.Warn("api call failed", "op", e.Op(), "status", err.Status, "message", err.Message, "dur", time.Since(start))
		return msg
	}
	r.log.Debug("api call", "op", e.Op(), "dur", time.Since(start))
	return msg
}

func (r *Runner) copy(e effect.Clipboard) effect.Msg {
	err := r.clipboard(e.Text)
	if err != nil {
		r.log.Warn("clipboard write failed", "err", err)
	}
	if e.Wrap == nil {
		return nil
	}
	return e.Wrap(err)
}

func typeName(e effect.Effect) string {
	switch e.(type) {
	case effect.Toast:
		return "toast"
	case effect.ResetSession:
		return "reset_session"
	default:
		return "unknown"
	}
}
