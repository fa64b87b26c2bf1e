package runner

import (
	"context"
	"fmt"

	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/effect"
)

const maxSteps = 1000

// Driver runs the state engine headless: every message goes through
// app.Reduce and the resulting backend and clipboard work is executed
// synchronously. Timers are held until Fire so callers control the clock.
type Driver struct {
	State  app.State
	r      *Runner
	timers []effect.After
}

// NewDriver boots the engine with opts and runs the boot effect.
func NewDriver(ctx context.Context, r *Runner, opts app.Options) (*Driver, error) {
	s, boot := app.New(opts)
	d := &Driver{State: s, r: r}
	if err := d.run(ctx, boot); err != nil {
		return nil, err
	}
	return d, nil
}

// Send reduces msgs in order and settles their effects.
func (d *Driver) Send(ctx context.Context, msgs ...effect.Msg) error {
	for _, m := range msgs {
		next, eff := app.Reduce(d.State, m)
		d.State = next
		if err := d.run(ctx, eff); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns the timers waiting to fire.
func (d *Driver) Pending() []effect.After {
	return append([]effect.After(nil), d.timers...)
}

// Fire delivers every pending timer, oldest first, and settles the result.
func (d *Driver) Fire(ctx context.Context) error {
	timers := d.timers
	d.timers = nil
	for _, t := range timers {
		if err := d.Send(ctx, t.Msg); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) run(ctx context.Context, eff effect.Effect) error {
	queue := []effect.Effect{eff}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > maxSteps {
			return fmt.Errorf("effects did not settle after %d steps", maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		e := queue[0]
		queue = queue[1:]

		var now []effect.Effect
		for _, leaf := range effect.Flatten(e) {
			if t, ok := leaf.(effect.After); ok {
				d.timers = append(d.timers, t)
				continue
			}
			now = append(now, leaf)
		}
		for _, m := range d.r.Resolve(ctx, effect.Batch(now...)) {
			if m == nil {
				continue
			}
			next, out := app.Reduce(d.State, m)
			d.State = next
			queue = append(queue, out)
		}
	}
	return nil
}
