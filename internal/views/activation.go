package views

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// activation scopes async work to one controller lifetime. Every begin bumps
// the generation; completions from an older generation are dropped.
type activation struct {
	env    *Env
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
	live   bool
	timers []clockwork.Timer
}

func (a *activation) begin() {
	a.halt()
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.gen++
	a.live = true
}

func (a *activation) end() {
	a.halt()
	a.gen++
	a.live = false
}

func (a *activation) halt() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	for _, t := range a.timers {
		t.Stop()
	}
	a.timers = nil
}

func (a *activation) current(gen uint64) bool { return a.live && a.gen == gen }

// after runs fn on the loop once d has passed, unless the activation moved on.
func (a *activation) after(d time.Duration, fn func()) {
	gen := a.gen
	t := a.env.Clock.AfterFunc(d, func() {
		a.env.Post(func() {
			if a.current(gen) {
				fn()
			}
		})
	})
	a.timers = append(a.timers, t)
}

// call runs fn off the loop and hands its result to done on the loop.
func call[T any](a *activation, name string, fn func(ctx context.Context) (T, error), done func(T, error)) {
	if !a.live {
		return
	}
	gen, ctx, env := a.gen, a.ctx, a.env
	go func() {
		v, err := fn(ctx)
		env.Post(func() {
			if !a.current(gen) {
				env.Logger.Debug("stale_response_dropped", zap.String("call", name), zap.String("session", env.SessionID))
				return
			}
			done(v, err)
		})
	}()
}

// exec is call for operations without a result value.
func exec(a *activation, name string, fn func(ctx context.Context) error, done func(error)) {
	call(a, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, func(_ struct{}, err error) { done(err) })
}
