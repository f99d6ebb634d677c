package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const defaultQueue = 64

// Loop is a single goroutine that runs posted funcs in order. Everything a
// session owns is touched only from inside it.
type Loop struct {
	queue   chan func()
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	after  func()
	logger *zap.Logger
}

// NewLoop starts the goroutine. after, when set, runs after every func.
func NewLoop(after func(), logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		queue:   make(chan func(), defaultQueue),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		after:   after,
		logger:  logger,
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop_panic", zap.Any("panic", r))
		}
	}()
	fn()
	if l.after != nil {
		l.after()
	}
}

// Post queues fn. It returns false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case <-l.done:
		return false
	case l.queue <- fn:
		return true
	}
}

// Do runs fn on the loop and waits for it. ctx bounds both the wait for a
// queue slot and the wait for fn to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("loop do: %w", ctx.Err())
	case l.queue <- func() { defer close(finished); fn() }:
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("loop do: %w", ctx.Err())
	}
}

// Close stops the loop and waits for the goroutine to exit. Funcs still
// queued are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
	<-l.stopped
}

// Done is closed when Close has been called.
func (l *Loop) Done() <-chan struct{} { return l.done }
