// Package session runs one console page per browser tab: a headless document,
// its router and views, all driven from a single event loop.
package session

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/park285/board-console/internal/dom"
	"github.com/park285/board-console/internal/journal"
	"github.com/park285/board-console/internal/msgcat"
	"github.com/park285/board-console/internal/router"
	"github.com/park285/board-console/internal/views"
	"github.com/park285/board-console/pkg/consoledto"
)

const outBuffer = 64

// closeTimeout bounds how long Close waits for the loop to deactivate the view.
var closeTimeout = 2 * time.Second

// Options are shared by every session a hub creates.
type Options struct {
	Shell        []byte
	Backend      views.Backend
	Clock        clockwork.Clock
	PollInterval time.Duration
	ReloadDelay  time.Duration
	Messages     *msgcat.Catalog
	Journal      journal.Recorder
	Logger       *zap.Logger

	// OnNavigate runs on the session loop after every navigation.
	OnNavigate func(s *Session, path string)
}

type Session struct {
	ID        string
	CreatedAt time.Time

	loop   *Loop
	doc    *dom.Document
	router *router.Router
	out    chan []consoledto.Patch
	clock  clockwork.Clock
	logger *zap.Logger

	lastSeen atomic.Int64

	mu   sync.Mutex
	path string

	closeOnce sync.Once
}

func New(id string, opts Options) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	doc, err := dom.Parse(bytes.NewReader(opts.Shell))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", id))

	s := &Session{
		ID:        id,
		CreatedAt: opts.Clock.Now(),
		doc:       doc,
		out:       make(chan []consoledto.Patch, outBuffer),
		clock:     opts.Clock,
		logger:    logger,
	}
	s.loop = NewLoop(s.flush, logger)
	s.Touch()

	env := &views.Env{
		SessionID:    id,
		Doc:          doc,
		Backend:      opts.Backend,
		Post:         s.loop.Post,
		Clock:        opts.Clock,
		PollInterval: opts.PollInterval,
		ReloadDelay:  opts.ReloadDelay,
		Messages:     opts.Messages,
		Journal:      opts.Journal,
		Logger:       logger,
	}
	s.router = router.New(doc, views.Factories(env), router.OnNavigate(func(path, viewID string) {
		s.mu.Lock()
		s.path = path
		s.mu.Unlock()
		logger.Debug("navigate", zap.String("path", path), zap.String("view", viewID))
		if opts.OnNavigate != nil {
			opts.OnNavigate(s, path)
		}
	}))
	return s, nil
}

// flush hands the patches produced by the last loop func to the transport.
func (s *Session) flush() {
	p := s.doc.Flush()
	if len(p) == 0 {
		return
	}
	select {
	case s.out <- p:
	case <-s.loop.Done():
	}
}

// Start shows the view for path. push records a history entry, used when a
// resumed session lands somewhere other than the page the browser loaded.
func (s *Session) Start(path string, push bool) {
	s.loop.Post(func() {
		if push {
			s.router.Navigate(path, true)
			return
		}
		s.router.Start(path)
	})
}

// Dispatch forwards a browser event to the loop.
func (s *Session) Dispatch(ev consoledto.ClientEvent) bool {
	s.Touch()
	return s.loop.Post(func() { s.handle(ev) })
}

func (s *Session) handle(ev consoledto.ClientEvent) {
	switch ev.Type {
	case consoledto.EventNavigate:
		s.router.Navigate(ev.Path, true)
	case consoledto.EventPopstate:
		s.router.Popstate(ev.Path)
	default:
		if h, ok := s.router.Active().(views.EventHandler); ok {
			h.HandleEvent(ev)
			return
		}
		s.logger.Debug("event_ignored", zap.String("type", string(ev.Type)), zap.String("target", ev.Target))
	}
}

// Patches delivers batches of patches in loop order.
func (s *Session) Patches() <-chan []consoledto.Patch { return s.out }

// Done is closed once the session is closing.
func (s *Session) Done() <-chan struct{} { return s.loop.Done() }

// Touch marks the session as in use.
func (s *Session) Touch() { s.lastSeen.Store(s.clock.Now().UnixNano()) }

// LastSeen is the time of the last Touch.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Path is the last navigated path.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Do runs fn against the document on the session loop.
func (s *Session) Do(ctx context.Context, fn func(doc *dom.Document)) error {
	return s.loop.Do(ctx, func() { fn(s.doc) })
}

// Close deactivates the live view, which stops its pollers, then stops the loop.
// A loop stuck on an unread patch channel is stopped first and the view is
// deactivated from here once the loop goroutine has exited.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		err := s.loop.Do(ctx, s.router.Close)
		s.loop.Close()
		if err != nil {
			s.logger.Warn("session_close_error", zap.String("session", s.ID), zap.Error(err))
			s.router.Close()
		}
	})
}
