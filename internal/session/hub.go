package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	DefaultIdleTimeout = 30 * time.Minute
	storeTimeout       = 2 * time.Second
)

type HubOptions struct {
	Session     Options
	Store       Store
	Clock       clockwork.Clock
	IdleTimeout time.Duration
	Logger      *zap.Logger
}

// Hub owns the live sessions of the process.
type Hub struct {
	opts   Options
	store  Store
	clock  clockwork.Clock
	idle   time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewHub(o HubOptions) *Hub {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Store == nil {
		o.Store = NewMemoryStore(o.Clock, DefaultTTL)
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	h := &Hub{
		store:    o.Store,
		clock:    o.Clock,
		idle:     o.IdleTimeout,
		logger:   o.Logger,
		sessions: make(map[string]*Session),
	}
	h.opts = o.Session
	if h.opts.Clock == nil {
		h.opts.Clock = o.Clock
	}
	if h.opts.Logger == nil {
		h.opts.Logger = o.Logger
	}
	h.opts.OnNavigate = h.navigated
	return h
}

// Open starts a session for a freshly loaded page. A known requestedID keeps
// its id, and a page loaded at "/" resumes the stored path.
func (h *Hub) Open(ctx context.Context, requestedID, path string) (*Session, error) {
	id := strings.TrimSpace(requestedID)
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			id = ""
		}
	}

	var rec *Record
	if id != "" {
		loaded, err := h.store.Load(ctx, id)
		if err != nil {
			h.logger.Warn("session_load_error", zap.String("session", id), zap.Error(err))
		}
		rec = loaded
	}
	if rec == nil {
		id = uuid.NewString()
	}

	start, push := path, false
	if start == "" {
		start = "/"
	}
	if rec != nil && start == "/" && rec.LastPath != "" && rec.LastPath != "/" {
		start, push = rec.LastPath, true
	}

	s, err := New(id, h.opts)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.CreatedAt = rec.CreatedAt
	}

	h.mu.Lock()
	prev := h.sessions[id]
	h.sessions[id] = s
	n := len(h.sessions)
	h.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	h.logger.Info("session_open",
		zap.String("session", id),
		zap.String("path", start),
		zap.Bool("resumed", rec != nil),
		zap.Int("live", n),
	)
	s.Start(start, push)
	return s, nil
}

func (h *Hub) navigated(s *Session, path string) {
	rec := Record{ID: s.ID, LastPath: path, CreatedAt: s.CreatedAt, UpdatedAt: h.clock.Now()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := h.store.Save(ctx, rec); err != nil {
			h.logger.Warn("session_save_error", zap.String("session", rec.ID), zap.Error(err))
		}
	}()
}

// Get returns the live session with id, if any.
func (h *Hub) Get(id string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

// Len is the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Release tears s down. The stored record stays so a reload can resume.
func (h *Hub) Release(s *Session) {
	if s == nil {
		return
	}
	h.mu.Lock()
	if h.sessions[s.ID] == s {
		delete(h.sessions, s.ID)
	}
	h.mu.Unlock()
	s.Close()
	h.logger.Info("session_close", zap.String("session", s.ID), zap.String("path", s.Path()))
}

// Reap releases sessions idle for longer than the idle timeout and returns
// how many it closed.
func (h *Hub) Reap() int {
	now := h.clock.Now()
	var stale []*Session
	h.mu.Lock()
	for _, s := range h.sessions {
		if now.Sub(s.LastSeen()) > h.idle {
			stale = append(stale, s)
		}
	}
	h.mu.Unlock()
	for _, s := range stale {
		h.logger.Info("session_reaped", zap.String("session", s.ID))
		h.Release(s)
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	every := h.idle / 2
	if every < time.Second {
		every = time.Second
	}
	t := h.clock.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			h.Reap()
		}
	}
}

// Close releases every live session.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.mu.Unlock()
	for _, s := range all {
		h.Release(s)
	}
}
