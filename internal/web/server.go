package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/render"
	"github.com/park285/board-console/internal/router"
	"github.com/park285/board-console/internal/session"
)

// BoardSource is what the snapshot and health endpoints need from the backend.
type BoardSource interface {
	FetchBoard(ctx context.Context) (board.Snapshot, error)
	Ping(ctx context.Context) error
}

type Server struct {
	hub     *session.Hub
	backend BoardSource
	png     *render.PNGRenderer
	shell   []byte
	logger  *zap.Logger

	pingInterval  time.Duration
	originPattern []string
	mux           *http.ServeMux
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPingInterval sets how often idle sockets are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithOriginPatterns allows cross-origin websocket handshakes from hosts
// matching the patterns.
func WithOriginPatterns(p ...string) Option {
	return func(s *Server) { s.originPattern = append(s.originPattern, p...) }
}

func NewServer(hub *session.Hub, backend BoardSource, opts ...Option) *Server {
	s := &Server{
		hub:          hub,
		backend:      backend,
		png:          render.NewPNGRenderer(),
		shell:        Shell(),
		logger:       zap.NewNop(),
		pingInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	mux := http.NewServeMux()
	for _, p := range router.Paths() {
		if p == "/" {
			mux.HandleFunc("GET /{$}", s.handleShell)
			continue
		}
		mux.HandleFunc("GET "+p, s.handleShell)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())))
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /snapshot.png", s.handleSnapshot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux = mux
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(s.shell)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := s.backend.FetchBoard(ctx)
	if err != nil {
		s.logger.Warn("snapshot_fetch_error", zap.Error(err))
		http.Error(w, "board unavailable", http.StatusBadGateway)
		return
	}
	if !snap.Valid {
		http.Error(w, "no board state", http.StatusNotFound)
		return
	}

	opts := render.PNGOptions{Evaluation: snap.Evaluation}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.SquareSize = n
		}
	}
	if t := r.URL.Query().Get("title"); t != "" {
		opts.Title = t
	}
	img, err := s.png.Render(ctx, snap.Grid, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("snapshot_render_error", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.backend.Ping(ctx); err != nil {
		s.logger.Warn("health_backend_unreachable", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("backend unreachable\n"))
		return
	}
	_, _ = w.Write([]byte("ok sessions=" + strconv.Itoa(s.hub.Len()) + "\n"))
}
