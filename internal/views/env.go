// Package views holds the console's view controllers. Controllers run on
// their session's event loop; backend calls run in goroutines and post their
// results back to the loop.
package views

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/park285/board-console/internal/backend"
	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/dom"
	"github.com/park285/board-console/internal/journal"
	"github.com/park285/board-console/internal/msgcat"
	"github.com/park285/board-console/internal/router"
	"github.com/park285/board-console/pkg/consoledto"
)

// Backend is the slice of the controller API the views use.
type Backend interface {
	FetchBoard(ctx context.Context) (board.Snapshot, error)
	SaveBoard(ctx context.Context, g board.Grid) error
	SelectPlayers(ctx context.Context, white, black backend.PlayerType) (backend.GameSelection, error)
	SelectMode(ctx context.Context, mode int) (backend.GameSelection, error)
	PauseState(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) (bool, error)
	UndoMove(ctx context.Context) error
	LoadConfig(ctx context.Context) (backend.ControllerConfig, error)
	SaveConfig(ctx context.Context, cfg backend.ControllerConfig) (backend.ConfigResult, error)
}

// Poster schedules fn on the owning event loop. It returns false once the
// loop has stopped.
type Poster func(fn func()) bool

const (
	DefaultPollInterval = 2 * time.Second
	DefaultReloadDelay  = 1500 * time.Millisecond

	colorOK      = "#4CAF50"
	colorError   = "#F44336"
	colorNeutral = "#ec8703"
)

// Env is what every controller of a session shares.
type Env struct {
	SessionID    string
	Doc          *dom.Document
	Backend      Backend
	Post         Poster
	Clock        clockwork.Clock
	PollInterval time.Duration
	ReloadDelay  time.Duration
	Messages     *msgcat.Catalog
	Journal      journal.Recorder
	Logger       *zap.Logger
}

func (e *Env) fill() {
	if e.Clock == nil {
		e.Clock = clockwork.NewRealClock()
	}
	if e.PollInterval <= 0 {
		e.PollInterval = DefaultPollInterval
	}
	if e.ReloadDelay <= 0 {
		e.ReloadDelay = DefaultReloadDelay
	}
	if e.Messages == nil {
		e.Messages = msgcat.Default()
	}
	if e.Journal == nil {
		e.Journal = journal.Nop{}
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
}

func (e *Env) text(key string, data any) string { return e.Messages.Text(key, data) }

func (e *Env) record(ctx context.Context, action, detail string, err error) {
	entry := journal.Entry{SessionID: e.SessionID, Action: action, Detail: detail, OK: err == nil, At: e.Clock.Now()}
	if err != nil {
		entry.Error = err.Error()
	}
	if jerr := e.Journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
		e.Logger.Warn("journal_record_failed", zap.String("action", action), zap.Error(jerr))
	}
}

// EventHandler is implemented by controllers that react to page events.
type EventHandler interface {
	HandleEvent(ev consoledto.ClientEvent)
}

// Factories wires one constructor per view id.
func Factories(env *Env) map[string]router.Factory {
	env.fill()
	return map[string]router.Factory{
		router.ViewConfig:    func() router.Controller { return NewConfigView(env) },
		router.ViewGame:      func() router.Controller { return NewGameView(env) },
		router.ViewBoardView: func() router.Controller { return NewBoardView(env) },
		router.ViewBoardEdit: func() router.Controller { return NewBoardEdit(env) },
	}
}
