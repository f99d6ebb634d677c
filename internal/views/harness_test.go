package views

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/park285/board-console/internal/backend"
	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/dom"
	"github.com/park285/board-console/internal/journal"
	"github.com/park285/board-console/pkg/consoledto"
)

const shell = `<!doctype html><html><body>
<nav id="nav" style="display:none"></nav>
<div id="view-config" class="view" style="display:none">
  <form id="config-form">
    <input id="ssid" name="ssid"><input id="password" name="password" type="password">
    <input id="token" name="token"><input id="gameMode" name="gameMode"><input id="startupType" name="startupType">
    <button id="config-submit" type="submit">Save</button>
  </form>
  <div id="config-status"></div>
</div>
<div id="view-game" class="view" style="display:none">
  <div id="white-0" class="player-option">Human</div><div id="white-1" class="player-option">Easy AI</div>
  <div id="white-2" class="player-option">Medium AI</div><div id="white-3" class="player-option">Hard AI</div>
  <div id="black-0" class="player-option">Human</div><div id="black-1" class="player-option">Easy AI</div>
  <div id="black-2" class="player-option">Medium AI</div><div id="black-3" class="player-option">Hard AI</div>
  <button id="start-game-btn" disabled>Start Game</button>
  <button id="sensor-test-btn">Sensor Test</button>
  <button id="mode-1">1</button><button id="mode-2">2</button><button id="mode-3">3</button><button id="mode-5">5</button>
</div>
<div id="view-board-view" class="view" style="display:none">
  <div id="board-status">Board state: Loading...</div>
  <div id="board-container" style="display:none"><div id="chess-board"></div></div>
  <div id="no-board-message" style="display:none">No board</div>
  <div id="eval-bar"></div><div id="eval-arrow"></div><div id="eval-text"></div>
  <div id="pgn-section" style="display:none"><pre id="pgn-display"></pre></div>
  <div id="fen-line"></div>
</div>
<div id="view-board-edit" class="view" style="display:none">
  <div id="edit-chess-board"></div>
  <button id="pause-toggle" class="secondary">Pause Move Detection</button>
  <button id="undo-button" style="display:none">Undo Last Move</button>
  <div id="edit-status"></div>
  <button id="save-board-btn">Save Board</button>
  <button id="reset-board-btn" data-confirm="Reset?">Reset</button>
</div>
</body></html>`

type fakeBackend struct {
	mu sync.Mutex

	snapshot board.Snapshot
	fetchErr error
	gate     chan struct{}

	paused    bool
	stateErr  error
	pauseErr  error
	undoErr   error
	saveErr   error
	saved     []board.Grid
	selectErr error
	config    backend.ControllerConfig
	configRes backend.ConfigResult
	savedCfg  []backend.ControllerConfig

	fetches, pauseChecks, selects, modes, undos atomic.Int32
}

func (f *fakeBackend) FetchBoard(ctx context.Context) (board.Snapshot, error) {
	f.fetches.Add(1)
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, f.fetchErr
}

func (f *fakeBackend) SaveBoard(_ context.Context, g board.Grid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, g)
	return f.saveErr
}

func (f *fakeBackend) SelectPlayers(_ context.Context, white, black backend.PlayerType) (backend.GameSelection, error) {
	f.selects.Add(1)
	return backend.GameSelection{Status: "success"}, f.selectErr
}

func (f *fakeBackend) SelectMode(_ context.Context, mode int) (backend.GameSelection, error) {
	f.modes.Add(1)
	return backend.GameSelection{Status: "success"}, f.selectErr
}

func (f *fakeBackend) PauseState(context.Context) (bool, error) {
	f.pauseChecks.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stateErr != nil {
		return false, f.stateErr
	}
	return f.paused, nil
}

func (f *fakeBackend) SetPaused(_ context.Context, paused bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pauseErr != nil {
		return f.paused, f.pauseErr
	}
	f.paused = paused
	return paused, nil
}

func (f *fakeBackend) UndoMove(context.Context) error {
	f.undos.Add(1)
	return f.undoErr
}

func (f *fakeBackend) LoadConfig(context.Context) (backend.ControllerConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config, nil
}

func (f *fakeBackend) SaveConfig(_ context.Context, cfg backend.ControllerConfig) (backend.ConfigResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedCfg = append(f.savedCfg, cfg)
	return f.configRes, nil
}

type harness struct {
	t       *testing.T
	doc     *dom.Document
	be      *fakeBackend
	clock   *clockwork.FakeClock
	env     *Env
	logs    *observer.ObservedLogs
	journal *journal.Memory

	mu      sync.Mutex
	patches []consoledto.Patch
}

// newHarness runs a single goroutine that plays the session loop.
func newHarness(t *testing.T) *harness {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(shell))
	if err != nil {
		t.Fatalf("parse shell: %v", err)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	h := &harness{
		t:       t,
		doc:     doc,
		be:      &fakeBackend{},
		clock:   clockwork.NewFakeClock(),
		logs:    logs,
		journal: journal.NewMemory(100),
	}

	queue := make(chan func(), 256)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case fn := <-queue:
				fn()
				if p := doc.Flush(); len(p) > 0 {
					h.mu.Lock()
					h.patches = append(h.patches, p...)
					h.mu.Unlock()
				}
			case <-stop:
				return
			}
		}
	}()
	t.Cleanup(func() { close(stop) })

	h.env = &Env{
		SessionID:    "test",
		Doc:          doc,
		Backend:      h.be,
		Post: func(fn func()) bool {
			select {
			case <-stop:
				return false
			case queue <- fn:
				return true
			}
		},
		Clock:        h.clock,
		PollInterval: 2 * time.Second,
		ReloadDelay:  1500 * time.Millisecond,
		Journal:      h.journal,
		Logger:       zap.New(core),
	}
	return h
}

// do runs fn on the loop and waits for it.
func (h *harness) do(fn func()) {
	h.t.Helper()
	done := make(chan struct{})
	if !h.env.Post(func() { defer close(done); fn() }) {
		h.t.Fatalf("loop stopped")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		h.t.Fatalf("loop did not run posted func")
	}
}

// eventually polls cond on the loop until it holds.
func (h *harness) eventually(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		var ok bool
		h.do(func() { ok = cond() })
		if ok {
			return
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (h *harness) alerts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, p := range h.patches {
		if p.Op == consoledto.OpAlert {
			out = append(out, p.Value)
		}
	}
	return out
}

func (h *harness) lastChildren(id string) (consoledto.Patch, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.patches) - 1; i >= 0; i-- {
		if p := h.patches[i]; p.Op == consoledto.OpChildren && p.ID == id {
			return p, true
		}
	}
	return consoledto.Patch{}, false
}

func (h *harness) text(id string) string {
	var s string
	h.do(func() { s = h.doc.Get(id).Text() })
	return s
}

func (h *harness) blockUntilWaiters(n int) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.clock.BlockUntilContext(ctx, n); err != nil {
		h.t.Fatalf("waiting for %d clock waiters: %v", n, err)
	}
}

func clickEvent(id string) consoledto.ClientEvent {
	return consoledto.ClientEvent{Type: consoledto.EventClick, Target: id}
}

func changeEvent(id, value string) consoledto.ClientEvent {
	return consoledto.ClientEvent{Type: consoledto.EventChange, Target: id, Value: value}
}
