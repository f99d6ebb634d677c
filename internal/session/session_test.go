package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/park285/board-console/internal/backend"
	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/dom"
	"github.com/park285/board-console/pkg/consoledto"
)

const testShell = `<!doctype html><html><body>
<nav id="nav" style="display:none"></nav>
<div id="view-config" class="view"><form id="config-form"><input id="ssid"><button id="config-submit">Save</button></form><div id="config-status"></div></div>
<div id="view-game" class="view" style="display:none">
<div id="white-0" class="player-option">Human</div><div id="black-0" class="player-option">Human</div>
<button id="start-game-btn" disabled>Start</button><button id="sensor-test-btn">Sensor</button>
</div>
<div id="view-board-view" class="view" style="display:none"><div id="board-status"></div><div id="chess-board"></div></div>
<div id="view-board-edit" class="view" style="display:none"><div id="edit-chess-board"></div><button id="undo-button">Undo Last Move</button></div>
</body></html>`

type stubBackend struct{}

func (stubBackend) FetchBoard(context.Context) (board.Snapshot, error) { return board.Snapshot{}, nil }
func (stubBackend) SaveBoard(context.Context, board.Grid) error          { return nil }
func (stubBackend) SelectPlayers(context.Context, backend.PlayerType, backend.PlayerType) (backend.GameSelection, error) {
	return backend.GameSelection{}, nil
}
func (stubBackend) SelectMode(context.Context, int) (backend.GameSelection, error) {
	return backend.GameSelection{}, nil
}
func (stubBackend) PauseState(context.Context) (bool, error)       { return false, nil }
func (stubBackend) SetPaused(_ context.Context, p bool) (bool, error) { return p, nil }
func (stubBackend) UndoMove(context.Context) error                  { return nil }
func (stubBackend) LoadConfig(context.Context) (backend.ControllerConfig, error) {
	return backend.ControllerConfig{}, nil
}
func (stubBackend) SaveConfig(context.Context, backend.ControllerConfig) (backend.ConfigResult, error) {
	return backend.ConfigResult{Status: "success"}, nil
}

func testOptions(clock clockwork.Clock) Options {
	return Options{Shell: []byte(testShell), Backend: stubBackend{}, Clock: clock}
}

// waitPatch reads batches until one holds a patch matching fn.
func waitPatch(t *testing.T, s *Session, fn func(consoledto.Patch) bool) consoledto.Patch {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case batch := <-s.Patches():
			for _, p := range batch {
				if fn(p) {
					return p
				}
			}
		case <-timeout:
			t.Fatalf("patch not seen")
			return consoledto.Patch{}
		}
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	st := NewRedisStore(rdb, time.Hour)
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := st.Save(ctx, Record{ID: "abc", LastPath: "/board-edit", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Load(ctx, "abc")
	if err != nil || got == nil {
		t.Fatalf("Load: %v %v", got, err)
	}
	if got.LastPath != "/board-edit" || !got.CreatedAt.Equal(now) {
		t.Fatalf("record = %+v", got)
	}
	if ttl := mr.TTL("console:session:abc"); ttl != time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if got, err := st.Load(ctx, "abc"); err != nil || got != nil {
		t.Fatalf("expired record still loaded: %v %v", got, err)
	}
	if err := st.Save(ctx, Record{}); err != ErrEmptyID {
		t.Fatalf("empty id: %v", err)
	}
}

func TestOpenRedisParsesURL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rdb, err := OpenRedis(context.Background(), fmt.Sprintf("redis://%s/2", mr.Addr()))
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer rdb.Close()
	if rdb.Options().DB != 2 {
		t.Fatalf("db = %d", rdb.Options().DB)
	}
	if _, err := OpenRedis(context.Background(), "http://localhost:6379"); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	st := NewMemoryStore(clock, time.Minute)
	ctx := context.Background()
	if err := st.Save(ctx, Record{ID: "x", LastPath: "/game"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := st.Load(ctx, "x"); got == nil || got.LastPath != "/game" {
		t.Fatalf("Load = %+v", got)
	}
	clock.Advance(time.Minute)
	if got, _ := st.Load(ctx, "x"); got != nil {
		t.Fatalf("record should have expired")
	}
}

func TestLoopRunsInOrderAndSurvivesPanic(t *testing.T) {
	var flushed atomic.Int32
	l := NewLoop(func() { flushed.Add(1) }, nil)
	var seen []int
	for i := 0; i < 3; i++ {
		l.Post(func() { seen = append(seen, i) })
	}
	l.Post(func() { panic("boom") })
	if err := l.Do(context.Background(), func() { seen = append(seen, 99) }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if fmt.Sprint(seen) != "[0 1 2 99]" {
		t.Fatalf("order = %v", seen)
	}
	if n := flushed.Load(); n < 3 {
		t.Fatalf("after hook ran %d times", n)
	}
	l.Close()
	if l.Post(func() {}) {
		t.Fatalf("Post after Close should fail")
	}
	if err := l.Do(context.Background(), func() {}); err != ErrClosed {
		t.Fatalf("Do after Close: %v", err)
	}
}

func TestLoopDoGivesUpOnFullQueue(t *testing.T) {
	l := NewLoop(nil, nil)
	release := make(chan struct{})
	l.Post(func() { <-release })
	for i := 0; i < defaultQueue; i++ {
		l.Post(func() {})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	ran := false
	err := l.Do(ctx, func() { ran = true })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do = %v, want deadline exceeded", err)
	}
	close(release)
	l.Close()
	if ran {
		t.Fatalf("fn ran although Do gave up before queueing it")
	}
}

func TestSessionStreamsPatches(t *testing.T) {
	s, err := New("s1", testOptions(clockwork.NewFakeClock()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	s.Start("/game", false)
	waitPatch(t, s, func(p consoledto.Patch) bool {
		return p.Op == consoledto.OpDisplay && p.ID == "view-game" && p.Value == "block"
	})
	s.Dispatch(consoledto.ClientEvent{Type: consoledto.EventClick, Target: "white-0"})
	waitPatch(t, s, func(p consoledto.Patch) bool {
		return p.Op == consoledto.OpClassAdd && p.ID == "white-0" && p.Value == "selected"
	})

	s.Dispatch(consoledto.ClientEvent{Type: consoledto.EventNavigate, Path: "/board-edit"})
	waitPatch(t, s, func(p consoledto.Patch) bool {
		return p.Op == consoledto.OpHistoryPush && p.Value == "/board-edit"
	})
	if err := s.Do(context.Background(), func(doc *dom.Document) {
		if !doc.Get("view-board-edit").Visible() || doc.Get("view-game").Visible() {
			t.Fatalf("wrong view visible")
		}
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if s.Path() != "/board-edit" {
		t.Fatalf("path = %q", s.Path())
	}
}

func TestHubResumesStoredPath(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock, time.Hour)
	hub := NewHub(HubOptions{Session: testOptions(nil), Store: store, Clock: clock, IdleTimeout: time.Minute})
	defer hub.Close()
	ctx := context.Background()

	s1, err := hub.Open(ctx, "not-a-uuid", "/game")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s1.ID == "not-a-uuid" {
		t.Fatalf("invalid id must be replaced")
	}
	waitPatch(t, s1, func(p consoledto.Patch) bool { return p.ID == "view-game" && p.Value == "block" })

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec, _ := store.Load(ctx, s1.ID)
		if rec != nil && rec.LastPath == "/game" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("navigation not stored")
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.Release(s1)

	s2, err := hub.Open(ctx, s1.ID, "/")
	if err != nil {
		t.Fatalf("Open resume: %v", err)
	}
	if s2.ID != s1.ID {
		t.Fatalf("resumed id = %q want %q", s2.ID, s1.ID)
	}
	waitPatch(t, s2, func(p consoledto.Patch) bool {
		return p.Op == consoledto.OpHistoryPush && p.Value == "/game"
	})
}

func TestHubReapsIdleSessions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	hub := NewHub(HubOptions{Session: testOptions(nil), Clock: clock, IdleTimeout: time.Minute})
	defer hub.Close()

	s, err := hub.Open(context.Background(), "", "/game")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n := hub.Reap(); n != 0 {
		t.Fatalf("fresh session reaped")
	}
	clock.Advance(2 * time.Minute)
	if n := hub.Reap(); n != 1 {
		t.Fatalf("reaped %d, want 1", n)
	}
	if hub.Len() != 0 {
		t.Fatalf("live sessions = %d", hub.Len())
	}
	select {
	case <-s.Done():
	default:
		t.Fatalf("reaped session still running")
	}
}

func TestCloseWithUnreadPatchesStopsViews(t *testing.T) {
	prev := closeTimeout
	closeTimeout = 100 * time.Millisecond
	t.Cleanup(func() { closeTimeout = prev })

	s, err := New("s-stuck", testOptions(clockwork.NewFakeClock()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start("/board-edit", false)

	// nobody reads Patches, so the loop ends up blocked handing over a batch
	go func() {
		paths := []string{"/game", "/board-view"}
		for i := 0; ; i++ {
			if !s.Dispatch(consoledto.ClientEvent{Type: consoledto.EventNavigate, Path: paths[i%2]}) {
				return
			}
		}
	}()
	deadline := time.Now().Add(2 * time.Second)
	for len(s.out) < outBuffer {
		if time.Now().After(deadline) {
			t.Fatalf("patch buffer never filled: %d", len(s.out))
		}
		time.Sleep(5 * time.Millisecond)
	}

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close hung with a full patch buffer")
	}
	if s.router.Active() != nil {
		t.Fatalf("active view left running after Close")
	}
}
