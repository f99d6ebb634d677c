package journal

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMemoryKeepsNewest(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()
	for _, a := range []string{"pause", "undo", "save_board"} {
		if err := m.Record(ctx, Entry{Action: a, OK: true}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got := m.Entries()
	if len(got) != 2 || got[0].Action != "undo" || got[1].Action != "save_board" {
		t.Fatalf("entries = %+v", got)
	}
	if got[0].At.IsZero() {
		t.Fatalf("timestamp should be filled")
	}
	recent, _ := m.Recent(ctx, 1)
	if len(recent) != 1 || recent[0].Action != "save_board" {
		t.Fatalf("recent = %+v", recent)
	}
}

func TestNormalize(t *testing.T) {
	e := normalize(Entry{SessionID: " s1 ", Action: " undo ", Detail: strings.Repeat("x", 2000)})
	if e.SessionID != "s1" || e.Action != "undo" || len(e.Detail) != 1024 {
		t.Fatalf("normalize = %+v", e)
	}
	if time.Since(e.At) > time.Minute {
		t.Fatalf("At not set")
	}
}

func TestNewRepositoryRequiresURL(t *testing.T) {
	if _, err := NewRepository("  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
