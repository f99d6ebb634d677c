// Package journal records the control actions operators take through the
// console (game starts, pauses, undos, board and config saves).
package journal

import (
	"context"
	"sync"
	"time"
)

// Entry is one recorded action.
type Entry struct {
	SessionID string
	Action    string
	Detail    string
	OK        bool
	Error     string
	At        time.Time
}

// Recorder persists entries. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

// Memory keeps entries in process; used when no database is configured.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

// NewMemory keeps at most limit entries (0 = unbounded).
func NewMemory(limit int) *Memory { return &Memory{limit: limit} }

func (m *Memory) Record(_ context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	if m.limit > 0 && len(m.entries) > m.limit {
		m.entries = m.entries[len(m.entries)-m.limit:]
	}
	return nil
}

// Entries returns a copy, oldest first.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Recent returns up to limit entries, newest first.
func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}
