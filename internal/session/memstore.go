package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is the fallback when no REDIS_URL is configured. Records expire
// after ttl like their Redis counterparts.
type MemoryStore struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	ttl     time.Duration
	records map[string]memRecord
}

type memRecord struct {
	rec     Record
	expires time.Time
}

func NewMemoryStore(clock clockwork.Clock, ttl time.Duration) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{clock: clock, ttl: ttl, records: make(map[string]memRecord)}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = memRecord{rec: rec, expires: m.clock.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	r, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	now := m.clock.Now()
	if !now.Before(r.expires) {
		m.mu.Lock()
		if cur, ok := m.records[id]; ok && !now.Before(cur.expires) {
			delete(m.records, id)
		}
		m.mu.Unlock()
		return nil, nil
	}
	rec := r.rec
	return &rec, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}
