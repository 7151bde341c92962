package session

import (
	"context"
	"sync"
	"time"

	"github.com/safar/go-shop/internal/database"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps encoded sessions in process. Used by tests and by the
// memory session backend.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for expiry.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && m.ttl > 0 && !m.now().Before(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, database.ErrSessionNotFound
	}
	return Decode(id, entry.data)
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[s.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	s.MarkSaved()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Purge drops every expired entry and returns how many were removed.
func (m *MemoryStore) Purge(_ context.Context) (int64, error) {
	if m.ttl <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int64
	for id, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}
