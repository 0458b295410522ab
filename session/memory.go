package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Persist(_ context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.AccountID] = s.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, accountID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[accountID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(m.now()) {
		m.mu.Lock()
		if cur, ok := m.sessions[accountID]; ok && cur == s {
			delete(m.sessions, accountID)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Remove(_ context.Context, accountID string) error {
	m.mu.Lock()
	delete(m.sessions, accountID)
	m.mu.Unlock()
	return nil
}

// Accounts lists account IDs with a live session, sorted.
func (m *MemoryStore) Accounts(_ context.Context) ([]string, error) {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.sessions))
	for id, s := range m.sessions {
		if !s.Expired(now) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
