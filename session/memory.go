package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process. It is used when Redis is unavailable
// and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.sessions[id]
	if !ok {
		return Session{}, nil
	}
	return FromFields(fields), nil
}

func (m *MemoryStore) Set(ctx context.Context, id string, s Session) error {
	m.mu.Lock()
	m.sessions[id] = s.Fields()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
