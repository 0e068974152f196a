package state

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps sessions in process memory. It is the default store;
// hosts that need survival across restarts use UpstashRedisStore instead.
// Snapshots are deep copies via JSON so callers never share mutable state
// with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	m.mu.RLock()
	raw, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}
	var st SessionState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (m *MemoryStore) Save(ctx context.Context, st *SessionState) error {
	if st == nil {
		return ErrNilSessionState
	}
	if st.SessionID == "" {
		return ErrEmptySessionID
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[st.SessionID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}
