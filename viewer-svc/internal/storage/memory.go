package storage

import (
	"context"
	"sync"

	"cibo-compass/dishcore/viewstate"
	"cibo-compass/viewer-svc/internal/domain"
)

// MemoryStore keeps snapshots for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]viewstate.State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string]viewstate.State{}}
}

func (m *MemoryStore) Save(ctx context.Context, id string, state viewstate.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = state.Clone()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (viewstate.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[id]
	if !ok {
		return viewstate.State{}, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.states, id)
	return nil
}
