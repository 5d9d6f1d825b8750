package statestore

import (
	"context"
	"sync"

	"acgs-hq/quorum/pkg/selection"
)

// Store persists bandit arm posteriors across restarts.
type Store interface {
	// Save upserts the given arm states.
	Save(ctx context.Context, states []selection.ArmState) error

	// Load returns all persisted arm states.
	Load(ctx context.Context) ([]selection.ArmState, error)

	// Delete removes the state for a single arm.
	Delete(ctx context.Context, templateID string) error

	// Close releases backend resources.
	Close() error
}

// MemoryStore implements Store using an in-memory map.
// This implementation is intended for testing and ephemeral deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]selection.ArmState
}

// NewMemoryStore creates a new in-memory arm state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]selection.ArmState),
	}
}

// Save upserts the given arm states.
func (s *MemoryStore) Save(_ context.Context, states []selection.ArmState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range states {
		s.states[state.TemplateID] = state
	}
	return nil
}

// Load returns all persisted arm states.
func (s *MemoryStore) Load(_ context.Context) ([]selection.ArmState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]selection.ArmState, 0, len(s.states))
	for _, state := range s.states {
		states = append(states, state)
	}
	return states, nil
}

// Delete removes the state for a single arm.
func (s *MemoryStore) Delete(_ context.Context, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, templateID)
	return nil
}

// Close releases backend resources. It is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
