package state

import (
	"sync"

	"github.com/google/uuid"
)

// Store owns the session GameState. It has a single writer entry point, Update,
// and hands out deep copies to readers.
type Store struct {
	mu    sync.Mutex
	state GameState
}

// NewStore creates a store for a fresh session starting at sceneID.
func NewStore(sceneID string) *Store {
	return &Store{state: New(uuid.NewString(), sceneID)}
}

// NewStoreFrom creates a store seeded with an existing state.
func NewStoreFrom(initial GameState) *Store {
	seed := initial.Clone()
	if seed.SessionID == "" {
		seed.SessionID = uuid.NewString()
	}
	return &Store{state: seed}
}

// Update applies fn atomically to the freshest state and returns a copy of the result.
func (s *Store) Update(fn Updater) GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.state = fn(s.state)
	}
	return s.state.Clone()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View runs fn against the live state without copying it.
// fn must not retain or mutate anything it reads.
func (s *Store) View(fn func(GameState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}
