package cache

import (
	"context"
	"sync"

	"github.com/erp/dashboard/internal/infrastructure/auth"
)

// InMemorySessionStore keeps the session for the lifetime of the process
type InMemorySessionStore struct {
	mu   sync.RWMutex
	snap *auth.Snapshot
}

// NewInMemorySessionStore creates an empty in-memory store
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{}
}

// Save implements auth.SessionStore
func (s *InMemorySessionStore) Save(_ context.Context, snap auth.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snap
	return nil
}

// Load implements auth.SessionStore
func (s *InMemorySessionStore) Load(_ context.Context) (*auth.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, auth.ErrNoSession
	}
	snap := *s.snap
	return &snap, nil
}

// Delete implements auth.SessionStore
func (s *InMemorySessionStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}

var _ auth.SessionStore = (*InMemorySessionStore)(nil)
