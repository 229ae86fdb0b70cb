package memory

import (
	"context"
	"sync"

	audit "procura/pkg/platform/audit"
)

// InMemoryStore keeps audit events per entity. Used in tests and as the
// default store when no external sink is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.EntityID] = append(s.events[event.EntityID], event)
	return nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entityID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[entityID]...), nil
}
