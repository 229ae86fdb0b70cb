package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"procura/internal/clearance/models"
	"procura/internal/validity"
	id "procura/pkg/domain"
	"procura/pkg/platform/sentinel"
)

// InMemoryStore keeps clearances in a map. Used in unit tests and local
// development; production uses PostgresStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.ClearanceID]*models.Clearance
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.ClearanceID]*models.Clearance)}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Clearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[c.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *c
	s.records[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, clearanceID id.ClearanceID) (*models.Clearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[clearanceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) ListByProvider(_ context.Context, providerID id.ProviderID) ([]*models.Clearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Clearance
	for _, c := range s.records {
		if c.ProviderID == providerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *models.Clearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *c
	s.records[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, clearanceID id.ClearanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[clearanceID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, clearanceID)
	return nil
}

func (s *InMemoryStore) FetchByScope(_ context.Context, scopeKey string) ([]validity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []validity.Record
	for _, c := range s.records {
		if c.Scope().ScopeKey() == scopeKey {
			out = append(out, validity.Record{ID: uuid.UUID(c.ID), Window: c.Window})
		}
	}
	return out, nil
}
