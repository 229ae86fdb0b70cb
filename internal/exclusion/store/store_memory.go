package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"procura/internal/exclusion/models"
	"procura/internal/validity"
	id "procura/pkg/domain"
	"procura/pkg/platform/sentinel"
)

// InMemoryStore keeps exclusions in a map for tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.ExclusionID]*models.Exclusion
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.ExclusionID]*models.Exclusion)}
}

func (s *InMemoryStore) Create(_ context.Context, e *models.Exclusion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[e.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *e
	s.records[e.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, exclusionID id.ExclusionID) (*models.Exclusion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.records[exclusionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *InMemoryStore) ListByProvider(_ context.Context, providerID id.ProviderID) ([]*models.Exclusion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Exclusion
	for _, e := range s.records {
		if e.ProviderID == providerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, e *models.Exclusion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *e
	s.records[e.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, exclusionID id.ExclusionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[exclusionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, exclusionID)
	return nil
}

func (s *InMemoryStore) FetchByScope(_ context.Context, scopeKey string) ([]validity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []validity.Record
	for _, e := range s.records {
		if e.Scope().ScopeKey() == scopeKey {
			out = append(out, validity.Record{ID: uuid.UUID(e.ID), Window: e.Window})
		}
	}
	return out, nil
}
