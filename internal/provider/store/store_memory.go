package store

import (
	"context"
	"strings"
	"sync"

	"procura/internal/provider/models"
	id "procura/pkg/domain"
	"procura/pkg/platform/sentinel"
)

// InMemoryStore keeps the registry in maps for tests and local development.
type InMemoryStore struct {
	mu              sync.RWMutex
	providers       map[id.ProviderID]*models.Provider
	representatives map[id.RepresentativeID]*models.Representative
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		providers:       make(map[id.ProviderID]*models.Provider),
		representatives: make(map[id.RepresentativeID]*models.Representative),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.providers[p.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.providers {
		if strings.EqualFold(existing.Name, p.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *p
	s.providers[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, providerID id.ProviderID) (*models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[providerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) SearchByName(_ context.Context, pattern string) ([]*models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(pattern)
	var out []*models.Provider
	for _, p := range s.providers {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for otherID, existing := range s.providers {
		if otherID != p.ID && strings.EqualFold(existing.Name, p.Name) {
			return sentinel.ErrConflict
		}
	}
	cp := *p
	s.providers[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, providerID id.ProviderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[providerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.providers, providerID)
	for repID, r := range s.representatives {
		if r.ProviderID == providerID {
			delete(s.representatives, repID)
		}
	}
	return nil
}

func (s *InMemoryStore) CreateRepresentative(_ context.Context, r *models.Representative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.representatives[r.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, ok := s.providers[r.ProviderID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *r
	s.representatives[r.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindRepresentative(_ context.Context, representativeID id.RepresentativeID) (*models.Representative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.representatives[representativeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) ListRepresentatives(_ context.Context, providerID id.ProviderID) ([]*models.Representative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Representative
	for _, r := range s.representatives {
		if r.ProviderID == providerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) DeleteRepresentative(_ context.Context, representativeID id.RepresentativeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.representatives[representativeID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.representatives, representativeID)
	return nil
}
