// Package store defines provider and representative persistence.
package store

import (
	"context"

	"procura/internal/provider/models"
	id "procura/pkg/domain"
)

// Store persists the provider registry.
type Store interface {
	Create(ctx context.Context, p *models.Provider) error
	FindByID(ctx context.Context, providerID id.ProviderID) (*models.Provider, error)
	SearchByName(ctx context.Context, pattern string) ([]*models.Provider, error)
	Update(ctx context.Context, p *models.Provider) error
	Delete(ctx context.Context, providerID id.ProviderID) error

	CreateRepresentative(ctx context.Context, r *models.Representative) error
	FindRepresentative(ctx context.Context, representativeID id.RepresentativeID) (*models.Representative, error)
	ListRepresentatives(ctx context.Context, providerID id.ProviderID) ([]*models.Representative, error)
	DeleteRepresentative(ctx context.Context, representativeID id.RepresentativeID) error
}
