// Package store defines exclusion persistence. Stores are pure I/O; overlap
// and lifecycle rules live above them.
package store

import (
	"context"

	"procura/internal/exclusion/models"
	"procura/internal/validity"
	id "procura/pkg/domain"
)

// Store persists exclusion records. FetchByScope satisfies validity.Store.
type Store interface {
	Create(ctx context.Context, e *models.Exclusion) error
	FindByID(ctx context.Context, exclusionID id.ExclusionID) (*models.Exclusion, error)
	ListByProvider(ctx context.Context, providerID id.ProviderID) ([]*models.Exclusion, error)
	Update(ctx context.Context, e *models.Exclusion) error
	Delete(ctx context.Context, exclusionID id.ExclusionID) error
	FetchByScope(ctx context.Context, scopeKey string) ([]validity.Record, error)
}
