// Package store defines clearance persistence. Stores are pure I/O: the
// non-overlap rule, lifecycle classification and date filtering all live
// above them.
package store

import (
	"context"

	"procura/internal/clearance/models"
	"procura/internal/validity"
	id "procura/pkg/domain"
)

// Store persists clearance records.
//
// FetchByScope satisfies validity.Store: it must return every non-deleted
// record sharing the exact scope key with no filtering by date.
type Store interface {
	Create(ctx context.Context, c *models.Clearance) error
	FindByID(ctx context.Context, clearanceID id.ClearanceID) (*models.Clearance, error)
	ListByProvider(ctx context.Context, providerID id.ProviderID) ([]*models.Clearance, error)
	Update(ctx context.Context, c *models.Clearance) error
	Delete(ctx context.Context, clearanceID id.ClearanceID) error
	FetchByScope(ctx context.Context, scopeKey string) ([]validity.Record, error)
}
