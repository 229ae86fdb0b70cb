//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"procura/internal/exclusion/models"
	"procura/internal/exclusion/store"
	"procura/internal/validity"
	id "procura/pkg/domain"
	"procura/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "exclusions"))
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newExclusion(providerID id.ProviderID, exclusionType models.Type, from, until *time.Time) *models.Exclusion {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Exclusion{
		ID:         id.ExclusionID(uuid.New()),
		ProviderID: providerID,
		Type:       exclusionType,
		Window:     validity.Interval{Start: from, End: until},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// The scope key is rebuilt in SQL, so the collapsing rule for provider-wide
// bans is pinned against a real database.
func (s *PostgresStoreSuite) TestFetchByScopeVariants() {
	ctx := context.Background()
	providerID := id.ProviderID(uuid.New())

	typed := newExclusion(providerID, models.TypeFraud, datePtr(2024, 1, 1), datePtr(2024, 6, 1))
	s.Require().NoError(s.store.Create(ctx, typed))

	otherType := newExclusion(providerID, models.TypeInsolvency, datePtr(2024, 1, 1), datePtr(2024, 6, 1))
	s.Require().NoError(s.store.Create(ctx, otherType))

	providerWide := newExclusion(providerID, "", datePtr(2024, 1, 1), nil)
	s.Require().NoError(s.store.Create(ctx, providerWide))

	s.Run("typed scope sees only its type", func() {
		key := models.ScopeKey{Provider: providerID, Type: models.TypeFraud}.ScopeKey()
		records, err := s.store.FetchByScope(ctx, key)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(uuid.UUID(typed.ID), records[0].ID)
	})

	s.Run("provider-wide scope sees only untyped bans", func() {
		key := models.ScopeKey{Provider: providerID}.ScopeKey()
		records, err := s.store.FetchByScope(ctx, key)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(uuid.UUID(providerWide.ID), records[0].ID)
		s.Nil(records[0].Window.End, "open end must come back as nil")
	})

	s.Run("other provider sees nothing", func() {
		key := models.ScopeKey{Provider: id.ProviderID(uuid.New()), Type: models.TypeFraud}.ScopeKey()
		records, err := s.store.FetchByScope(ctx, key)
		s.Require().NoError(err)
		s.Empty(records)
	})
}

func (s *PostgresStoreSuite) TestListByProvider() {
	ctx := context.Background()
	providerID := id.ProviderID(uuid.New())

	s.Require().NoError(s.store.Create(ctx, newExclusion(providerID, models.TypeFraud, datePtr(2024, 1, 1), nil)))
	s.Require().NoError(s.store.Create(ctx, newExclusion(providerID, "", datePtr(2024, 2, 1), nil)))
	s.Require().NoError(s.store.Create(ctx, newExclusion(id.ProviderID(uuid.New()), models.TypeFraud, datePtr(2024, 1, 1), nil)))

	records, err := s.store.ListByProvider(ctx, providerID)
	s.Require().NoError(err)
	s.Len(records, 2)
}

func (s *PostgresStoreSuite) TestTypeSurvivesRoundTrip() {
	ctx := context.Background()

	e := newExclusion(id.ProviderID(uuid.New()), models.TypeContractBreach, datePtr(2024, 1, 1), datePtr(2024, 6, 1))
	s.Require().NoError(s.store.Create(ctx, e))

	found, err := s.store.FindByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(models.TypeContractBreach, found.Type)

	found.Type = ""
	found.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Update(ctx, found))

	again, err := s.store.FindByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(models.Type(""), again.Type)
}
