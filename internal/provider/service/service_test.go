package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/provider/store"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
	"procura/pkg/requestcontext"
)

func newService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	svc, err := New(store.NewInMemoryStore())
	require.NoError(t, err)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	return svc, ctx
}

func TestCreateProvider(t *testing.T) {
	svc, ctx := newService(t)

	p, err := svc.Create(ctx, CreateParams{
		Name:               "Hellenic Defense Systems",
		CountryCode:        "gr",
		RegistrationNumber: "EL-998812",
	})
	require.NoError(t, err)
	assert.False(t, p.ID.IsNil())
	assert.True(t, p.Active)
	assert.Equal(t, "GR", p.CountryCode, "country code is normalized to upper case")

	t.Run("name is required", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateParams{Name: "  "})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateParams{Name: "hellenic defense systems"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestSearchByName(t *testing.T) {
	svc, ctx := newService(t)

	for _, name := range []string{"Aegean Marine Works", "Attica Logistics", "Macedonian Steel"} {
		_, err := svc.Create(ctx, CreateParams{Name: name})
		require.NoError(t, err)
	}

	hits, err := svc.SearchByName(ctx, "aTTiCa")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Attica Logistics", hits[0].Name)

	all, err := svc.SearchByName(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.SearchByName(ctx, "shipyard")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateProvider(t *testing.T) {
	svc, ctx := newService(t)

	p, err := svc.Create(ctx, CreateParams{Name: "Aegean Marine Works"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, UpdateParams{
		Name:        "Aegean Marine Works SA",
		CountryCode: "gr",
		Active:      false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aegean Marine Works SA", updated.Name)
	assert.False(t, updated.Active)

	t.Run("deactivation keeps the provider resolvable", func(t *testing.T) {
		ok, err := svc.ProviderExists(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, id.ProviderID(uuid.New()), UpdateParams{Name: "X"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestRepresentatives(t *testing.T) {
	svc, ctx := newService(t)

	p, err := svc.Create(ctx, CreateParams{Name: "Attica Logistics"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, CreateParams{Name: "Macedonian Steel"})
	require.NoError(t, err)

	r, err := svc.AddRepresentative(ctx, RepresentativeParams{
		ProviderID: p.ID,
		FullName:   "Eleni Papadopoulou",
		NationalID: "AK123456",
	})
	require.NoError(t, err)

	t.Run("belongs to its own provider only", func(t *testing.T) {
		ok, err := svc.RepresentativeBelongs(ctx, r.ID, p.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.RepresentativeBelongs(ctx, r.ID, other.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown representative does not belong", func(t *testing.T) {
		ok, err := svc.RepresentativeBelongs(ctx, id.RepresentativeID(uuid.New()), p.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("requires an existing provider", func(t *testing.T) {
		_, err := svc.AddRepresentative(ctx, RepresentativeParams{
			ProviderID: id.ProviderID(uuid.New()),
			FullName:   "Nikos Georgiou",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("list and remove", func(t *testing.T) {
		reps, err := svc.ListRepresentatives(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, reps, 1)

		require.NoError(t, svc.RemoveRepresentative(ctx, r.ID))

		reps, err = svc.ListRepresentatives(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, reps)
	})
}

func TestDeleteProviderCascades(t *testing.T) {
	svc, ctx := newService(t)

	p, err := svc.Create(ctx, CreateParams{Name: "Aegean Marine Works"})
	require.NoError(t, err)
	r, err := svc.AddRepresentative(ctx, RepresentativeParams{ProviderID: p.ID, FullName: "Eleni Papadopoulou"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	ok, err := svc.ProviderExists(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.RepresentativeBelongs(ctx, r.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, ok, "representatives go with their provider")
}
