package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "procura/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseProviderID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRepresentativeID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseClearanceID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseExclusionID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ExclusionID(valid), id)
	})
}

// TestTypeDistinction documents the compile-time invariant: typed IDs prevent
// cross-type assignment between scope key components.
func TestTypeDistinction(t *testing.T) {
	providerID := ProviderID(uuid.New())
	repID := RepresentativeID(uuid.New())

	// var _ ProviderID = repID // compile error, as intended

	assert.NotEqual(t, uuid.UUID(providerID), uuid.UUID(repID))
}
