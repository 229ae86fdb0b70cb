package validity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Scope is the tuple of entity references the non-overlap rule is scoped to.
// Owning records supply their own shape — clearances key on
// (provider, representative), exclusions on (provider, type) or (provider) —
// and the validator only ever sees the opaque key string.
//
// Two records may hold overlapping windows iff their scope keys differ. The
// validator does no transitive reasoning across scopes: a provider-level ban
// does not block a representative-level clearance here.
type Scope interface {
	ScopeKey() string
}

// Record pairs a persisted record's identity with its validity window. The
// store returns all non-deleted records for a scope, unfiltered by date;
// date filtering is the validator's job.
type Record struct {
	ID     uuid.UUID
	Window Interval
}

// Store fetches the sibling records the candidate must not overlap.
type Store interface {
	FetchByScope(ctx context.Context, scopeKey string) ([]Record, error)
}

// ConflictError reports the first sibling whose window overlaps the
// candidate. The engine does not attempt remediation (no auto-truncation);
// the caller decides how to reject the write.
type ConflictError struct {
	ScopeKey      string
	ConflictingID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("validity window overlaps existing record %s", e.ConflictingID)
}

// Validator enforces the scope-wide non-overlap invariant before a write
// commits.
//
// The validator itself is pure apart from the store fetch; it is not safe to
// call twice concurrently for the same scope without external serialization
// (a transaction, a storage constraint, or a scope lock — see
// internal/platform/scopelock). The calling service owns that boundary.
type Validator struct {
	store Store
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// Validate checks a candidate window against every sibling in its scope.
// excludeID skips the record being updated so it never conflicts with
// itself; pass uuid.Nil on create.
//
// Returns nil when the candidate is acceptable, ErrInvalidInterval for an
// end-before-start window, or a *ConflictError naming the first overlapping
// sibling (fail-fast; later conflicts are not enumerated).
func (v *Validator) Validate(ctx context.Context, candidate Interval, scope Scope, excludeID uuid.UUID) error {
	if candidate.Start != nil && candidate.End != nil && candidate.End.Before(*candidate.Start) {
		return ErrInvalidInterval
	}

	key := scope.ScopeKey()
	siblings, err := v.store.FetchByScope(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch scope records: %w", err)
	}

	for _, sibling := range siblings {
		if sibling.ID == excludeID {
			continue
		}
		if candidate.Overlaps(sibling.Window) {
			return &ConflictError{ScopeKey: key, ConflictingID: sibling.ID}
		}
	}
	return nil
}
