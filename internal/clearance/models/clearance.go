// Package models defines the clearance aggregate: a representative's
// authorization to act for a provider over a validity window.
package models

import (
	"time"

	"procura/internal/validity"
	id "procura/pkg/domain"
)

// Clearance is an authorization record.
//
// Invariants:
//   - ProviderID and RepresentativeID are non-nil (the scope key must be
//     fully resolved before the record reaches the validity engine)
//   - Window.End >= Window.Start when both bounds are set
//   - No two distinct clearances for the same (provider, representative)
//     may hold overlapping windows — enforced by the validity validator
//     before every create and update, never by this struct alone
//
// Lifecycle state is never stored; it is recomputed from (Window, now) on
// every read, so there is no status column to drift out of sync.
type Clearance struct {
	ID               id.ClearanceID      `json:"id"`
	ProviderID       id.ProviderID       `json:"provider_id"`
	RepresentativeID id.RepresentativeID `json:"representative_id"`
	Window           validity.Interval   `json:"-"`
	// Cause is free-text reference material; the engine passes it through
	// untouched.
	Cause     string    `json:"cause,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scope returns the tuple the non-overlap rule is keyed on.
func (c *Clearance) Scope() ScopeKey {
	return ScopeKey{Provider: c.ProviderID, Representative: c.RepresentativeID}
}

// ScopeKey is the (provider, representative) pair. Clearances for different
// representatives of the same provider never conflict with each other.
type ScopeKey struct {
	Provider       id.ProviderID
	Representative id.RepresentativeID
}

// ScopeKey implements validity.Scope.
func (k ScopeKey) ScopeKey() string {
	return "clearance:" + k.Provider.String() + "/" + k.Representative.String()
}

// View is the read model: the record plus the lifecycle fields derived at
// query time.
type View struct {
	Clearance
	StartsOn      *time.Time      `json:"starts_on,omitempty"`
	EndsOn        *time.Time      `json:"ends_on,omitempty"`
	State         validity.State  `json:"state"`
	Bucket        validity.Bucket `json:"duration_bucket"`
	ExpiringSoon  bool            `json:"expiring_soon"`  // ends within 30 days
	UrgentRenewal bool            `json:"urgent_renewal"` // ends within 7 days
}

// NewView derives the read model at the given reference time.
func NewView(c *Clearance, now time.Time) View {
	return View{
		Clearance:     *c,
		StartsOn:      c.Window.Start,
		EndsOn:        c.Window.End,
		State:         c.Window.Classify(now),
		Bucket:        c.Window.DurationBucket(),
		ExpiringSoon:  c.Window.ExpiringWithin(now, 30),
		UrgentRenewal: c.Window.ExpiringWithin(now, 7),
	}
}
