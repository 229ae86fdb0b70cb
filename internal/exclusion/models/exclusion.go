// Package models defines the provider exclusion aggregate: a ban period
// barring a provider from procurement, structurally identical to a clearance
// but scoped differently.
package models

import (
	"time"

	"procura/internal/validity"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
)

// Type narrows an exclusion to one ground. The empty type is the
// provider-wide variant: such a ban is scoped to the provider alone.
type Type string

const (
	TypeProfessionalMisconduct Type = "professional_misconduct"
	TypeInsolvency             Type = "insolvency"
	TypeFraud                  Type = "fraud"
	TypeContractBreach         Type = "contract_breach"
)

var knownTypes = map[Type]bool{
	TypeProfessionalMisconduct: true,
	TypeInsolvency:             true,
	TypeFraud:                  true,
	TypeContractBreach:         true,
}

// ParseType validates an exclusion type. Empty input is valid and selects
// the provider-wide scope variant.
func ParseType(s string) (Type, error) {
	if s == "" {
		return "", nil
	}
	t := Type(s)
	if !knownTypes[t] {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown exclusion type %q", s)
	}
	return t, nil
}

// Exclusion is a ban record.
//
// Invariants mirror Clearance: a resolved provider, a well-formed window,
// and no overlapping windows within the same scope key. Two exclusions of
// different types for one provider may overlap freely; a typed exclusion
// and a provider-wide one live in different scopes and also never conflict
// with each other (no cross-scope reasoning).
type Exclusion struct {
	ID         id.ExclusionID    `json:"id"`
	ProviderID id.ProviderID     `json:"provider_id"`
	Type       Type              `json:"type,omitempty"`
	Window     validity.Interval `json:"-"`
	Cause      string            `json:"cause,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Scope returns the tuple the non-overlap rule is keyed on.
func (e *Exclusion) Scope() ScopeKey {
	return ScopeKey{Provider: e.ProviderID, Type: e.Type}
}

// ScopeKey is (provider, type), collapsing to (provider) for the
// provider-wide variant.
type ScopeKey struct {
	Provider id.ProviderID
	Type     Type
}

// ScopeKey implements validity.Scope.
func (k ScopeKey) ScopeKey() string {
	if k.Type == "" {
		return "exclusion:" + k.Provider.String()
	}
	return "exclusion:" + k.Provider.String() + "/" + string(k.Type)
}

// View is the read model with lifecycle fields derived at query time.
type View struct {
	Exclusion
	StartsOn      *time.Time      `json:"starts_on,omitempty"`
	EndsOn        *time.Time      `json:"ends_on,omitempty"`
	State         validity.State  `json:"state"`
	Bucket        validity.Bucket `json:"duration_bucket"`
	LiftingSoon   bool            `json:"lifting_soon"`   // ban ends within 30 days
	LiftingUrgent bool            `json:"lifting_urgent"` // ban ends within 7 days
}

// NewView derives the read model at the given reference time.
func NewView(e *Exclusion, now time.Time) View {
	return View{
		Exclusion:     *e,
		StartsOn:      e.Window.Start,
		EndsOn:        e.Window.End,
		State:         e.Window.Classify(now),
		Bucket:        e.Window.DurationBucket(),
		LiftingSoon:   e.Window.ExpiringWithin(now, 30),
		LiftingUrgent: e.Window.ExpiringWithin(now, 7),
	}
}
