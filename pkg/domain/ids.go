// Package domain defines typed identifiers for the core entities.
//
// IDs are distinct types over uuid.UUID so a ProviderID can never be passed
// where a RepresentativeID is expected; the compiler enforces what would
// otherwise be a runtime mix-up between scope key components.
package domain

import (
	"github.com/google/uuid"

	dErrors "procura/pkg/domain-errors"
)

type (
	// ProviderID identifies a provider organization.
	ProviderID uuid.UUID

	// RepresentativeID identifies a provider representative.
	RepresentativeID uuid.UUID

	// ClearanceID identifies a representative clearance record.
	ClearanceID uuid.UUID

	// ExclusionID identifies a provider exclusion record.
	ExclusionID uuid.UUID
)

func (id ProviderID) String() string       { return uuid.UUID(id).String() }
func (id RepresentativeID) String() string { return uuid.UUID(id).String() }
func (id ClearanceID) String() string      { return uuid.UUID(id).String() }
func (id ExclusionID) String() string      { return uuid.UUID(id).String() }

func (id ProviderID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RepresentativeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClearanceID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ExclusionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the trust-boundary invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be nil", kind)
	}
	return u, nil
}

// ParseProviderID validates and converts a string to a ProviderID.
func ParseProviderID(s string) (ProviderID, error) {
	u, err := parseUUID(s, "provider")
	return ProviderID(u), err
}

// ParseRepresentativeID validates and converts a string to a RepresentativeID.
func ParseRepresentativeID(s string) (RepresentativeID, error) {
	u, err := parseUUID(s, "representative")
	return RepresentativeID(u), err
}

// ParseClearanceID validates and converts a string to a ClearanceID.
func ParseClearanceID(s string) (ClearanceID, error) {
	u, err := parseUUID(s, "clearance")
	return ClearanceID(u), err
}

// ParseExclusionID validates and converts a string to an ExclusionID.
func ParseExclusionID(s string) (ExclusionID, error) {
	u, err := parseUUID(s, "exclusion")
	return ExclusionID(u), err
}
