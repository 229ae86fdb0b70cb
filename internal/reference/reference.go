// Package reference serves static designation lookups. The data is seeded
// at startup and never mutated, so the store is a plain map behind a
// read-only API with no temporal logic.
package reference

import (
	"context"
	"sort"
	"strings"

	"procura/internal/platform/metrics"
	dErrors "procura/pkg/domain-errors"
)

// Kind names a designation table.
type Kind string

const (
	KindCountries       Kind = "countries"
	KindEconomicDomains Kind = "economic_domains"
	KindMilitaryRanks   Kind = "military_ranks"
)

// ParseKind validates a designation kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCountries, KindEconomicDomains, KindMilitaryRanks:
		return Kind(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown designation kind %q", s)
}

// Designation is one lookup entry.
type Designation struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Service answers designation lookups from the seeded tables.
type Service struct {
	tables  map[Kind][]Designation
	metrics *metrics.Metrics
}

// Option configures optional collaborators.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService seeds the designation tables. Entries are sorted by code so
// lookups return a stable order.
func NewService(opts ...Option) *Service {
	s := &Service{
		tables: map[Kind][]Designation{
			KindCountries:       seedCountries(),
			KindEconomicDomains: seedEconomicDomains(),
			KindMilitaryRanks:   seedMilitaryRanks(),
		},
	}
	for _, entries := range s.tables {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the designations of a kind whose code or label contains
// the pattern, case-insensitively. An empty pattern returns the full table.
func (s *Service) Search(_ context.Context, kind Kind, pattern string) ([]Designation, error) {
	entries, ok := s.tables[kind]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown designation kind %q", string(kind))
	}
	if s.metrics != nil {
		s.metrics.LookupsServed.WithLabelValues(string(kind)).Inc()
	}

	needle := strings.ToLower(pattern)
	out := make([]Designation, 0, len(entries))
	for _, d := range entries {
		if needle == "" ||
			strings.Contains(strings.ToLower(d.Code), needle) ||
			strings.Contains(strings.ToLower(d.Label), needle) {
			out = append(out, d)
		}
	}
	return out, nil
}

func seedCountries() []Designation {
	return []Designation{
		{Code: "AT", Label: "Austria"},
		{Code: "BE", Label: "Belgium"},
		{Code: "BG", Label: "Bulgaria"},
		{Code: "CY", Label: "Cyprus"},
		{Code: "CZ", Label: "Czechia"},
		{Code: "DE", Label: "Germany"},
		{Code: "DK", Label: "Denmark"},
		{Code: "EE", Label: "Estonia"},
		{Code: "ES", Label: "Spain"},
		{Code: "FI", Label: "Finland"},
		{Code: "FR", Label: "France"},
		{Code: "GR", Label: "Greece"},
		{Code: "HR", Label: "Croatia"},
		{Code: "HU", Label: "Hungary"},
		{Code: "IE", Label: "Ireland"},
		{Code: "IT", Label: "Italy"},
		{Code: "LT", Label: "Lithuania"},
		{Code: "LU", Label: "Luxembourg"},
		{Code: "LV", Label: "Latvia"},
		{Code: "MT", Label: "Malta"},
		{Code: "NL", Label: "Netherlands"},
		{Code: "PL", Label: "Poland"},
		{Code: "PT", Label: "Portugal"},
		{Code: "RO", Label: "Romania"},
		{Code: "SE", Label: "Sweden"},
		{Code: "SI", Label: "Slovenia"},
		{Code: "SK", Label: "Slovakia"},
	}
}

func seedEconomicDomains() []Designation {
	return []Designation{
		{Code: "CONSTR", Label: "Construction and civil works"},
		{Code: "DEFMAT", Label: "Defense materiel and munitions"},
		{Code: "ENERGY", Label: "Energy and utilities"},
		{Code: "ITCOMM", Label: "Information technology and communications"},
		{Code: "LOGIST", Label: "Logistics and transport"},
		{Code: "MAINT", Label: "Maintenance, repair and overhaul"},
		{Code: "MEDSUP", Label: "Medical supplies and services"},
		{Code: "NAVAL", Label: "Naval systems and shipbuilding"},
		{Code: "SECSRV", Label: "Security and guarding services"},
		{Code: "TEXTIL", Label: "Textiles and personal equipment"},
	}
}

func seedMilitaryRanks() []Designation {
	return []Designation{
		{Code: "OF-1", Label: "Second Lieutenant / Lieutenant"},
		{Code: "OF-2", Label: "Captain"},
		{Code: "OF-3", Label: "Major"},
		{Code: "OF-4", Label: "Lieutenant Colonel"},
		{Code: "OF-5", Label: "Colonel"},
		{Code: "OF-6", Label: "Brigadier General"},
		{Code: "OF-7", Label: "Major General"},
		{Code: "OF-8", Label: "Lieutenant General"},
		{Code: "OF-9", Label: "General"},
		{Code: "OR-1", Label: "Private"},
		{Code: "OR-4", Label: "Corporal"},
		{Code: "OR-5", Label: "Sergeant"},
		{Code: "OR-6", Label: "Staff Sergeant"},
		{Code: "OR-8", Label: "Master Sergeant"},
		{Code: "OR-9", Label: "Sergeant Major"},
	}
}
