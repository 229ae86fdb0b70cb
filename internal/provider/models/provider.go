// Package models defines the provider registry entities. Providers and
// their representatives form the scope keys the validity engine guards, so
// this vertical carries no temporal logic of its own.
package models

import (
	"time"

	id "procura/pkg/domain"
)

// Provider is an economic operator registered with the authority.
type Provider struct {
	ID                 id.ProviderID `json:"id"`
	Name               string        `json:"name"`
	CountryCode        string        `json:"country_code"`
	RegistrationNumber string        `json:"registration_number"`
	Active             bool          `json:"active"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Representative is a natural person authorized to act for a provider.
// Clearances are granted to the (provider, representative) pair.
type Representative struct {
	ID         id.RepresentativeID `json:"id"`
	ProviderID id.ProviderID       `json:"provider_id"`
	FullName   string              `json:"full_name"`
	NationalID string              `json:"national_id"`
	CreatedAt  time.Time           `json:"created_at"`
}
