package handler

import (
	"time"

	"procura/internal/exclusion/models"
	"procura/internal/exclusion/service"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
)

// exclusionRequest is the write payload for create and update. Dates are
// plain ISO dates; an omitted date is an open bound. An omitted type makes
// the ban provider-wide.
type exclusionRequest struct {
	ProviderID string `json:"provider_id"`
	Type       string `json:"type,omitempty"`
	ValidFrom  string `json:"valid_from,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"`
	Cause      string `json:"cause,omitempty"`
}

const dateLayout = "2006-01-02"

func parseDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must be a date in YYYY-MM-DD format", field)
	}
	t = t.UTC()
	return &t, nil
}

func (r exclusionRequest) toCreateParams() (service.CreateParams, error) {
	providerID, err := id.ParseProviderID(r.ProviderID)
	if err != nil {
		return service.CreateParams{}, err
	}
	exclusionType, err := models.ParseType(r.Type)
	if err != nil {
		return service.CreateParams{}, err
	}
	from, err := parseDate(r.ValidFrom, "valid_from")
	if err != nil {
		return service.CreateParams{}, err
	}
	until, err := parseDate(r.ValidUntil, "valid_until")
	if err != nil {
		return service.CreateParams{}, err
	}
	return service.CreateParams{
		ProviderID: providerID,
		Type:       exclusionType,
		ValidFrom:  from,
		ValidUntil: until,
		Cause:      r.Cause,
	}, nil
}

func (r exclusionRequest) toUpdateParams() (service.UpdateParams, error) {
	params, err := r.toCreateParams()
	if err != nil {
		return service.UpdateParams{}, err
	}
	return service.UpdateParams(params), nil
}
