// Package service manages the provider registry and answers the scope
// resolution questions the clearance and exclusion services ask before
// running the validity engine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"procura/internal/platform/metrics"
	"procura/internal/provider/models"
	"procura/internal/provider/store"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
	audit "procura/pkg/platform/audit"
	"procura/pkg/platform/sentinel"
	"procura/pkg/requestcontext"
)

// AuditEmitter records administrative mutations.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the registry. It satisfies the Directory interfaces of the
// clearance and exclusion services.
type Service struct {
	store   store.Store
	audit   AuditEmitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

func WithAudit(emitter AuditEmitter) Option {
	return func(s *Service) { s.audit = emitter }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("provider store is required")
	}
	s := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ProviderExists reports whether the provider is registered. Inactive
// providers still exist; deactivation does not invalidate scope keys.
func (s *Service) ProviderExists(ctx context.Context, providerID id.ProviderID) (bool, error) {
	_, err := s.store.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RepresentativeBelongs reports whether the representative exists and is
// registered under the given provider.
func (s *Service) RepresentativeBelongs(ctx context.Context, representativeID id.RepresentativeID, providerID id.ProviderID) (bool, error) {
	r, err := s.store.FindRepresentative(ctx, representativeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return r.ProviderID == providerID, nil
}

// CreateParams carries the registration input for a new provider.
type CreateParams struct {
	Name               string
	CountryCode        string
	RegistrationNumber string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Provider, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "provider name is required")
	}
	now := requestcontext.Now(ctx)
	p := &models.Provider{
		ID:                 id.ProviderID(uuid.New()),
		Name:               params.Name,
		CountryCode:        strings.ToUpper(params.CountryCode),
		RegistrationNumber: params.RegistrationNumber,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "provider name already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist provider")
	}
	s.emit(ctx, audit.ActionProviderCreated, p.ID.String(), p.Name)
	if s.metrics != nil {
		s.metrics.RecordsCreated.WithLabelValues("provider").Inc()
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, providerID id.ProviderID) (*models.Provider, error) {
	return s.find(ctx, providerID)
}

// SearchByName returns providers whose name contains the pattern,
// case-insensitively. An empty pattern lists everything.
func (s *Service) SearchByName(ctx context.Context, pattern string) ([]*models.Provider, error) {
	providers, err := s.store.SearchByName(ctx, pattern)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "search providers")
	}
	return providers, nil
}

// UpdateParams is a full replace of the provider's registry fields.
type UpdateParams struct {
	Name               string
	CountryCode        string
	RegistrationNumber string
	Active             bool
}

func (s *Service) Update(ctx context.Context, providerID id.ProviderID, params UpdateParams) (*models.Provider, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "provider name is required")
	}
	p, err := s.find(ctx, providerID)
	if err != nil {
		return nil, err
	}
	p.Name = params.Name
	p.CountryCode = strings.ToUpper(params.CountryCode)
	p.RegistrationNumber = params.RegistrationNumber
	p.Active = params.Active
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "provider name already registered")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "provider not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update provider")
	}
	s.emit(ctx, audit.ActionProviderUpdated, p.ID.String(), p.Name)
	if s.metrics != nil {
		s.metrics.RecordsUpdated.WithLabelValues("provider").Inc()
	}
	return p, nil
}

// Delete removes the provider and its representatives. Clearances and
// exclusions referencing the provider are historical records and stay.
func (s *Service) Delete(ctx context.Context, providerID id.ProviderID) error {
	p, err := s.find(ctx, providerID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, providerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "provider not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete provider")
	}
	s.emit(ctx, audit.ActionProviderDeleted, p.ID.String(), p.Name)
	if s.metrics != nil {
		s.metrics.RecordsDeleted.WithLabelValues("provider").Inc()
	}
	return nil
}

// RepresentativeParams carries the registration input for a representative.
type RepresentativeParams struct {
	ProviderID id.ProviderID
	FullName   string
	NationalID string
}

func (s *Service) AddRepresentative(ctx context.Context, params RepresentativeParams) (*models.Representative, error) {
	if params.ProviderID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "provider id is required")
	}
	if strings.TrimSpace(params.FullName) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "representative full name is required")
	}
	if _, err := s.find(ctx, params.ProviderID); err != nil {
		return nil, err
	}
	r := &models.Representative{
		ID:         id.RepresentativeID(uuid.New()),
		ProviderID: params.ProviderID,
		FullName:   params.FullName,
		NationalID: params.NationalID,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.CreateRepresentative(ctx, r); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "provider does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist representative")
	}
	s.emit(ctx, audit.ActionRepresentativeCreated, r.ID.String(), r.FullName)
	if s.metrics != nil {
		s.metrics.RecordsCreated.WithLabelValues("representative").Inc()
	}
	return r, nil
}

func (s *Service) ListRepresentatives(ctx context.Context, providerID id.ProviderID) ([]*models.Representative, error) {
	if _, err := s.find(ctx, providerID); err != nil {
		return nil, err
	}
	reps, err := s.store.ListRepresentatives(ctx, providerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list representatives")
	}
	return reps, nil
}

func (s *Service) RemoveRepresentative(ctx context.Context, representativeID id.RepresentativeID) error {
	r, err := s.store.FindRepresentative(ctx, representativeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "representative not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "find representative")
	}
	if err := s.store.DeleteRepresentative(ctx, representativeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "representative not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete representative")
	}
	s.emit(ctx, audit.ActionRepresentativeDeleted, r.ID.String(), r.FullName)
	if s.metrics != nil {
		s.metrics.RecordsDeleted.WithLabelValues("representative").Inc()
	}
	return nil
}

func (s *Service) find(ctx context.Context, providerID id.ProviderID) (*models.Provider, error) {
	p, err := s.store.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "provider not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find provider")
	}
	return p, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, entityID, reason string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		EntityID:  entityID,
		Actor:     requestcontext.Actor(ctx),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		// Audit failure must not roll back a committed mutation.
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", string(action),
			"entity_id", entityID,
			"error", err.Error(),
		)
	}
}
