// Package service orchestrates exclusion writes. The shape matches the
// clearance service; the difference is the scope key, which is keyed on
// (provider, type) and collapses to the provider alone for untyped bans.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"procura/internal/exclusion/models"
	"procura/internal/exclusion/store"
	"procura/internal/platform/metrics"
	"procura/internal/platform/scopelock"
	"procura/internal/validity"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
	audit "procura/pkg/platform/audit"
	"procura/pkg/platform/sentinel"
	"procura/pkg/requestcontext"
)

const recordType = "exclusion"

var tracer = otel.Tracer("procura/internal/exclusion/service")

// Directory answers provider existence checks.
type Directory interface {
	ProviderExists(ctx context.Context, providerID id.ProviderID) (bool, error)
}

// AuditEmitter records administrative mutations.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the exclusion write path.
type Service struct {
	store     store.Store
	directory Directory
	validator *validity.Validator
	locks     scopelock.Locker
	audit     AuditEmitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
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

func New(st store.Store, directory Directory, locks scopelock.Locker, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("exclusion store is required")
	}
	if directory == nil {
		return nil, errors.New("provider directory is required")
	}
	if locks == nil {
		return nil, errors.New("scope locker is required")
	}
	s := &Service{
		store:     st,
		directory: directory,
		validator: validity.NewValidator(st),
		locks:     locks,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateParams carries the administrative input for a new exclusion. An
// empty Type is the provider-wide ban. Nil dates are open bounds; both nil
// means "starting now, indefinite".
type CreateParams struct {
	ProviderID id.ProviderID
	Type       models.Type
	ValidFrom  *time.Time
	ValidUntil *time.Time
	Cause      string
}

// Create validates and persists a new exclusion. Bans of different types,
// and a typed ban next to a provider-wide one, land in distinct scopes and
// are allowed to overlap.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Exclusion, error) {
	if err := s.requireProvider(ctx, params.ProviderID); err != nil {
		return nil, err
	}

	window, err := validity.New(params.ValidFrom, params.ValidUntil)
	if err != nil {
		return nil, s.invalidInterval(err)
	}

	now := requestcontext.Now(ctx)
	e := &models.Exclusion{
		ID:         id.ExclusionID(uuid.New()),
		ProviderID: params.ProviderID,
		Type:       params.Type,
		Window:     window,
		Cause:      params.Cause,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	scope := e.Scope()
	ctx, span := tracer.Start(ctx, "exclusion.create",
		trace.WithAttributes(attribute.String("scope.key", scope.ScopeKey())))
	defer span.End()

	unlock, err := s.locks.Lock(ctx, scope.ScopeKey())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "acquire scope lock")
	}
	defer unlock()

	// An omitted window is checked as [now, indefinite); the record itself
	// keeps its open bounds.
	if err := s.validator.Validate(ctx, window.DefaultedAt(now), scope, uuid.Nil); err != nil {
		err = s.mapValidation(err)
		span.RecordError(err)
		return nil, err
	}

	if err := s.store.Create(ctx, e); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "persist exclusion")
		span.RecordError(err)
		return nil, err
	}

	s.emit(ctx, audit.ActionExclusionCreated, e)
	s.countCreated()
	return e, nil
}

// Get returns the exclusion with lifecycle fields derived at the request
// time.
func (s *Service) Get(ctx context.Context, exclusionID id.ExclusionID) (models.View, error) {
	e, err := s.find(ctx, exclusionID)
	if err != nil {
		return models.View{}, err
	}
	return models.NewView(e, requestcontext.Now(ctx)), nil
}

// ListByProvider returns all of a provider's exclusions as read models,
// typed and provider-wide alike.
func (s *Service) ListByProvider(ctx context.Context, providerID id.ProviderID) ([]models.View, error) {
	records, err := s.store.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list exclusions")
	}
	now := requestcontext.Now(ctx)
	views := make([]models.View, 0, len(records))
	for _, e := range records {
		views = append(views, models.NewView(e, now))
	}
	return views, nil
}

// UpdateParams is a full replace of the record's window, type and cause.
type UpdateParams struct {
	ProviderID id.ProviderID
	Type       models.Type
	ValidFrom  *time.Time
	ValidUntil *time.Time
	Cause      string
}

// Update replaces the exclusion's window and scope after revalidating the
// non-overlap invariant, excluding the record itself. Changing the type
// moves the record into another scope, so validation runs against the new
// scope's siblings.
func (s *Service) Update(ctx context.Context, exclusionID id.ExclusionID, params UpdateParams) (*models.Exclusion, error) {
	if err := s.requireProvider(ctx, params.ProviderID); err != nil {
		return nil, err
	}

	window, err := validity.New(params.ValidFrom, params.ValidUntil)
	if err != nil {
		return nil, s.invalidInterval(err)
	}

	e, err := s.find(ctx, exclusionID)
	if err != nil {
		return nil, err
	}

	e.ProviderID = params.ProviderID
	e.Type = params.Type
	e.Window = window
	e.Cause = params.Cause
	e.UpdatedAt = requestcontext.Now(ctx)

	scope := e.Scope()
	ctx, span := tracer.Start(ctx, "exclusion.update",
		trace.WithAttributes(attribute.String("scope.key", scope.ScopeKey())))
	defer span.End()

	unlock, err := s.locks.Lock(ctx, scope.ScopeKey())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "acquire scope lock")
	}
	defer unlock()

	if err := s.validator.Validate(ctx, window, scope, uuid.UUID(e.ID)); err != nil {
		err = s.mapValidation(err)
		span.RecordError(err)
		return nil, err
	}

	if err := s.store.Update(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "exclusion not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update exclusion")
	}

	s.emit(ctx, audit.ActionExclusionUpdated, e)
	s.countUpdated()
	return e, nil
}

// Delete removes the record. Deleting a ban does not touch sibling records.
func (s *Service) Delete(ctx context.Context, exclusionID id.ExclusionID) error {
	e, err := s.find(ctx, exclusionID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, exclusionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "exclusion not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete exclusion")
	}
	s.emit(ctx, audit.ActionExclusionDeleted, e)
	s.countDeleted()
	return nil
}

func (s *Service) find(ctx context.Context, exclusionID id.ExclusionID) (*models.Exclusion, error) {
	e, err := s.store.FindByID(ctx, exclusionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "exclusion not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find exclusion")
	}
	return e, nil
}

func (s *Service) requireProvider(ctx context.Context, providerID id.ProviderID) error {
	if providerID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "provider id is required")
	}
	ok, err := s.directory.ProviderExists(ctx, providerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "resolve provider")
	}
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, "provider does not exist")
	}
	return nil
}

func (s *Service) mapValidation(err error) error {
	var conflict *validity.ConflictError
	if errors.As(err, &conflict) {
		if s.metrics != nil {
			s.metrics.ConflictsRejected.WithLabelValues(recordType).Inc()
		}
		return dErrors.Wrap(conflict, dErrors.CodeConflict,
			"validity window overlaps exclusion "+conflict.ConflictingID.String())
	}
	if errors.Is(err, validity.ErrInvalidInterval) {
		return s.invalidInterval(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "validate exclusion window")
}

func (s *Service) invalidInterval(err error) error {
	if s.metrics != nil {
		s.metrics.InvalidIntervals.WithLabelValues(recordType).Inc()
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "validity end cannot precede start")
}

func (s *Service) emit(ctx context.Context, action audit.Action, e *models.Exclusion) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		EntityID:  e.ID.String(),
		ScopeKey:  e.Scope().ScopeKey(),
		Actor:     requestcontext.Actor(ctx),
		Reason:    e.Cause,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		// Audit failure must not roll back a committed mutation.
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", string(action),
			"exclusion_id", e.ID.String(),
			"error", err.Error(),
		)
	}
}

func (s *Service) countCreated() {
	if s.metrics != nil {
		s.metrics.RecordsCreated.WithLabelValues(recordType).Inc()
	}
}

func (s *Service) countUpdated() {
	if s.metrics != nil {
		s.metrics.RecordsUpdated.WithLabelValues(recordType).Inc()
	}
}

func (s *Service) countDeleted() {
	if s.metrics != nil {
		s.metrics.RecordsDeleted.WithLabelValues(recordType).Inc()
	}
}
