// Package service orchestrates clearance writes: precondition checks, the
// validity engine, the scope serialization point, persistence and audit.
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

	"procura/internal/clearance/models"
	"procura/internal/clearance/store"
	"procura/internal/platform/metrics"
	"procura/internal/platform/scopelock"
	"procura/internal/validity"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
	audit "procura/pkg/platform/audit"
	"procura/pkg/platform/sentinel"
	"procura/pkg/requestcontext"
)

const recordType = "clearance"

var tracer = otel.Tracer("procura/internal/clearance/service")

// Directory answers existence questions about the scope key components.
// Implemented by the provider service; an interface here keeps the package
// dependency one-way.
type Directory interface {
	ProviderExists(ctx context.Context, providerID id.ProviderID) (bool, error)
	RepresentativeBelongs(ctx context.Context, representativeID id.RepresentativeID, providerID id.ProviderID) (bool, error)
}

// AuditEmitter records administrative mutations.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the clearance write path. The scope lock wraps the whole
// validate+persist sequence; calling the validator without it is only safe
// for reads.
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
		return nil, errors.New("clearance store is required")
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

// CreateParams carries the administrative input for a new clearance. Nil
// dates are open bounds; both nil means "starting now, indefinite".
type CreateParams struct {
	ProviderID       id.ProviderID
	RepresentativeID id.RepresentativeID
	ValidFrom        *time.Time
	ValidUntil       *time.Time
	Cause            string
}

// Create validates and persists a new clearance.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Clearance, error) {
	if err := s.requireScope(ctx, params.ProviderID, params.RepresentativeID); err != nil {
		return nil, err
	}

	window, err := validity.New(params.ValidFrom, params.ValidUntil)
	if err != nil {
		return nil, s.invalidInterval(err)
	}

	now := requestcontext.Now(ctx)
	c := &models.Clearance{
		ID:               id.ClearanceID(uuid.New()),
		ProviderID:       params.ProviderID,
		RepresentativeID: params.RepresentativeID,
		Window:           window,
		Cause:            params.Cause,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	scope := c.Scope()
	ctx, span := tracer.Start(ctx, "clearance.create",
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

	if err := s.store.Create(ctx, c); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "persist clearance")
		span.RecordError(err)
		return nil, err
	}

	s.emit(ctx, audit.ActionClearanceCreated, c)
	s.countCreated()
	return c, nil
}

// Get returns the clearance with lifecycle fields derived at the request
// time.
func (s *Service) Get(ctx context.Context, clearanceID id.ClearanceID) (models.View, error) {
	c, err := s.find(ctx, clearanceID)
	if err != nil {
		return models.View{}, err
	}
	return models.NewView(c, requestcontext.Now(ctx)), nil
}

// ListByProvider returns all of a provider's clearances as read models.
func (s *Service) ListByProvider(ctx context.Context, providerID id.ProviderID) ([]models.View, error) {
	records, err := s.store.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list clearances")
	}
	now := requestcontext.Now(ctx)
	views := make([]models.View, 0, len(records))
	for _, c := range records {
		views = append(views, models.NewView(c, now))
	}
	return views, nil
}

// UpdateParams is a full replace of the record's window, scope and cause.
// There is no partial state machine: the record is absent, present-and-valid
// or deleted.
type UpdateParams struct {
	ProviderID       id.ProviderID
	RepresentativeID id.RepresentativeID
	ValidFrom        *time.Time
	ValidUntil       *time.Time
	Cause            string
}

// Update replaces the clearance's window and scope after revalidating the
// non-overlap invariant, excluding the record itself.
func (s *Service) Update(ctx context.Context, clearanceID id.ClearanceID, params UpdateParams) (*models.Clearance, error) {
	if err := s.requireScope(ctx, params.ProviderID, params.RepresentativeID); err != nil {
		return nil, err
	}

	window, err := validity.New(params.ValidFrom, params.ValidUntil)
	if err != nil {
		return nil, s.invalidInterval(err)
	}

	c, err := s.find(ctx, clearanceID)
	if err != nil {
		return nil, err
	}

	c.ProviderID = params.ProviderID
	c.RepresentativeID = params.RepresentativeID
	c.Window = window
	c.Cause = params.Cause
	c.UpdatedAt = requestcontext.Now(ctx)

	scope := c.Scope()
	ctx, span := tracer.Start(ctx, "clearance.update",
		trace.WithAttributes(attribute.String("scope.key", scope.ScopeKey())))
	defer span.End()

	unlock, err := s.locks.Lock(ctx, scope.ScopeKey())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "acquire scope lock")
	}
	defer unlock()

	if err := s.validator.Validate(ctx, window, scope, uuid.UUID(c.ID)); err != nil {
		err = s.mapValidation(err)
		span.RecordError(err)
		return nil, err
	}

	if err := s.store.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clearance not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update clearance")
	}

	s.emit(ctx, audit.ActionClearanceUpdated, c)
	s.countUpdated()
	return c, nil
}

// Delete removes the record. Deletion has no cascading temporal effect on
// sibling records.
func (s *Service) Delete(ctx context.Context, clearanceID id.ClearanceID) error {
	c, err := s.find(ctx, clearanceID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, clearanceID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "clearance not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete clearance")
	}
	s.emit(ctx, audit.ActionClearanceDeleted, c)
	s.countDeleted()
	return nil
}

func (s *Service) find(ctx context.Context, clearanceID id.ClearanceID) (*models.Clearance, error) {
	c, err := s.store.FindByID(ctx, clearanceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clearance not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find clearance")
	}
	return c, nil
}

// requireScope is the precondition gate: scope keys must be fully resolved
// before the engine is invoked.
func (s *Service) requireScope(ctx context.Context, providerID id.ProviderID, representativeID id.RepresentativeID) error {
	if providerID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "provider id is required")
	}
	if representativeID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "representative id is required")
	}
	ok, err := s.directory.ProviderExists(ctx, providerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "resolve provider")
	}
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, "provider does not exist")
	}
	ok, err = s.directory.RepresentativeBelongs(ctx, representativeID, providerID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "resolve representative")
	}
	if !ok {
		return dErrors.New(dErrors.CodeBadRequest, "representative does not belong to provider")
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
			"validity window overlaps clearance "+conflict.ConflictingID.String())
	}
	if errors.Is(err, validity.ErrInvalidInterval) {
		return s.invalidInterval(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "validate clearance window")
}

func (s *Service) invalidInterval(err error) error {
	if s.metrics != nil {
		s.metrics.InvalidIntervals.WithLabelValues(recordType).Inc()
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "validity end cannot precede start")
}

func (s *Service) emit(ctx context.Context, action audit.Action, c *models.Clearance) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		EntityID:  c.ID.String(),
		ScopeKey:  c.Scope().ScopeKey(),
		Actor:     requestcontext.Actor(ctx),
		Reason:    c.Cause,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		// Audit failure must not roll back a committed mutation.
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", string(action),
			"clearance_id", c.ID.String(),
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
