package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"procura/internal/clearance/store"
	"procura/internal/platform/scopelock"
	"procura/internal/validity"
	"procura/mocks"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
	auditmem "procura/pkg/platform/audit/store/memory"
	"procura/pkg/platform/audit/publisher"
	"procura/pkg/requestcontext"
)

// The clearance service contains the only recurring domain rules in the
// system (overlap rejection, interval defaulting, precondition gating), so
// it gets unit tests beyond the engine's own.

type ClearanceServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *store.InMemoryStore
	directory *mocks.MockDirectory
	auditPub  *publisher.Publisher
	service   *Service

	providerID id.ProviderID
	repID      id.RepresentativeID
	now        time.Time
	ctx        context.Context
}

func TestClearanceServiceSuite(t *testing.T) {
	suite.Run(t, new(ClearanceServiceSuite))
}

func (s *ClearanceServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemoryStore()
	s.directory = mocks.NewMockDirectory(s.ctrl)
	s.auditPub = publisher.NewPublisher(auditmem.NewInMemoryStore())

	var err error
	s.service, err = New(s.store, s.directory, scopelock.NewMemoryLocker(), WithAudit(s.auditPub))
	s.Require().NoError(err)

	s.providerID = id.ProviderID(uuid.New())
	s.repID = id.RepresentativeID(uuid.New())
	s.now = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ClearanceServiceSuite) allowScope() {
	s.directory.EXPECT().ProviderExists(gomock.Any(), s.providerID).Return(true, nil).AnyTimes()
	s.directory.EXPECT().RepresentativeBelongs(gomock.Any(), s.repID, s.providerID).Return(true, nil).AnyTimes()
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func (s *ClearanceServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.directory, scopelock.NewMemoryLocker())
		s.Error(err)
		s.Contains(err.Error(), "clearance store is required")
	})

	s.Run("nil directory returns error", func() {
		_, err := New(s.store, nil, scopelock.NewMemoryLocker())
		s.Error(err)
		s.Contains(err.Error(), "provider directory is required")
	})

	s.Run("nil locker returns error", func() {
		_, err := New(s.store, s.directory, nil)
		s.Error(err)
		s.Contains(err.Error(), "scope locker is required")
	})
}

func (s *ClearanceServiceSuite) TestCreate() {
	s.allowScope()

	s.Run("persists a bounded window", func() {
		c, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2024, 4, 1),
			ValidUntil:       datePtr(2024, 10, 1),
			Cause:            "framework agreement 17/2024",
		})
		s.Require().NoError(err)
		s.False(c.ID.IsNil())
		s.Equal(s.now, c.CreatedAt)

		events, err := s.auditPub.List(s.ctx, c.ID.String())
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(c.Scope().ScopeKey(), events[0].ScopeKey)
	})

	s.Run("rejects end before start", func() {
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2024, 10, 1),
			ValidUntil:       datePtr(2024, 4, 1),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects touching boundary as conflict", func() {
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2023, 1, 1),
			ValidUntil:       datePtr(2024, 4, 1), // touches the existing start
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("accepts a window in a different scope", func() {
		otherRep := id.RepresentativeID(uuid.New())
		s.directory.EXPECT().RepresentativeBelongs(gomock.Any(), otherRep, s.providerID).Return(true, nil)
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: otherRep,
			ValidFrom:        datePtr(2024, 4, 1),
			ValidUntil:       datePtr(2024, 10, 1),
		})
		s.NoError(err)
	})
}

func (s *ClearanceServiceSuite) TestWritePathIsTraced() {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	s.allowScope()
	c, err := s.service.Create(s.ctx, CreateParams{
		ProviderID:       s.providerID,
		RepresentativeID: s.repID,
		ValidFrom:        datePtr(2024, 4, 1),
		ValidUntil:       datePtr(2024, 10, 1),
	})
	s.Require().NoError(err)

	spans := recorder.Ended()
	s.Require().Len(spans, 1)
	s.Equal("clearance.create", spans[0].Name())
	s.Contains(spans[0].Attributes(), attribute.String("scope.key", c.Scope().ScopeKey()))
}

func (s *ClearanceServiceSuite) TestCreatePreconditions() {
	s.Run("missing provider id", func() {
		_, err := s.service.Create(s.ctx, CreateParams{RepresentativeID: s.repID})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing representative id", func() {
		_, err := s.service.Create(s.ctx, CreateParams{ProviderID: s.providerID})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown provider", func() {
		s.directory.EXPECT().ProviderExists(gomock.Any(), s.providerID).Return(false, nil)
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("representative of another provider", func() {
		s.directory.EXPECT().ProviderExists(gomock.Any(), s.providerID).Return(true, nil)
		s.directory.EXPECT().RepresentativeBelongs(gomock.Any(), s.repID, s.providerID).Return(false, nil)
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ClearanceServiceSuite) TestCreateOmittedInterval() {
	s.allowScope()

	s.Run("defaults to starting now against expired siblings", func() {
		// An old clearance that ended well before "now".
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2023, 1, 1),
			ValidUntil:       datePtr(2023, 6, 1),
		})
		s.Require().NoError(err)

		// No dates at all: checked as [now, indefinite), which clears the
		// past-only sibling; a wholly-unbounded check would not.
		c, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
		})
		s.Require().NoError(err)

		// Persisted bounds stay open.
		stored, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Nil(stored.Window.Start)
		s.Nil(stored.Window.End)
	})

	s.Run("second omitted-interval record conflicts", func() {
		// The stored record is wholly open, so any further candidate in the
		// scope overlaps it.
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2030, 1, 1),
			ValidUntil:       datePtr(2030, 6, 1),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ClearanceServiceSuite) TestUpdate() {
	s.allowScope()

	first, err := s.service.Create(s.ctx, CreateParams{
		ProviderID:       s.providerID,
		RepresentativeID: s.repID,
		ValidFrom:        datePtr(2024, 1, 1),
		ValidUntil:       datePtr(2024, 6, 1),
	})
	s.Require().NoError(err)

	s.Run("record never conflicts with itself", func() {
		updated, err := s.service.Update(s.ctx, first.ID, UpdateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2024, 2, 1),
			ValidUntil:       datePtr(2024, 5, 1),
		})
		s.Require().NoError(err)
		s.Equal(datePtr(2024, 2, 1), updated.Window.Start)
	})

	s.Run("still conflicts with other siblings", func() {
		second, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2024, 7, 1),
			ValidUntil:       datePtr(2024, 9, 1),
		})
		s.Require().NoError(err)

		_, err = s.service.Update(s.ctx, second.ID, UpdateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2024, 4, 1),
			ValidUntil:       datePtr(2024, 9, 1),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.Update(s.ctx, id.ClearanceID(uuid.New()), UpdateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ClearanceServiceSuite) TestGetDerivesLifecycle() {
	s.allowScope()

	c, err := s.service.Create(s.ctx, CreateParams{
		ProviderID:       s.providerID,
		RepresentativeID: s.repID,
		ValidFrom:        datePtr(2024, 1, 1),
		ValidUntil:       datePtr(2024, 4, 10),
	})
	s.Require().NoError(err)

	view, err := s.service.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(validity.StateActive, view.State)
	s.Equal(validity.BucketMediumTerm, view.Bucket)
	s.True(view.ExpiringSoon)    // ends 2024-04-10, now 2024-03-15
	s.False(view.UrgentRenewal)  // more than 7 days away

	// Same record, different reference time: urgent once within 7 days.
	later := requestcontext.WithTime(context.Background(), time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC))
	view, err = s.service.Get(later, c.ID)
	s.Require().NoError(err)
	s.True(view.UrgentRenewal)

	// And expired after the end date passes.
	after := requestcontext.WithTime(context.Background(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	view, err = s.service.Get(after, c.ID)
	s.Require().NoError(err)
	s.Equal(validity.StateExpired, view.State)
}

func (s *ClearanceServiceSuite) TestDelete() {
	s.allowScope()

	c, err := s.service.Create(s.ctx, CreateParams{
		ProviderID:       s.providerID,
		RepresentativeID: s.repID,
		ValidFrom:        datePtr(2024, 1, 1),
		ValidUntil:       datePtr(2024, 6, 1),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, c.ID))

	_, err = s.service.Get(s.ctx, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Run("deletion frees the scope for new windows", func() {
		_, err := s.service.Create(s.ctx, CreateParams{
			ProviderID:       s.providerID,
			RepresentativeID: s.repID,
			ValidFrom:        datePtr(2024, 1, 1),
			ValidUntil:       datePtr(2024, 6, 1),
		})
		s.NoError(err)
	})
}
