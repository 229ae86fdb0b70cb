package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"procura/internal/exclusion/models"
	"procura/internal/exclusion/service"
	"procura/internal/transport/http/shared"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
	"procura/pkg/requestcontext"
)

// Service defines the exclusion operations the handler needs.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*models.Exclusion, error)
	Get(ctx context.Context, exclusionID id.ExclusionID) (models.View, error)
	ListByProvider(ctx context.Context, providerID id.ProviderID) ([]models.View, error)
	Update(ctx context.Context, exclusionID id.ExclusionID, params service.UpdateParams) (*models.Exclusion, error)
	Delete(ctx context.Context, exclusionID id.ExclusionID) error
}

// Handler exposes exclusion administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

// Register mounts the exclusion routes. Authentication and the common
// middleware chain are applied by the router, not here.
func (h *Handler) Register(r chi.Router) {
	r.Post("/exclusions", h.handleCreate)
	r.Get("/exclusions/{exclusionID}", h.handleGet)
	r.Put("/exclusions/{exclusionID}", h.handleUpdate)
	r.Delete("/exclusions/{exclusionID}", h.handleDelete)
	r.Get("/providers/{providerID}/exclusions", h.handleListByProvider)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req exclusionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params, err := req.toCreateParams()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	e, err := h.service.Create(ctx, params)
	if err != nil {
		h.logWriteFailure(ctx, "create exclusion", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, models.NewView(e, requestcontext.Now(ctx)))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	exclusionID, err := id.ParseExclusionID(chi.URLParam(r, "exclusionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	view, err := h.service.Get(r.Context(), exclusionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleListByProvider(w http.ResponseWriter, r *http.Request) {
	providerID, err := id.ParseProviderID(chi.URLParam(r, "providerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	views, err := h.service.ListByProvider(r.Context(), providerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if views == nil {
		views = []models.View{}
	}
	shared.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	exclusionID, err := id.ParseExclusionID(chi.URLParam(r, "exclusionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req exclusionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params, err := req.toUpdateParams()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	e, err := h.service.Update(ctx, exclusionID, params)
	if err != nil {
		h.logWriteFailure(ctx, "update exclusion", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.NewView(e, requestcontext.Now(ctx)))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	exclusionID, err := id.ParseExclusionID(chi.URLParam(r, "exclusionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), exclusionID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// logWriteFailure keeps one log line per rejected mutation; conflicts are
// expected operator feedback and log at info, not error.
func (h *Handler) logWriteFailure(ctx context.Context, op string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.Is(err, dErrors.CodeConflict) || dErrors.Is(err, dErrors.CodeBadRequest) {
		h.logger.InfoContext(ctx, op+" rejected", attrs...)
		return
	}
	h.logger.ErrorContext(ctx, op+" failed", attrs...)
}
