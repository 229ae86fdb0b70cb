package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"procura/internal/provider/models"
	"procura/internal/provider/service"
	"procura/internal/transport/http/shared"
	id "procura/pkg/domain"
	dErrors "procura/pkg/domain-errors"
)

// Service defines the registry operations the handler needs.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*models.Provider, error)
	Get(ctx context.Context, providerID id.ProviderID) (*models.Provider, error)
	SearchByName(ctx context.Context, pattern string) ([]*models.Provider, error)
	Update(ctx context.Context, providerID id.ProviderID, params service.UpdateParams) (*models.Provider, error)
	Delete(ctx context.Context, providerID id.ProviderID) error

	AddRepresentative(ctx context.Context, params service.RepresentativeParams) (*models.Representative, error)
	ListRepresentatives(ctx context.Context, providerID id.ProviderID) ([]*models.Representative, error)
	RemoveRepresentative(ctx context.Context, representativeID id.RepresentativeID) error
}

// Handler exposes provider registry endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

// Register mounts the registry routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/providers", h.handleCreate)
	r.Get("/providers", h.handleSearch)
	r.Get("/providers/{providerID}", h.handleGet)
	r.Put("/providers/{providerID}", h.handleUpdate)
	r.Delete("/providers/{providerID}", h.handleDelete)

	r.Post("/providers/{providerID}/representatives", h.handleAddRepresentative)
	r.Get("/providers/{providerID}/representatives", h.handleListRepresentatives)
	r.Delete("/representatives/{representativeID}", h.handleRemoveRepresentative)
}

type providerRequest struct {
	Name               string `json:"name"`
	CountryCode        string `json:"country_code,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Active             bool   `json:"active"`
}

type representativeRequest struct {
	FullName   string `json:"full_name"`
	NationalID string `json:"national_id,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.service.Create(r.Context(), service.CreateParams{
		Name:               req.Name,
		CountryCode:        req.CountryCode,
		RegistrationNumber: req.RegistrationNumber,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, p)
}

// handleSearch lists providers, filtered by the optional name query.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	providers, err := h.service.SearchByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if providers == nil {
		providers = []*models.Provider{}
	}
	shared.WriteJSON(w, http.StatusOK, providers)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	providerID, err := id.ParseProviderID(chi.URLParam(r, "providerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.service.Get(r.Context(), providerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	providerID, err := id.ParseProviderID(chi.URLParam(r, "providerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.service.Update(r.Context(), providerID, service.UpdateParams{
		Name:               req.Name,
		CountryCode:        req.CountryCode,
		RegistrationNumber: req.RegistrationNumber,
		Active:             req.Active,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	providerID, err := id.ParseProviderID(chi.URLParam(r, "providerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), providerID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddRepresentative(w http.ResponseWriter, r *http.Request) {
	providerID, err := id.ParseProviderID(chi.URLParam(r, "providerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req representativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rep, err := h.service.AddRepresentative(r.Context(), service.RepresentativeParams{
		ProviderID: providerID,
		FullName:   req.FullName,
		NationalID: req.NationalID,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, rep)
}

func (h *Handler) handleListRepresentatives(w http.ResponseWriter, r *http.Request) {
	providerID, err := id.ParseProviderID(chi.URLParam(r, "providerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reps, err := h.service.ListRepresentatives(r.Context(), providerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if reps == nil {
		reps = []*models.Representative{}
	}
	shared.WriteJSON(w, http.StatusOK, reps)
}

func (h *Handler) handleRemoveRepresentative(w http.ResponseWriter, r *http.Request) {
	representativeID, err := id.ParseRepresentativeID(chi.URLParam(r, "representativeID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.RemoveRepresentative(r.Context(), representativeID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
