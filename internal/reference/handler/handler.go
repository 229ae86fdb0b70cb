package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"procura/internal/reference"
	"procura/internal/transport/http/shared"
)

// Handler exposes the designation lookup endpoint.
type Handler struct {
	service *reference.Service
}

func New(svc *reference.Service) *Handler {
	return &Handler{service: svc}
}

// Register mounts the lookup route. Reference data is read-only.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reference/{kind}", h.handleSearch)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	kind, err := reference.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	designations, err := h.service.Search(r.Context(), kind, r.URL.Query().Get("q"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, designations)
}
