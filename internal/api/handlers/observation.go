package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/store"
)

// ObservationHandler exposes the read-only view of the external
// observation log. There is no write or delete surface: the log is owned
// elsewhere and append-only.
type ObservationHandler struct {
	observations domain.ObservationSource
}

func NewObservationHandler(observations domain.ObservationSource) *ObservationHandler {
	return &ObservationHandler{observations: observations}
}

func (h *ObservationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	obs, err := h.observations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "observation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (h *ObservationHandler) List(w http.ResponseWriter, r *http.Request) {
	observations, err := h.observations.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"observations": observations, "count": len(observations)})
}
