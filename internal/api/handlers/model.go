package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/service"
)

type ModelHandler struct {
	svc    *service.ModelService
	models domain.ModelStore
}

func NewModelHandler(svc *service.ModelService, models domain.ModelStore) *ModelHandler {
	return &ModelHandler{svc: svc, models: models}
}

func (h *ModelHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	input, err := service.DecodeCreateInstruction(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	model, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, model)
}

func (h *ModelHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	model, err := h.models.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "model not found")
		return
	}
	writeJSON(w, http.StatusOK, model)
}

// List supports the pure filter queries: domain, status, tag,
// min_confidence, evidence_id. Filters apply one at a time, first match
// wins; with no filter the full collection is returned.
func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var (
		models []domain.MentalModel
		err    error
	)
	switch {
	case q.Get("domain") != "":
		if !domain.ValidModelDomain(q.Get("domain")) {
			writeError(w, http.StatusBadRequest, "invalid domain")
			return
		}
		models, err = h.models.FindByDomain(ctx, domain.ModelDomain(q.Get("domain")))
	case q.Get("status") != "":
		if !domain.ValidModelStatus(q.Get("status")) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		models, err = h.models.FindByStatus(ctx, domain.ModelStatus(q.Get("status")))
	case q.Get("tag") != "":
		models, err = h.models.FindByTag(ctx, q.Get("tag"))
	case q.Get("min_confidence") != "":
		min, perr := strconv.ParseFloat(q.Get("min_confidence"), 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid min_confidence")
			return
		}
		models, err = h.models.FindByMinConfidence(ctx, min)
	case q.Get("evidence_id") != "":
		models, err = h.models.FindByEvidence(ctx, q.Get("evidence_id"))
	default:
		models, err = h.models.List(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models, "count": len(models)})
}

func (h *ModelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	input, err := service.DecodeUpdateInstruction(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	model, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			writeError(w, http.StatusNotFound, "model not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model)
}

type confidenceShiftRequest struct {
	EvidenceIDs []string `json:"evidence_ids"`
	Boost       float64  `json:"boost,omitempty"`
	Penalty     float64  `json:"penalty,omitempty"`
}

func (h *ModelHandler) Reinforce(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req confidenceShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	model, err := h.svc.Reinforce(r.Context(), id, req.EvidenceIDs, req.Boost)
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			writeError(w, http.StatusNotFound, "model not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *ModelHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req confidenceShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	model, err := h.svc.Challenge(r.Context(), id, req.EvidenceIDs, req.Penalty)
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			writeError(w, http.StatusNotFound, "model not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model)
}

type deprecateRequest struct {
	Reason      string   `json:"reason"`
	EvidenceIDs []string `json:"evidence_ids,omitempty"`
}

func (h *ModelHandler) Deprecate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req deprecateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	model, err := h.svc.Deprecate(r.Context(), id, req.Reason, req.EvidenceIDs)
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			writeError(w, http.StatusNotFound, "model not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model)
}

type candidatesRequest struct {
	Observation domain.Observation `json:"observation"`
	Limit       int                `json:"limit,omitempty"`
	MinConf     float64            `json:"min_confidence,omitempty"`
	ActiveOnly  bool               `json:"active_only,omitempty"`
}

type candidatesResponse struct {
	Candidates []service.ScoredModel `json:"candidates"`
	Novel      bool                  `json:"novel"`
}

// Candidates matches an observation against the current belief snapshot
// and reports the ranked candidates plus whether the evidence is novel.
func (h *ModelHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	var req candidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	models, err := h.models.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	candidates := service.SelectCandidates(req.Observation, models, service.CandidateOptions{
		Limit:         req.Limit,
		MinConfidence: req.MinConf,
		ActiveOnly:    req.ActiveOnly,
	})
	writeJSON(w, http.StatusOK, candidatesResponse{
		Candidates: candidates,
		Novel:      service.IsNovel(req.Observation, models),
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
