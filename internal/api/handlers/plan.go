package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/service"
)

type PlanHandler struct {
	svc *service.PlanCacheService
}

func NewPlanHandler(svc *service.PlanCacheService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

type findPlanRequest struct {
	URL      string  `json:"url"`
	Goal     string  `json:"goal"`
	MinScore float64 `json:"min_score,omitempty"`
}

func (h *PlanHandler) Find(w http.ResponseWriter, r *http.Request) {
	var req findPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	match, err := h.svc.FindCachedPlan(r.Context(), req.URL, req.Goal, req.MinScore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if match == nil {
		writeError(w, http.StatusNotFound, "no cached plan qualifies")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

type savePlanRequest struct {
	Plan  []domain.PlanStep `json:"plan"`
	URL   string            `json:"url"`
	Goal  string            `json:"goal"`
	RunID string            `json:"run_id,omitempty"`
}

func (h *PlanHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req savePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Plan) == 0 {
		writeError(w, http.StatusBadRequest, "plan is empty")
		return
	}

	entry, err := h.svc.SavePlanToCache(r.Context(), req.Plan, req.URL, req.Goal, req.RunID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type recordReuseRequest struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

func (h *PlanHandler) RecordReuse(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req recordReuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Unknown ids are deliberately a no-op, not an error.
	if err := h.svc.RecordPlanReuse(r.Context(), id, req.Passed, req.Failed); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
