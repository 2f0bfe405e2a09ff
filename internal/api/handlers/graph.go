package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/store"
)

type GraphHandler struct {
	graph domain.GraphStore
}

func NewGraphHandler(graph domain.GraphStore) *GraphHandler {
	return &GraphHandler{graph: graph}
}

type createEdgeRequest struct {
	FromModel   string   `json:"from_model"`
	ToModel     string   `json:"to_model"`
	Relation    string   `json:"relation"`
	Weight      float64  `json:"weight"`
	EvidenceIDs []string `json:"evidence_ids,omitempty"`
}

func (h *GraphHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from, err := uuid.Parse(req.FromModel)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from_model")
		return
	}
	to, err := uuid.Parse(req.ToModel)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to_model")
		return
	}
	if !domain.ValidRelationType(req.Relation) {
		writeError(w, http.StatusBadRequest, "invalid relation")
		return
	}

	edge := &domain.GraphEdge{
		FromModel:   from,
		ToModel:     to,
		Relation:    domain.RelationType(req.Relation),
		Weight:      req.Weight,
		EvidenceIDs: req.EvidenceIDs,
	}
	if err := h.graph.Create(r.Context(), edge); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// List supports directional and relation-typed queries via query params:
// model (either direction), from, to, relation, contradictions,
// dependencies, dependents, and between via the a+b pair.
func (h *GraphHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	if a, b := q.Get("a"), q.Get("b"); a != "" && b != "" {
		idA, errA := uuid.Parse(a)
		idB, errB := uuid.Parse(b)
		if errA != nil || errB != nil {
			writeError(w, http.StatusBadRequest, "invalid model id")
			return
		}
		edge, err := h.graph.FindBetween(ctx, idA, idB)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no edge between models")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, edge)
		return
	}

	modelQuery := func(raw string, fn func(context.Context, uuid.UUID) ([]domain.GraphEdge, error)) ([]domain.GraphEdge, error) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.New("invalid model id")
		}
		return fn(ctx, id)
	}

	var (
		edges []domain.GraphEdge
		err   error
	)
	switch {
	case q.Get("contradictions") != "":
		edges, err = modelQuery(q.Get("contradictions"), h.graph.FindContradictions)
	case q.Get("dependencies") != "":
		edges, err = modelQuery(q.Get("dependencies"), h.graph.FindDependencies)
	case q.Get("dependents") != "":
		edges, err = modelQuery(q.Get("dependents"), h.graph.FindDependents)
	case q.Get("from") != "":
		edges, err = modelQuery(q.Get("from"), h.graph.FindFromModel)
	case q.Get("to") != "":
		edges, err = modelQuery(q.Get("to"), h.graph.FindToModel)
	case q.Get("model") != "":
		edges, err = modelQuery(q.Get("model"), h.graph.FindByModel)
	case q.Get("relation") != "":
		if !domain.ValidRelationType(q.Get("relation")) {
			writeError(w, http.StatusBadRequest, "invalid relation")
			return
		}
		edges, err = h.graph.FindByRelation(ctx, domain.RelationType(q.Get("relation")))
	default:
		edges, err = h.graph.List(ctx)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"edges": edges, "count": len(edges)})
}

type adjustWeightRequest struct {
	Delta       float64  `json:"delta"`
	EvidenceIDs []string `json:"evidence_ids,omitempty"`
}

func (h *GraphHandler) Strengthen(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.graph.Strengthen)
}

func (h *GraphHandler) Weaken(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.graph.Weaken)
}

func (h *GraphHandler) adjust(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, float64) (*domain.GraphEdge, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req adjustWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	edge, err := fn(r.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "edge not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(req.EvidenceIDs) > 0 {
		edge, err = h.graph.Update(r.Context(), id, domain.EdgeUpdate{EvidenceIDs: req.EvidenceIDs})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, edge)
}

func (h *GraphHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.graph.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "edge not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteByModel cascades removal of every edge touching a model that has
// been removed from play.
func (h *GraphHandler) DeleteByModel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	removed, err := h.graph.DeleteByModel(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
