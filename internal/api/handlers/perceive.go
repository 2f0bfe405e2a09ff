package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/probelab/beliefd/internal/chunk"
	"github.com/probelab/beliefd/internal/config"
	"github.com/probelab/beliefd/internal/service"
)

type PerceiveHandler struct {
	svc *service.PerceptionService
}

func NewPerceiveHandler(svc *service.PerceptionService) *PerceiveHandler {
	return &PerceiveHandler{svc: svc}
}

type perceiveRequest struct {
	Content      string `json:"content"`
	ContentType  string `json:"content_type,omitempty"`
	MaxChunkSize int    `json:"max_chunk_size,omitempty"`
	MinChunkSize int    `json:"min_chunk_size,omitempty"`
	Overlap      int    `json:"overlap,omitempty"`
}

// Perceive chunks and scores raw content on behalf of the observation log.
func (h *PerceiveHandler) Perceive(w http.ResponseWriter, r *http.Request) {
	var req perceiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind := service.ContentGeneric
	if req.ContentType == string(service.ContentLog) {
		kind = service.ContentLog
	}

	opts := chunk.Options{
		MaxChunkSize: req.MaxChunkSize,
		MinChunkSize: req.MinChunkSize,
		Overlap:      req.Overlap,
	}
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = config.ChunkMaxSize()
	}
	if opts.MinChunkSize <= 0 {
		opts.MinChunkSize = config.ChunkMinSize()
	}
	if opts.Overlap <= 0 {
		opts.Overlap = config.ChunkOverlap()
	}

	chunks := h.svc.Perceive(req.Content, kind, opts)
	writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks, "count": len(chunks)})
}
