package service

import (
	"go.uber.org/zap"

	"github.com/probelab/beliefd/internal/chunk"
	"github.com/probelab/beliefd/internal/salience"
)

// ContentKind selects the chunking algorithm for raw input.
type ContentKind string

const (
	ContentGeneric ContentKind = "generic"
	ContentLog     ContentKind = "log"
)

// ScoredChunk is a chunk annotated with its salience score, ready for the
// external observation log.
type ScoredChunk struct {
	chunk.Chunk
	Salience salience.Result `json:"salience"`
}

// PerceptionService turns raw sensory content into scored chunks. It is a
// thin composition of the chunker and the salience scorer and keeps no
// state of its own.
type PerceptionService struct {
	logger *zap.Logger
}

func NewPerceptionService(logger *zap.Logger) *PerceptionService {
	return &PerceptionService{logger: logger}
}

// Perceive chunks the content and scores each chunk. Empty input yields an
// empty result, never an error.
func (s *PerceptionService) Perceive(content string, kind ContentKind, opts chunk.Options) []ScoredChunk {
	var chunks []chunk.Chunk
	switch kind {
	case ContentLog:
		chunks = chunk.Log(content, opts)
	default:
		chunks = chunk.Text(content, opts)
	}

	out := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, ScoredChunk{Chunk: c, Salience: salience.ScoreChunk(c)})
	}

	s.logger.Debug("perceived content",
		zap.String("kind", string(kind)),
		zap.Int("content_bytes", len(content)),
		zap.Int("chunks", len(out)))
	return out
}
