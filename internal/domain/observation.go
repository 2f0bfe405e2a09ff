package domain

import (
	"context"
	"time"
)

// Observation is an immutable, timestamped evidence record. The observation
// log is owned outside this engine; observations are consumed read-only and
// never mutated here.
type Observation struct {
	ID         string    `json:"id"`
	Summary    string    `json:"summary"`
	KeyPoints  []string  `json:"key_points,omitempty"`
	Entities   []string  `json:"entities,omitempty"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// ObservationSource is the read-only view of the external observation log.
// There is deliberately no delete: observations are append-only and removal
// is a programming error, not a runtime condition.
type ObservationSource interface {
	GetByID(ctx context.Context, id string) (*Observation, error)
	List(ctx context.Context) ([]Observation, error)
}
