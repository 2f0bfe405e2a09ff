package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RelationType classifies a directed edge between two mental models.
type RelationType string

const (
	RelationDependsOn   RelationType = "depends_on"
	RelationExplains    RelationType = "explains"
	RelationExtends     RelationType = "extends"
	RelationContradicts RelationType = "contradicts"
)

func ValidRelationType(r string) bool {
	switch RelationType(r) {
	case RelationDependsOn, RelationExplains, RelationExtends, RelationContradicts:
		return true
	}
	return false
}

// GraphEdge is a directed, typed, weighted link between two mental models.
// Weight stays in [0,1]; the evidence id set only grows.
type GraphEdge struct {
	ID          uuid.UUID    `json:"id"`
	FromModel   uuid.UUID    `json:"from_model"`
	ToModel     uuid.UUID    `json:"to_model"`
	Relation    RelationType `json:"relation"`
	Weight      float64      `json:"weight"`
	EvidenceIDs []string     `json:"evidence_ids,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Touches reports whether the edge connects the given model in either
// direction.
func (e *GraphEdge) Touches(modelID uuid.UUID) bool {
	return e.FromModel == modelID || e.ToModel == modelID
}

// EdgeUpdate carries optional replacements for an edge update. Evidence ids
// are unioned, never replaced.
type EdgeUpdate struct {
	Weight      *float64
	EvidenceIDs []string
}

// GraphStore persists relation edges as an owned document collection.
type GraphStore interface {
	Create(ctx context.Context, e *GraphEdge) error
	GetByID(ctx context.Context, id uuid.UUID) (*GraphEdge, error)
	List(ctx context.Context) ([]GraphEdge, error)
	Update(ctx context.Context, id uuid.UUID, upd EdgeUpdate) (*GraphEdge, error)
	Strengthen(ctx context.Context, id uuid.UUID, delta float64) (*GraphEdge, error)
	Weaken(ctx context.Context, id uuid.UUID, delta float64) (*GraphEdge, error)

	FindFromModel(ctx context.Context, modelID uuid.UUID) ([]GraphEdge, error)
	FindToModel(ctx context.Context, modelID uuid.UUID) ([]GraphEdge, error)
	FindByModel(ctx context.Context, modelID uuid.UUID) ([]GraphEdge, error)
	FindByRelation(ctx context.Context, r RelationType) ([]GraphEdge, error)
	FindBetween(ctx context.Context, a, b uuid.UUID) (*GraphEdge, error)
	FindContradictions(ctx context.Context, modelID uuid.UUID) ([]GraphEdge, error)
	FindDependencies(ctx context.Context, modelID uuid.UUID) ([]GraphEdge, error)
	FindDependents(ctx context.Context, modelID uuid.UUID) ([]GraphEdge, error)

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByModel(ctx context.Context, modelID uuid.UUID) (int, error)
}
