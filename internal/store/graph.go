package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/probelab/beliefd/internal/domain"
)

// GraphStore is the file-backed relation edge collection.
type GraphStore struct {
	col *collection[domain.GraphEdge]
}

func NewGraphStore(dir string) *GraphStore {
	return &GraphStore{col: newCollection[domain.GraphEdge](filepath.Join(dir, "edges.json"))}
}

func (s *GraphStore) Create(ctx context.Context, e *domain.GraphEdge) error {
	if !domain.ValidRelationType(string(e.Relation)) {
		return fmt.Errorf("invalid relation type %q", e.Relation)
	}
	return s.col.mutate(func(items []domain.GraphEdge) ([]domain.GraphEdge, error) {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		now := time.Now().UTC()
		e.CreatedAt = now
		e.UpdatedAt = now
		e.Weight = clamp01(e.Weight)
		return append(items, *e), nil
	})
}

func (s *GraphStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GraphEdge, error) {
	var found *domain.GraphEdge
	err := s.col.view(func(items []domain.GraphEdge) error {
		for i := range items {
			if items[i].ID == id {
				e := items[i]
				found = &e
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *GraphStore) List(ctx context.Context) ([]domain.GraphEdge, error) {
	var out []domain.GraphEdge
	err := s.col.view(func(items []domain.GraphEdge) error {
		out = append(out, items...)
		return nil
	})
	return out, err
}

// Update unions evidence ids and optionally replaces the weight, preserving
// ID and CreatedAt.
func (s *GraphStore) Update(ctx context.Context, id uuid.UUID, upd domain.EdgeUpdate) (*domain.GraphEdge, error) {
	return s.apply(id, func(e *domain.GraphEdge) {
		if upd.Weight != nil {
			e.Weight = clamp01(*upd.Weight)
		}
		e.EvidenceIDs = unionStrings(e.EvidenceIDs, upd.EvidenceIDs)
	})
}

func (s *GraphStore) Strengthen(ctx context.Context, id uuid.UUID, delta float64) (*domain.GraphEdge, error) {
	return s.apply(id, func(e *domain.GraphEdge) {
		e.Weight = clamp01(e.Weight + delta)
	})
}

func (s *GraphStore) Weaken(ctx context.Context, id uuid.UUID, delta float64) (*domain.GraphEdge, error) {
	return s.apply(id, func(e *domain.GraphEdge) {
		e.Weight = clamp01(e.Weight - delta)
	})
}

func (s *GraphStore) apply(id uuid.UUID, fn func(*domain.GraphEdge)) (*domain.GraphEdge, error) {
	var updated *domain.GraphEdge
	err := s.col.mutate(func(items []domain.GraphEdge) ([]domain.GraphEdge, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			fn(&items[i])
			items[i].UpdatedAt = time.Now().UTC()
			e := items[i]
			updated = &e
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GraphStore) FindFromModel(ctx context.Context, modelID uuid.UUID) ([]domain.GraphEdge, error) {
	return s.filter(func(e *domain.GraphEdge) bool { return e.FromModel == modelID })
}

func (s *GraphStore) FindToModel(ctx context.Context, modelID uuid.UUID) ([]domain.GraphEdge, error) {
	return s.filter(func(e *domain.GraphEdge) bool { return e.ToModel == modelID })
}

func (s *GraphStore) FindByModel(ctx context.Context, modelID uuid.UUID) ([]domain.GraphEdge, error) {
	return s.filter(func(e *domain.GraphEdge) bool { return e.Touches(modelID) })
}

func (s *GraphStore) FindByRelation(ctx context.Context, r domain.RelationType) ([]domain.GraphEdge, error) {
	return s.filter(func(e *domain.GraphEdge) bool { return e.Relation == r })
}

// FindBetween returns the first edge connecting a and b in either direction,
// in collection order, or ErrNotFound.
func (s *GraphStore) FindBetween(ctx context.Context, a, b uuid.UUID) (*domain.GraphEdge, error) {
	var found *domain.GraphEdge
	err := s.col.view(func(items []domain.GraphEdge) error {
		for i := range items {
			e := &items[i]
			if (e.FromModel == a && e.ToModel == b) || (e.FromModel == b && e.ToModel == a) {
				out := *e
				found = &out
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *GraphStore) FindContradictions(ctx context.Context, modelID uuid.UUID) ([]domain.GraphEdge, error) {
	return s.filter(func(e *domain.GraphEdge) bool {
		return e.Relation == domain.RelationContradicts && e.Touches(modelID)
	})
}

// FindDependencies returns edges describing what the model depends on.
func (s *GraphStore) FindDependencies(ctx context.Context, modelID uuid.UUID) ([]domain.GraphEdge, error) {
	return s.filter(func(e *domain.GraphEdge) bool {
		return e.Relation == domain.RelationDependsOn && e.FromModel == modelID
	})
}

// FindDependents returns edges describing what depends on the model.
func (s *GraphStore) FindDependents(ctx context.Context, modelID uuid.UUID) ([]domain.GraphEdge, error) {
	return s.filter(func(e *domain.GraphEdge) bool {
		return e.Relation == domain.RelationDependsOn && e.ToModel == modelID
	})
}

func (s *GraphStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.col.mutate(func(items []domain.GraphEdge) ([]domain.GraphEdge, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// DeleteByModel removes every edge touching the model and returns how many
// were removed. Used to cascade when a model is removed from play.
func (s *GraphStore) DeleteByModel(ctx context.Context, modelID uuid.UUID) (int, error) {
	removed := 0
	err := s.col.mutate(func(items []domain.GraphEdge) ([]domain.GraphEdge, error) {
		kept := items[:0]
		for i := range items {
			if items[i].Touches(modelID) {
				removed++
				continue
			}
			kept = append(kept, items[i])
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *GraphStore) filter(keep func(*domain.GraphEdge) bool) ([]domain.GraphEdge, error) {
	var out []domain.GraphEdge
	err := s.col.view(func(items []domain.GraphEdge) error {
		for i := range items {
			if keep(&items[i]) {
				out = append(out, items[i])
			}
		}
		return nil
	})
	return out, err
}
