package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/probelab/beliefd/internal/domain"
)

// PlanCacheStore is the file-backed cached plan collection.
type PlanCacheStore struct {
	col *collection[domain.CachedPlan]
}

func NewPlanCacheStore(dir string) *PlanCacheStore {
	return &PlanCacheStore{col: newCollection[domain.CachedPlan](filepath.Join(dir, "plans.json"))}
}

func (s *PlanCacheStore) Create(ctx context.Context, p *domain.CachedPlan) error {
	return s.col.mutate(func(items []domain.CachedPlan) ([]domain.CachedPlan, error) {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		now := time.Now().UTC()
		p.CreatedAt = now
		if p.LastUsedAt.IsZero() {
			p.LastUsedAt = now
		}
		return append(items, *p), nil
	})
}

func (s *PlanCacheStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CachedPlan, error) {
	var found *domain.CachedPlan
	err := s.col.view(func(items []domain.CachedPlan) error {
		for i := range items {
			if items[i].ID == id {
				p := items[i]
				found = &p
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

func (s *PlanCacheStore) List(ctx context.Context) ([]domain.CachedPlan, error) {
	var out []domain.CachedPlan
	err := s.col.view(func(items []domain.CachedPlan) error {
		out = append(out, items...)
		return nil
	})
	return out, err
}

// Update replaces the stored entry with the same id.
func (s *PlanCacheStore) Update(ctx context.Context, p *domain.CachedPlan) error {
	return s.col.mutate(func(items []domain.CachedPlan) ([]domain.CachedPlan, error) {
		for i := range items {
			if items[i].ID == p.ID {
				items[i] = *p
				return items, nil
			}
		}
		return nil, ErrNotFound
	})
}
