package store

import (
	"context"
	"path/filepath"

	"github.com/probelab/beliefd/internal/domain"
)

// ObservationStore is a read-only view over the observation log file the
// external perception loop writes. The engine never mutates observations.
type ObservationStore struct {
	col *collection[domain.Observation]
}

func NewObservationStore(dir string) *ObservationStore {
	return &ObservationStore{col: newCollection[domain.Observation](filepath.Join(dir, "observations.json"))}
}

func (s *ObservationStore) GetByID(ctx context.Context, id string) (*domain.Observation, error) {
	var found *domain.Observation
	err := s.col.view(func(items []domain.Observation) error {
		for i := range items {
			if items[i].ID == id {
				o := items[i]
				found = &o
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

func (s *ObservationStore) List(ctx context.Context) ([]domain.Observation, error) {
	var out []domain.Observation
	err := s.col.view(func(items []domain.Observation) error {
		out = append(out, items...)
		return nil
	})
	return out, err
}

// Delete always fails: the observation log is append-only and owned
// elsewhere. Calling this is a programming error.
func (s *ObservationStore) Delete(ctx context.Context, id string) error {
	return ErrNotSupported
}
