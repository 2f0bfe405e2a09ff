package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/probelab/beliefd/internal/domain"
)

// ModelStore is the file-backed mental model collection.
type ModelStore struct {
	col *collection[domain.MentalModel]
}

func NewModelStore(dir string) *ModelStore {
	return &ModelStore{col: newCollection[domain.MentalModel](filepath.Join(dir, "models.json"))}
}

// Create assigns an id and timestamps and seeds the audit trail with one
// entry whose delta equals the initial confidence.
func (s *ModelStore) Create(ctx context.Context, m *domain.MentalModel) error {
	return s.col.mutate(func(items []domain.MentalModel) ([]domain.MentalModel, error) {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		now := time.Now().UTC()
		m.CreatedAt = now
		m.LastUpdated = now
		if m.Status == "" {
			m.Status = domain.StatusActive
		}
		if m.Domain == "" {
			m.Domain = domain.DomainGeneral
		}
		m.Confidence = clamp01(m.Confidence)
		m.UpdateHistory = []domain.UpdateEntry{{
			Timestamp:       now,
			ChangeSummary:   "created",
			DeltaConfidence: m.Confidence,
			EvidenceIDs:     append([]string(nil), m.EvidenceIDs...),
		}}
		return append(items, *m), nil
	})
}

func (s *ModelStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MentalModel, error) {
	var found *domain.MentalModel
	err := s.col.view(func(items []domain.MentalModel) error {
		for i := range items {
			if items[i].ID == id {
				m := items[i]
				found = &m
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

func (s *ModelStore) List(ctx context.Context) ([]domain.MentalModel, error) {
	var out []domain.MentalModel
	err := s.col.view(func(items []domain.MentalModel) error {
		out = append(out, items...)
		return nil
	})
	return out, err
}

// Apply performs the audited update: it computes the confidence delta,
// appends exactly one history entry, unions evidence ids, preserves ID and
// CreatedAt, and bumps LastUpdated.
func (s *ModelStore) Apply(ctx context.Context, id uuid.UUID, upd domain.ModelUpdate) (*domain.MentalModel, error) {
	var updated *domain.MentalModel
	err := s.col.mutate(func(items []domain.MentalModel) ([]domain.MentalModel, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			m := &items[i]
			prev := m.Confidence
			applyPatch(m, upd.Patch)
			m.Confidence = clamp01(m.Confidence)
			m.EvidenceIDs = unionStrings(m.EvidenceIDs, upd.EvidenceIDs)

			now := time.Now().UTC()
			m.UpdateHistory = append(m.UpdateHistory, domain.UpdateEntry{
				Timestamp:       now,
				ChangeSummary:   upd.ChangeSummary,
				DeltaConfidence: m.Confidence - prev,
				EvidenceIDs:     append([]string(nil), upd.EvidenceIDs...),
			})
			m.LastUpdated = now

			out := *m
			updated = &out
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyPatch(m *domain.MentalModel, p domain.ModelPatch) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Domain != nil {
		m.Domain = *p.Domain
	}
	if p.Tags != nil {
		m.Tags = p.Tags
	}
	if p.Summary != nil {
		m.Summary = *p.Summary
	}
	if p.CorePrinciples != nil {
		m.CorePrinciples = p.CorePrinciples
	}
	if p.Assumptions != nil {
		m.Assumptions = p.Assumptions
	}
	if p.Procedures != nil {
		m.Procedures = p.Procedures
	}
	if p.FailureModes != nil {
		m.FailureModes = p.FailureModes
	}
	if p.Diagnostics != nil {
		m.Diagnostics = p.Diagnostics
	}
	if p.Examples != nil {
		m.Examples = p.Examples
	}
	if p.Confidence != nil {
		m.Confidence = *p.Confidence
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
}

func (s *ModelStore) FindByDomain(ctx context.Context, d domain.ModelDomain) ([]domain.MentalModel, error) {
	return s.filter(func(m *domain.MentalModel) bool { return m.Domain == d })
}

func (s *ModelStore) FindByStatus(ctx context.Context, st domain.ModelStatus) ([]domain.MentalModel, error) {
	return s.filter(func(m *domain.MentalModel) bool { return m.Status == st })
}

func (s *ModelStore) FindByTag(ctx context.Context, tag string) ([]domain.MentalModel, error) {
	return s.filter(func(m *domain.MentalModel) bool { return m.HasTag(tag) })
}

func (s *ModelStore) FindByMinConfidence(ctx context.Context, min float64) ([]domain.MentalModel, error) {
	return s.filter(func(m *domain.MentalModel) bool { return m.Confidence >= min })
}

func (s *ModelStore) FindByEvidence(ctx context.Context, evidenceID string) ([]domain.MentalModel, error) {
	return s.filter(func(m *domain.MentalModel) bool { return m.ReferencesEvidence(evidenceID) })
}

func (s *ModelStore) filter(keep func(*domain.MentalModel) bool) ([]domain.MentalModel, error) {
	var out []domain.MentalModel
	err := s.col.view(func(items []domain.MentalModel) error {
		for i := range items {
			if keep(&items[i]) {
				out = append(out, items[i])
			}
		}
		return nil
	})
	return out, err
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// unionStrings appends the members of add that base does not already
// contain, preserving insertion order.
func unionStrings(base, add []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range add {
		if !seen[s] {
			seen[s] = true
			base = append(base, s)
		}
	}
	return base
}
