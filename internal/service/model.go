package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/store"
)

// Belief revision constants.
const (
	DefaultReinforceBoost    = 0.05
	DefaultChallengePenalty  = 0.1
	DefaultInitialConfidence = 0.5
)

var (
	ErrModelNotFound   = errors.New("mental model not found")
	ErrModelTitleEmpty = errors.New("model title is empty")
)

// ModelService owns the belief lifecycle: creation, audited updates,
// reinforcement, challenge, deprecation, and the relation edges an
// instruction asserts alongside a belief change.
type ModelService struct {
	models domain.ModelStore
	graph  domain.GraphStore
	logger *zap.Logger
}

func NewModelService(models domain.ModelStore, graph domain.GraphStore, logger *zap.Logger) *ModelService {
	return &ModelService{models: models, graph: graph, logger: logger}
}

// RelationInput asserts an edge from the subject model to a target model.
type RelationInput struct {
	TargetID uuid.UUID           `json:"target_id"`
	Relation domain.RelationType `json:"relation"`
	Weight   float64             `json:"weight"`
}

// CreateInput is the validated input for forming a new belief.
type CreateInput struct {
	Title          string
	Domain         domain.ModelDomain
	Tags           []string
	Summary        string
	CorePrinciples []string
	Assumptions    []string
	Procedures     []string
	FailureModes   []string
	Diagnostics    []string
	Examples       []string
	Confidence     float64
	EvidenceIDs    []string
	Relations      []RelationInput
}

// UpdateInput is the validated input for an audited belief update.
type UpdateInput struct {
	ChangeSummary string
	EvidenceIDs   []string
	Patch         domain.ModelPatch
	Relations     []RelationInput
}

func (s *ModelService) Create(ctx context.Context, in CreateInput) (*domain.MentalModel, error) {
	if in.Title == "" {
		return nil, ErrModelTitleEmpty
	}

	m := &domain.MentalModel{
		Title:          in.Title,
		Domain:         in.Domain,
		Tags:           in.Tags,
		Summary:        in.Summary,
		CorePrinciples: in.CorePrinciples,
		Assumptions:    in.Assumptions,
		Procedures:     in.Procedures,
		FailureModes:   in.FailureModes,
		Diagnostics:    in.Diagnostics,
		Examples:       in.Examples,
		Confidence:     in.Confidence,
		EvidenceIDs:    in.EvidenceIDs,
	}
	if err := s.models.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	s.logger.Info("mental model created",
		zap.String("model_id", m.ID.String()),
		zap.String("domain", string(m.Domain)),
		zap.Float64("confidence", m.Confidence))

	s.applyRelations(ctx, m.ID, in.Relations, in.EvidenceIDs)
	return m, nil
}

func (s *ModelService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*domain.MentalModel, error) {
	m, err := s.models.Apply(ctx, id, domain.ModelUpdate{
		ChangeSummary: in.ChangeSummary,
		EvidenceIDs:   in.EvidenceIDs,
		Patch:         in.Patch,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	s.applyRelations(ctx, id, in.Relations, in.EvidenceIDs)
	return m, nil
}

// Reinforce raises confidence by boost (default 0.05), clamped to [0,1],
// appending one audit entry.
func (s *ModelService) Reinforce(ctx context.Context, id uuid.UUID, evidenceIDs []string, boost float64) (*domain.MentalModel, error) {
	if boost == 0 {
		boost = DefaultReinforceBoost
	}
	return s.shiftConfidence(ctx, id, evidenceIDs, boost, "reinforced")
}

// Challenge lowers confidence by penalty (default 0.1), clamped to [0,1],
// appending one audit entry.
func (s *ModelService) Challenge(ctx context.Context, id uuid.UUID, evidenceIDs []string, penalty float64) (*domain.MentalModel, error) {
	if penalty == 0 {
		penalty = DefaultChallengePenalty
	}
	return s.shiftConfidence(ctx, id, evidenceIDs, -penalty, "challenged")
}

func (s *ModelService) shiftConfidence(ctx context.Context, id uuid.UUID, evidenceIDs []string, delta float64, verb string) (*domain.MentalModel, error) {
	m, err := s.models.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	next := clampUnit(m.Confidence + delta)
	summary := fmt.Sprintf("%s by %d evidence item(s): confidence %.2f -> %.2f",
		verb, len(evidenceIDs), m.Confidence, next)

	updated, err := s.models.Apply(ctx, id, domain.ModelUpdate{
		ChangeSummary: summary,
		EvidenceIDs:   evidenceIDs,
		Patch:         domain.ModelPatch{Confidence: &next},
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	s.logger.Debug("model confidence shifted",
		zap.String("model_id", id.String()),
		zap.String("verb", verb),
		zap.Float64("confidence", updated.Confidence))
	return updated, nil
}

// Deprecate marks the model deprecated. Models are never hard-deleted.
func (s *ModelService) Deprecate(ctx context.Context, id uuid.UUID, reason string, evidenceIDs []string) (*domain.MentalModel, error) {
	status := domain.StatusDeprecated
	m, err := s.models.Apply(ctx, id, domain.ModelUpdate{
		ChangeSummary: "deprecated: " + reason,
		EvidenceIDs:   evidenceIDs,
		Patch:         domain.ModelPatch{Status: &status},
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	s.logger.Info("mental model deprecated",
		zap.String("model_id", id.String()),
		zap.String("reason", reason))
	return m, nil
}

// applyRelations creates the edges an instruction asserts. An edge whose
// target model does not exist is skipped with a warning; the belief change
// it rode in on still stands.
func (s *ModelService) applyRelations(ctx context.Context, from uuid.UUID, relations []RelationInput, evidenceIDs []string) {
	for _, rel := range relations {
		if _, err := s.models.GetByID(ctx, rel.TargetID); err != nil {
			s.logger.Warn("relation target does not exist, skipping edge",
				zap.String("from", from.String()),
				zap.String("target", rel.TargetID.String()),
				zap.String("relation", string(rel.Relation)))
			continue
		}
		edge := &domain.GraphEdge{
			FromModel:   from,
			ToModel:     rel.TargetID,
			Relation:    rel.Relation,
			Weight:      rel.Weight,
			EvidenceIDs: evidenceIDs,
		}
		if err := s.graph.Create(ctx, edge); err != nil {
			s.logger.Warn("failed to create relation edge",
				zap.String("from", from.String()),
				zap.String("target", rel.TargetID.String()),
				zap.Error(err))
		}
	}
}

// rawCreateInstruction mirrors the JSON shape the upstream model emits when
// it forms a belief. All fields besides title are optional.
type rawCreateInstruction struct {
	Title          string          `json:"title"`
	Domain         string          `json:"domain"`
	Tags           []string        `json:"tags"`
	Summary        string          `json:"summary"`
	CorePrinciples []string        `json:"core_principles"`
	Assumptions    []string        `json:"assumptions"`
	Procedures     []string        `json:"procedures"`
	FailureModes   []string        `json:"failure_modes"`
	Diagnostics    []string        `json:"diagnostics"`
	Examples       []string        `json:"examples"`
	Confidence     *float64        `json:"confidence"`
	EvidenceIDs    []string        `json:"evidence_ids"`
	Relations      []rawRelation   `json:"relations"`
}

type rawRelation struct {
	TargetID string  `json:"target_id"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

type rawUpdateInstruction struct {
	ChangeSummary string        `json:"change_summary"`
	EvidenceIDs   []string      `json:"evidence_ids"`
	Updates       rawModelPatch `json:"updates"`
	Relations     []rawRelation `json:"relations"`
}

type rawModelPatch struct {
	Title          *string  `json:"title"`
	Domain         *string  `json:"domain"`
	Tags           []string `json:"tags"`
	Summary        *string  `json:"summary"`
	CorePrinciples []string `json:"core_principles"`
	Assumptions    []string `json:"assumptions"`
	Procedures     []string `json:"procedures"`
	FailureModes   []string `json:"failure_modes"`
	Diagnostics    []string `json:"diagnostics"`
	Examples       []string `json:"examples"`
	Confidence     *float64 `json:"confidence"`
	Status         *string  `json:"status"`
}

// DecodeCreateInstruction is the single validation boundary for belief
// formation instructions arriving from the upstream model. Missing or
// invalid fields map to documented defaults (domain -> general, confidence
// -> 0.5 clamped); a missing title or malformed JSON is a decode failure.
// Nothing partially decoded flows past this function.
func DecodeCreateInstruction(raw []byte) (CreateInput, error) {
	var r rawCreateInstruction
	if err := json.Unmarshal(raw, &r); err != nil {
		return CreateInput{}, fmt.Errorf("decode create instruction: %w", err)
	}
	if r.Title == "" {
		return CreateInput{}, ErrModelTitleEmpty
	}

	in := CreateInput{
		Title:          r.Title,
		Domain:         decodeDomain(r.Domain),
		Tags:           r.Tags,
		Summary:        r.Summary,
		CorePrinciples: r.CorePrinciples,
		Assumptions:    r.Assumptions,
		Procedures:     r.Procedures,
		FailureModes:   r.FailureModes,
		Diagnostics:    r.Diagnostics,
		Examples:       r.Examples,
		Confidence:     DefaultInitialConfidence,
		EvidenceIDs:    r.EvidenceIDs,
	}
	if r.Confidence != nil {
		in.Confidence = clampUnit(*r.Confidence)
	}

	rels, err := decodeRelations(r.Relations)
	if err != nil {
		return CreateInput{}, err
	}
	in.Relations = rels
	return in, nil
}

// DecodeUpdateInstruction validates a belief-update instruction. Unknown
// domains fall back to general, confidence is clamped, and an invalid
// status or relation type is a decode failure.
func DecodeUpdateInstruction(raw []byte) (UpdateInput, error) {
	var r rawUpdateInstruction
	if err := json.Unmarshal(raw, &r); err != nil {
		return UpdateInput{}, fmt.Errorf("decode update instruction: %w", err)
	}

	in := UpdateInput{
		ChangeSummary: r.ChangeSummary,
		EvidenceIDs:   r.EvidenceIDs,
	}
	if in.ChangeSummary == "" {
		in.ChangeSummary = "updated"
	}

	p := domain.ModelPatch{
		Title:          r.Updates.Title,
		Tags:           r.Updates.Tags,
		Summary:        r.Updates.Summary,
		CorePrinciples: r.Updates.CorePrinciples,
		Assumptions:    r.Updates.Assumptions,
		Procedures:     r.Updates.Procedures,
		FailureModes:   r.Updates.FailureModes,
		Diagnostics:    r.Updates.Diagnostics,
		Examples:       r.Updates.Examples,
	}
	if r.Updates.Domain != nil {
		d := decodeDomain(*r.Updates.Domain)
		p.Domain = &d
	}
	if r.Updates.Confidence != nil {
		c := clampUnit(*r.Updates.Confidence)
		p.Confidence = &c
	}
	if r.Updates.Status != nil {
		if !domain.ValidModelStatus(*r.Updates.Status) {
			return UpdateInput{}, fmt.Errorf("invalid status %q", *r.Updates.Status)
		}
		st := domain.ModelStatus(*r.Updates.Status)
		p.Status = &st
	}
	in.Patch = p

	rels, err := decodeRelations(r.Relations)
	if err != nil {
		return UpdateInput{}, err
	}
	in.Relations = rels
	return in, nil
}

func decodeDomain(d string) domain.ModelDomain {
	if domain.ValidModelDomain(d) {
		return domain.ModelDomain(d)
	}
	return domain.DomainGeneral
}

func decodeRelations(raw []rawRelation) ([]RelationInput, error) {
	var out []RelationInput
	for _, rr := range raw {
		if !domain.ValidRelationType(rr.Relation) {
			return nil, fmt.Errorf("invalid relation type %q", rr.Relation)
		}
		target, err := uuid.Parse(rr.TargetID)
		if err != nil {
			return nil, fmt.Errorf("invalid relation target id %q", rr.TargetID)
		}
		out = append(out, RelationInput{
			TargetID: target,
			Relation: domain.RelationType(rr.Relation),
			Weight:   clampUnit(rr.Weight),
		})
	}
	return out, nil
}
