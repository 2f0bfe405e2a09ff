package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ModelDomain represents the knowledge domain a mental model belongs to.
type ModelDomain string

const (
	DomainSoftwareQA  ModelDomain = "software_QA"
	DomainProgramming ModelDomain = "programming"
	DomainResearch    ModelDomain = "research"
	DomainGeneral     ModelDomain = "general"
)

func ValidModelDomain(d string) bool {
	switch ModelDomain(d) {
	case DomainSoftwareQA, DomainProgramming, DomainResearch, DomainGeneral:
		return true
	}
	return false
}

// DomainKeywords lists signal words per domain, used for relevance bonuses
// when matching evidence against models of that domain.
var DomainKeywords = map[ModelDomain][]string{
	DomainSoftwareQA:  {"test", "error", "fail", "bug", "qa", "timeout", "database", "connection"},
	DomainProgramming: {"code", "function", "compile", "syntax", "variable", "refactor", "api", "library"},
	DomainResearch:    {"study", "data", "analysis", "hypothesis", "source", "finding", "method", "citation"},
}

// ModelStatus represents the lifecycle state of a mental model.
// Models are never hard-deleted; they transition to deprecated instead.
type ModelStatus string

const (
	StatusActive     ModelStatus = "active"
	StatusDeprecated ModelStatus = "deprecated"
)

func ValidModelStatus(s string) bool {
	switch ModelStatus(s) {
	case StatusActive, StatusDeprecated:
		return true
	}
	return false
}

// UpdateEntry is one record in a model's append-only audit trail.
// The sum of DeltaConfidence over all entries equals the current confidence.
type UpdateEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	ChangeSummary   string    `json:"change_summary"`
	DeltaConfidence float64   `json:"delta_confidence"`
	EvidenceIDs     []string  `json:"evidence_ids,omitempty"`
}

// MentalModel is a versioned belief document about how the target
// environment behaves.
type MentalModel struct {
	ID     uuid.UUID   `json:"id"`
	Title  string      `json:"title"`
	Domain ModelDomain `json:"domain"`
	Tags   []string    `json:"tags,omitempty"`

	Summary        string   `json:"summary,omitempty"`
	CorePrinciples []string `json:"core_principles,omitempty"`
	Assumptions    []string `json:"assumptions,omitempty"`
	Procedures     []string `json:"procedures,omitempty"`
	FailureModes   []string `json:"failure_modes,omitempty"`
	Diagnostics    []string `json:"diagnostics,omitempty"`
	Examples       []string `json:"examples,omitempty"`

	Confidence  float64     `json:"confidence"`
	Status      ModelStatus `json:"status"`
	EvidenceIDs []string    `json:"evidence_ids,omitempty"`

	UpdateHistory []UpdateEntry `json:"update_history"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// HasTag reports whether the model carries the given tag.
func (m *MentalModel) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ReferencesEvidence reports whether the model cites the given evidence id.
func (m *MentalModel) ReferencesEvidence(evidenceID string) bool {
	for _, id := range m.EvidenceIDs {
		if id == evidenceID {
			return true
		}
	}
	return false
}

// ModelPatch carries optional field replacements for a model update.
// Nil pointers and nil slices leave the current value untouched.
type ModelPatch struct {
	Title          *string      `json:"title,omitempty"`
	Domain         *ModelDomain `json:"domain,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	Summary        *string      `json:"summary,omitempty"`
	CorePrinciples []string     `json:"core_principles,omitempty"`
	Assumptions    []string     `json:"assumptions,omitempty"`
	Procedures     []string     `json:"procedures,omitempty"`
	FailureModes   []string     `json:"failure_modes,omitempty"`
	Diagnostics    []string     `json:"diagnostics,omitempty"`
	Examples       []string     `json:"examples,omitempty"`
	Confidence     *float64     `json:"confidence,omitempty"`
	Status         *ModelStatus `json:"status,omitempty"`
}

// ModelUpdate is the audited update primitive: one call appends exactly one
// history entry and unions the evidence ids into the model.
type ModelUpdate struct {
	ChangeSummary string
	EvidenceIDs   []string
	Patch         ModelPatch
}

// ModelStore persists mental models as an owned document collection.
type ModelStore interface {
	Create(ctx context.Context, m *MentalModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*MentalModel, error)
	List(ctx context.Context) ([]MentalModel, error)
	Apply(ctx context.Context, id uuid.UUID, upd ModelUpdate) (*MentalModel, error)

	FindByDomain(ctx context.Context, d ModelDomain) ([]MentalModel, error)
	FindByStatus(ctx context.Context, s ModelStatus) ([]MentalModel, error)
	FindByTag(ctx context.Context, tag string) ([]MentalModel, error)
	FindByMinConfidence(ctx context.Context, min float64) ([]MentalModel, error)
	FindByEvidence(ctx context.Context, evidenceID string) ([]MentalModel, error)
}
