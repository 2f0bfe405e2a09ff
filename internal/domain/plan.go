package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StepResult records the outcome of executing one plan step. Results are
// transient: they are stripped before a plan enters the cache so a hit
// always yields a clean template.
type StepResult struct {
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// PlanStep is one step of an action plan.
type PlanStep struct {
	Description string      `json:"description"`
	Result      *StepResult `json:"result,omitempty"`
}

// CachedPlan is a previously executed action plan indexed by target domain
// and goal keywords, with running success statistics.
type CachedPlan struct {
	ID           uuid.UUID  `json:"id"`
	Plan         []PlanStep `json:"plan"`
	URLDomain    string     `json:"url_domain"`
	URL          string     `json:"url"`
	GoalKeywords []string   `json:"goal_keywords"`
	Goal         string     `json:"goal"`

	TimesExecuted int     `json:"times_executed"`
	LastPassed    int     `json:"last_passed"`
	LastFailed    int     `json:"last_failed"`
	SuccessRate   float64 `json:"success_rate"`

	SourceRunID string    `json:"source_run_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsedAt  time.Time `json:"last_used_at"`
}

// PlanCacheStore persists cached plans as an owned document collection.
// Fuzzy matching and statistics live in the plan cache service; the store
// is a plain collection.
type PlanCacheStore interface {
	Create(ctx context.Context, p *CachedPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*CachedPlan, error)
	List(ctx context.Context) ([]CachedPlan, error)
	Update(ctx context.Context, p *CachedPlan) error
}
