package service

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/store"
)

// Plan cache matching constants.
const (
	DefaultPlanMinScore  = 0.4
	PlanMergeSimilarity  = 0.6
	planDomainWeight     = 0.5
	planExactURLWeight   = 0.2
	planKeywordWeight    = 0.3
	planTrackRecordBonus = 0.05
)

// goalStopWords are filtered out of goal keyword sets before matching.
var goalStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "from": true, "into": true, "onto": true, "are": true,
	"was": true, "were": true, "will": true, "can": true, "should": true,
	"then": true, "than": true, "you": true, "your": true, "please": true,
	"using": true, "use": true, "via": true, "all": true, "any": true,
	"its": true, "has": true, "have": true, "not": true, "out": true,
}

// PlanMatch is a cache hit: the entry plus the score that selected it.
type PlanMatch struct {
	Entry *domain.CachedPlan `json:"entry"`
	Score float64            `json:"score"`
}

// PlanCacheService caches previously executed action plans for fuzzy reuse
// keyed by target domain and goal keywords.
type PlanCacheService struct {
	plans  domain.PlanCacheStore
	logger *zap.Logger
}

func NewPlanCacheService(plans domain.PlanCacheStore, logger *zap.Logger) *PlanCacheService {
	return &PlanCacheService{plans: plans, logger: logger}
}

// FindCachedPlan returns the best cached plan for the target url and goal,
// or nil when no entry scores at least minScore (default 0.4). Ties keep
// the entry scanned first. A hit bumps the entry's last-used timestamp.
func (s *PlanCacheService) FindCachedPlan(ctx context.Context, rawURL, goal string, minScore float64) (*PlanMatch, error) {
	if minScore <= 0 {
		minScore = DefaultPlanMinScore
	}

	targetDomain := NormalizeURLDomain(rawURL)
	goalKeywords := GoalKeywords(goal)

	entries, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}

	var best *domain.CachedPlan
	bestScore := 0.0
	for i := range entries {
		e := &entries[i]
		score := planScore(e, targetDomain, rawURL, goalKeywords)
		if score >= minScore && score > bestScore {
			bestScore = score
			best = e
		}
	}
	if best == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	best.LastUsedAt = now
	if err := s.plans.Update(ctx, best); err != nil {
		s.logger.Warn("failed to touch cached plan", zap.String("plan_id", best.ID.String()), zap.Error(err))
	}

	s.logger.Info("plan cache hit",
		zap.String("plan_id", best.ID.String()),
		zap.String("url_domain", targetDomain),
		zap.Float64("score", bestScore))

	hit := *best
	return &PlanMatch{Entry: &hit, Score: bestScore}, nil
}

func planScore(e *domain.CachedPlan, targetDomain, rawURL string, goalKeywords []string) float64 {
	score := 0.0
	domainEq := targetDomain != "" && e.URLDomain == targetDomain
	if domainEq {
		score += planDomainWeight
		if e.URL == rawURL {
			score += planExactURLWeight
		}
	}
	score += planKeywordWeight * jaccard(goalKeywords, e.GoalKeywords)
	if e.SuccessRate > 0.5 {
		score += planTrackRecordBonus
	}
	return score
}

// SavePlanToCache stores an executed plan. When an entry with the same
// domain and goal-keyword similarity above 0.6 exists, the plan merges into
// it: the stored steps are replaced (results stripped), the execution
// counter advances, and the success rate is folded in as a running average.
// Otherwise a fresh entry is created.
func (s *PlanCacheService) SavePlanToCache(ctx context.Context, plan []domain.PlanStep, rawURL, goal, runID string) (*domain.CachedPlan, error) {
	passed, failed := countStepOutcomes(plan)
	stripped := stripResults(plan)
	targetDomain := NormalizeURLDomain(rawURL)
	keywords := GoalKeywords(goal)

	entries, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		e := &entries[i]
		if e.URLDomain != targetDomain {
			continue
		}
		if jaccard(keywords, e.GoalKeywords) <= PlanMergeSimilarity {
			continue
		}

		e.Plan = stripped
		s.recordOutcome(e, passed, failed)
		if err := s.plans.Update(ctx, e); err != nil {
			return nil, err
		}

		s.logger.Info("merged plan into cached entry",
			zap.String("plan_id", e.ID.String()),
			zap.Int("times_executed", e.TimesExecuted),
			zap.Float64("success_rate", e.SuccessRate))
		merged := *e
		return &merged, nil
	}

	entry := &domain.CachedPlan{
		Plan:          stripped,
		URLDomain:     targetDomain,
		URL:           rawURL,
		GoalKeywords:  keywords,
		Goal:          goal,
		TimesExecuted: 1,
		LastPassed:    passed,
		LastFailed:    failed,
		SourceRunID:   runID,
	}
	if passed+failed > 0 {
		entry.SuccessRate = float64(passed) / float64(passed+failed)
	}
	if err := s.plans.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("cached new plan",
		zap.String("plan_id", entry.ID.String()),
		zap.String("url_domain", targetDomain),
		zap.Strings("goal_keywords", keywords))
	return entry, nil
}

// RecordPlanReuse folds the outcome of reusing a cached plan into its
// running statistics. An unknown id is silently ignored.
func (s *PlanCacheService) RecordPlanReuse(ctx context.Context, cacheID uuid.UUID, passed, failed int) error {
	entry, err := s.plans.GetByID(ctx, cacheID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("plan reuse recorded against unknown id", zap.String("plan_id", cacheID.String()))
			return nil
		}
		return err
	}

	s.recordOutcome(entry, passed, failed)
	return s.plans.Update(ctx, entry)
}

// recordOutcome advances the execution counter and folds the pass ratio
// into the running average. A zero-step execution still counts toward
// TimesExecuted but leaves the success rate unchanged: the counter records
// reuse events, not step counts.
func (s *PlanCacheService) recordOutcome(e *domain.CachedPlan, passed, failed int) {
	e.TimesExecuted++
	e.LastPassed = passed
	e.LastFailed = failed
	if total := passed + failed; total > 0 {
		ratio := float64(passed) / float64(total)
		n := float64(e.TimesExecuted)
		e.SuccessRate = (e.SuccessRate*(n-1) + ratio) / n
	}
	e.LastUsedAt = time.Now().UTC()
}

func countStepOutcomes(plan []domain.PlanStep) (passed, failed int) {
	for _, step := range plan {
		if step.Result == nil {
			continue
		}
		if step.Result.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// stripResults clears per-step execution results so a cache hit yields a
// clean, reusable template.
func stripResults(plan []domain.PlanStep) []domain.PlanStep {
	out := make([]domain.PlanStep, len(plan))
	for i, step := range plan {
		step.Result = nil
		out[i] = step
	}
	return out
}

// NormalizeURLDomain reduces a URL to its bare domain: scheme and a
// leading www. are stripped. When parsing fails the raw value is lowercased
// and every character outside [a-z0-9.] is removed.
func NormalizeURLDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err == nil && u.Host != "" {
		host := strings.ToLower(u.Host)
		return strings.TrimPrefix(host, "www.")
	}

	var b strings.Builder
	for _, r := range strings.ToLower(rawURL) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GoalKeywords normalizes a goal to a sorted, deduplicated set of
// stop-word-filtered tokens longer than two characters.
func GoalKeywords(goal string) []string {
	fields := strings.FieldsFunc(strings.ToLower(goal), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len(f) <= 2 || goalStopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// jaccard is |a ∩ b| / |a ∪ b| over two keyword sets, 0 when either is
// empty.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	inter := 0
	union := len(set)
	for _, s := range b {
		if set[s] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
