package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/probelab/beliefd/internal/domain"
)

// Candidate selection defaults.
const (
	DefaultCandidateLimit         = 3
	DefaultCandidateMinConfidence = 0.1
	NoveltyThreshold              = 0.2
)

// CandidateOptions controls candidate selection. Zero values take the
// defaults above.
type CandidateOptions struct {
	Limit         int
	MinConfidence float64
	ActiveOnly    bool
}

func (o CandidateOptions) withDefaults() CandidateOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultCandidateLimit
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultCandidateMinConfidence
	}
	return o
}

// ScoredModel pairs a mental model with its relevance to a piece of
// evidence.
type ScoredModel struct {
	domain.MentalModel
	Relevance float64 `json:"relevance"`
}

// SelectCandidates scores every model against the observation and returns
// up to Limit models ordered by relevance, highest first. Models with zero
// relevance are never candidates. The function is stateless: it only reads
// the data the caller passes in.
func SelectCandidates(obs domain.Observation, models []domain.MentalModel, opts CandidateOptions) []ScoredModel {
	opts = opts.withDefaults()

	var scored []ScoredModel
	for i := range models {
		m := &models[i]
		if opts.ActiveOnly && m.Status != domain.StatusActive {
			continue
		}
		if m.Confidence < opts.MinConfidence {
			continue
		}
		score := Relevance(obs, m)
		if score <= 0 {
			continue
		}
		scored = append(scored, ScoredModel{MentalModel: models[i], Relevance: score})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Relevance > scored[b].Relevance
	})
	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored
}

// IsNovel reports whether the observation matches no existing model well
// enough to be treated as evidence about it: true when there are no
// candidates or the best relevance is below the novelty threshold.
func IsNovel(obs domain.Observation, models []domain.MentalModel) bool {
	candidates := SelectCandidates(obs, models, CandidateOptions{Limit: 1})
	return len(candidates) == 0 || candidates[0].Relevance < NoveltyThreshold
}

// Relevance computes the keyword-overlap relevance of a model to an
// observation, clamped to [0,1]. Verbatim keyword hits count 1, partial
// containment hits count 0.5 each, normalized by the larger keyword set;
// title words found in the evidence text add 0.15 apiece and a domain
// keyword hit adds a flat 0.1.
func Relevance(obs domain.Observation, m *domain.MentalModel) float64 {
	evidenceSet := evidenceKeywords(obs)
	modelSet := modelKeywords(m)

	var overlap float64
	for ek := range evidenceSet {
		if modelSet[ek] {
			overlap++
		}
		for mk := range modelSet {
			if mk == ek {
				continue
			}
			if strings.Contains(ek, mk) || strings.Contains(mk, ek) {
				overlap += 0.5
			}
		}
	}

	denom := len(evidenceSet)
	if len(modelSet) > denom {
		denom = len(modelSet)
	}
	if denom < 1 {
		denom = 1
	}
	score := overlap / float64(denom)

	evidenceText := evidenceFullText(obs)
	for _, w := range keywordFields(m.Title, 3) {
		if strings.Contains(evidenceText, w) {
			score += 0.15
		}
	}

	if kws, ok := domain.DomainKeywords[m.Domain]; ok {
		for _, kw := range kws {
			if strings.Contains(evidenceText, kw) {
				score += 0.1
				break
			}
		}
	}

	return clampUnit(score)
}

// evidenceKeywords builds the observation keyword set: entities, key-point
// words longer than 3 characters, and summary words longer than 4.
func evidenceKeywords(obs domain.Observation) map[string]bool {
	set := make(map[string]bool)
	for _, e := range obs.Entities {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = true
		}
	}
	for _, kp := range obs.KeyPoints {
		for _, w := range keywordFields(kp, 3) {
			set[w] = true
		}
	}
	for _, w := range keywordFields(obs.Summary, 4) {
		set[w] = true
	}
	return set
}

// modelKeywords builds the model keyword set: tags, title words longer than
// 3 characters, and summary words longer than 4.
func modelKeywords(m *domain.MentalModel) map[string]bool {
	set := make(map[string]bool)
	for _, t := range m.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			set[t] = true
		}
	}
	for _, w := range keywordFields(m.Title, 3) {
		set[w] = true
	}
	for _, w := range keywordFields(m.Summary, 4) {
		set[w] = true
	}
	return set
}

func evidenceFullText(obs domain.Observation) string {
	parts := make([]string, 0, 2+len(obs.KeyPoints)+len(obs.Entities))
	parts = append(parts, obs.Summary)
	parts = append(parts, obs.KeyPoints...)
	parts = append(parts, obs.Entities...)
	return strings.ToLower(strings.Join(parts, " "))
}

// keywordFields lowercases text, splits it on non-alphanumeric runes, and
// keeps words strictly longer than minLen.
func keywordFields(text string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > minLen {
			out = append(out, f)
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
