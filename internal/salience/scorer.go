// Package salience assigns importance scores to units of raw content via
// an ordered table of pattern rules. Scores are deliberately simple and
// auditable; they complement model-driven reasoning, never replace it.
package salience

import (
	"regexp"
	"strings"

	"github.com/probelab/beliefd/internal/chunk"
)

// Rule is one scoring rule. All rules are evaluated for every input; the
// matched rule with the highest priority wins, regardless of table order
// or score.
type Rule struct {
	Name     string
	Patterns []*regexp.Regexp
	Score    float64
	Priority int
}

// Result is the outcome of scoring one unit of content.
type Result struct {
	Score           float64  `json:"score"`
	Rule            string   `json:"rule"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
}

const (
	defaultScore = 0.3
	emptyScore   = 0.1
)

func rx(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// rules is ordered by priority for readability only; selection is by the
// Priority field.
var rules = []Rule{
	{
		Name:     "critical_error",
		Patterns: rx(`\bFATAL\b`, `\bCRITICAL\b`, `\bPANIC\b`, `out of memory`, `segmentation fault`, `\bsegfault\b`, `stack overflow`, `\bOOM\b`),
		Score:    1.0,
		Priority: 100,
	},
	{
		Name:     "error",
		Patterns: rx(`\bERROR\b`, `\bexception\b`, `\btraceback\b`, `stack trace`, `failed to\b`, `\brefused\b`, `\bunhandled\b`),
		Score:    0.9,
		Priority: 90,
	},
	{
		Name:     "test_failure",
		Patterns: rx(`\bFAIL(?:ED|URE)?\b`, `assertion`, `expected .* but got`, `test .{0,20}fail`, `did not match`),
		Score:    0.85,
		Priority: 80,
	},
	{
		Name:     "user_visible",
		Patterns: rx(`\balert\b`, `\bmodal\b`, `\btoast\b`, `\bdialog\b`, `\bbanner\b`, `error message`, `not found page`, `\b404\b`, `\b500\b`),
		Score:    0.7,
		Priority: 70,
	},
	{
		Name:     "warning",
		Patterns: rx(`\bWARN(?:ING)?\b`, `\bdeprecated\b`, `\bretry(?:ing)?\b`, `\bslow\b`, `\btimeout approaching\b`),
		Score:    0.6,
		Priority: 60,
	},
	{
		Name:     "state_change",
		Patterns: rx(`\bnavigat(?:ed|ing)\b`, `\bclicked\b`, `\bsubmitted\b`, `\bredirect(?:ed)?\b`, `\bcreated\b`, `\bupdated\b`, `\bdeleted\b`, `\blogged (?:in|out)\b`, `\bstate chang`),
		Score:    0.5,
		Priority: 50,
	},
	{
		Name:     "success",
		Patterns: rx(`\bsuccess(?:ful|fully)?\b`, `\bpassed\b`, `\bcompleted\b`, `\b200 OK\b`, `\bdone\b`, `✓`),
		Score:    0.4,
		Priority: 40,
	},
	{
		Name:     "info",
		Patterns: rx(`\bINFO\b`, `\bstarting\b`, `\bstarted\b`, `\blistening\b`, `\bloaded\b`, `\binitialized\b`),
		Score:    0.3,
		Priority: 30,
	},
	{
		Name:     "debug",
		Patterns: rx(`\bDEBUG\b`, `\bTRACE\b`, `\bverbose\b`),
		Score:    0.15,
		Priority: 20,
	},
}

// Rules returns the scoring rule table in evaluation order.
func Rules() []Rule {
	return rules
}

// Score evaluates every rule against the content and returns the result of
// the highest-priority match. No match yields the default score; empty
// content yields the floor score. Scoring never fails.
func Score(content string) Result {
	if strings.TrimSpace(content) == "" {
		return Result{Score: emptyScore, Rule: "empty"}
	}

	best := Result{Score: defaultScore, Rule: "default"}
	bestPriority := -1
	for _, r := range rules {
		var matched []string
		for _, p := range r.Patterns {
			if p.MatchString(content) {
				matched = append(matched, p.String())
			}
		}
		if len(matched) > 0 && r.Priority > bestPriority {
			bestPriority = r.Priority
			best = Result{Score: r.Score, Rule: r.Name, MatchedPatterns: matched}
		}
	}
	return best
}

// ScoreChunk scores a chunk's content and adjusts the result using the
// chunk's log level. Error levels floor the score at 0.9, warnings at 0.6;
// debug levels cap it at 0.2. The adjustment never lowers a stronger error
// signal and never lifts a debug line past its ceiling.
func ScoreChunk(c chunk.Chunk) Result {
	res := Score(c.Content)

	switch strings.ToUpper(c.Metadata.LogLevel) {
	case "ERROR", "FATAL", "CRITICAL":
		if res.Score < 0.9 {
			res.Score = 0.9
		}
	case "WARN", "WARNING":
		if res.Score < 0.6 {
			res.Score = 0.6
		}
	case "DEBUG", "TRACE":
		if res.Score > 0.2 {
			res.Score = 0.2
		}
	}
	return res
}
