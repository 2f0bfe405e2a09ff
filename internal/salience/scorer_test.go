package salience

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probelab/beliefd/internal/chunk"
)

func TestScoreEmptyContent(t *testing.T) {
	res := Score("")
	assert.Equal(t, "empty", res.Rule)
	assert.Equal(t, 0.1, res.Score)

	res = Score("   \n\t ")
	assert.Equal(t, "empty", res.Rule)
	assert.Equal(t, 0.1, res.Score)
}

func TestScoreCriticalError(t *testing.T) {
	res := Score("FATAL: out of memory while allocating buffer")
	assert.Equal(t, "critical_error", res.Rule)
	assert.Equal(t, 1.0, res.Score)
	assert.Len(t, res.MatchedPatterns, 2)
}

func TestScoreError(t *testing.T) {
	res := Score("ERROR: connection refused by upstream")
	assert.Equal(t, "error", res.Rule)
	assert.Equal(t, 0.9, res.Score)
}

func TestScoreHighestPriorityWins(t *testing.T) {
	// Both warning and error rules match; error has the higher priority.
	res := Score("WARN: retrying after ERROR in pipeline")
	assert.Equal(t, "error", res.Rule)
	assert.Equal(t, 0.9, res.Score)

	// success and test_failure both match; test_failure outranks it.
	res = Score("test passed but assertion failure was recorded")
	assert.Equal(t, "test_failure", res.Rule)
	assert.Equal(t, 0.85, res.Score)
}

func TestScoreCaseInsensitive(t *testing.T) {
	res := Score("fatal signal received")
	assert.Equal(t, "critical_error", res.Rule)
}

func TestScoreNoMatchUsesDefault(t *testing.T) {
	res := Score("the quick brown fox jumps over hills")
	assert.Equal(t, "default", res.Rule)
	assert.Equal(t, 0.3, res.Score)
	assert.Empty(t, res.MatchedPatterns)
}

func TestScoreAlwaysInUnitRange(t *testing.T) {
	inputs := []string{
		"",
		"FATAL CRITICAL PANIC out of memory",
		"user clicked the submit button and a modal appeared",
		"DEBUG cache miss for key",
		"plain sentence with nothing notable",
		"test suite FAILED: expected 200 but got 500",
	}
	for _, in := range inputs {
		res := Score(in)
		assert.GreaterOrEqual(t, res.Score, 0.0, "input %q", in)
		assert.LessOrEqual(t, res.Score, 1.0, "input %q", in)
	}
}

func TestScoreChunkLevelAdjustments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		level   string
		want    float64
	}{
		{"error level floors bland content", "routine heartbeat tick", "ERROR", 0.9},
		{"warn level floors bland content", "routine heartbeat tick", "WARN", 0.6},
		{"debug level caps error content", "ERROR: connection refused", "DEBUG", 0.2},
		{"error level keeps stronger signal", "PANIC: stack overflow", "ERROR", 1.0},
		{"no level leaves score alone", "routine heartbeat tick", "", 0.3},
		{"lowercase level recognized", "routine heartbeat tick", "warn", 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreChunk(chunk.Chunk{
				Content:  tt.content,
				Metadata: chunk.Metadata{LogLevel: tt.level},
			})
			assert.Equal(t, tt.want, res.Score)
		})
	}
}
