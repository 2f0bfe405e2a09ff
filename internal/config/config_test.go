package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("CHUNK_MAX_SIZE", "")
	t.Setenv("CHUNK_MIN_SIZE", "")
	t.Setenv("CHUNK_OVERLAP", "")

	assert.Equal(t, 8080, ServerPort())
	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "data", DataDir())
	assert.Equal(t, "info", LogLevel())
	assert.Equal(t, 100.0, RateLimitRPS())
	assert.Equal(t, 20, RateLimitBurst())
	assert.Equal(t, 1500, ChunkMaxSize())
	assert.Equal(t, 100, ChunkMinSize())
	assert.Equal(t, 0, ChunkOverlap())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_DIR", "/var/lib/beliefd")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "2")
	t.Setenv("CHUNK_MAX_SIZE", "800")
	t.Setenv("CHUNK_MIN_SIZE", "40")
	t.Setenv("CHUNK_OVERLAP", "25")

	assert.Equal(t, 9090, ServerPort())
	assert.Equal(t, ":9090", ServerAddr())
	assert.Equal(t, "/var/lib/beliefd", DataDir())
	assert.Equal(t, "debug", LogLevel())
	assert.Equal(t, 5.0, RateLimitRPS())
	assert.Equal(t, 2, RateLimitBurst())
	assert.Equal(t, 800, ChunkMaxSize())
	assert.Equal(t, 40, ChunkMinSize())
	assert.Equal(t, 25, ChunkOverlap())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("RATE_LIMIT_RPS", "-3")
	t.Setenv("RATE_LIMIT_BURST", "0")
	t.Setenv("CHUNK_OVERLAP", "-1")

	assert.Equal(t, 8080, ServerPort())
	assert.Equal(t, 100.0, RateLimitRPS())
	assert.Equal(t, 20, RateLimitBurst())
	assert.Equal(t, 0, ChunkOverlap())
}
