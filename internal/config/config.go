package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by BELIEFD_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("BELIEFD_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DataDir returns the directory holding the file-backed collections.
// Defaults to "data" if not set.
func DataDir() string {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		return "data"
	}
	return dir
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// ChunkMaxSize returns the default maximum chunk size for perception.
// Defaults to 1500 if not set.
func ChunkMaxSize() int {
	n, err := strconv.Atoi(os.Getenv("CHUNK_MAX_SIZE"))
	if err != nil || n <= 0 {
		return 1500
	}
	return n
}

// ChunkMinSize returns the default minimum chunk size for perception.
// Defaults to 100 if not set.
func ChunkMinSize() int {
	n, err := strconv.Atoi(os.Getenv("CHUNK_MIN_SIZE"))
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

// ChunkOverlap returns the default chunk overlap for perception.
// Defaults to 0 if not set.
func ChunkOverlap() int {
	n, err := strconv.Atoi(os.Getenv("CHUNK_OVERLAP"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
