// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// EmbeddingConfig configures the external embedding provider.
type EmbeddingConfig struct {
	// BaseURL points at the provider's API root.
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests; required outside tests.
	APIKey string `koanf:"api_key"`

	// Model selects the embedding model.
	Model string `koanf:"model"`

	// Dimensions is the expected embedding vector length.
	Dimensions int `koanf:"dimensions"`

	// TimeoutMS bounds a single provider call.
	TimeoutMS int `koanf:"timeout_ms"`

	// BreakerEnabled wraps the provider client in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory rebuild job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of embedding workers.
	WorkerCount int `koanf:"worker_count"`

	// CoalesceSize sets the size of the pending-job tracker.
	CoalesceSize int `koanf:"coalesce_size"`

	// MaxLimit caps GET /recommendations?limit.
	MaxLimit int `koanf:"max_limit"`

	// DefaultLimit applies when no limit is requested.
	DefaultLimit int `koanf:"default_limit"`

	// CandidateMultiplier over-fetches candidates before scoring.
	CandidateMultiplier int `koanf:"candidate_multiplier"`

	// RecentInteractionLimit bounds interactions feeding a profile rebuild.
	RecentInteractionLimit int `koanf:"recent_interaction_limit"`

	// InteractionWeights maps interaction types to profile-text weights.
	InteractionWeights map[string]float64 `koanf:"interaction_weights"`

	// Embedding configures the external embedding provider.
	Embedding EmbeddingConfig `koanf:"embedding"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		QueueSize:              10_000,
		WorkerCount:            runtime.NumCPU() * 2,
		CoalesceSize:           10_000,
		MaxLimit:               100,
		DefaultLimit:           10,
		CandidateMultiplier:    3,
		RecentInteractionLimit: 50,
		InteractionWeights: map[string]float64{
			"viewed":     0.5,
			"interested": 1,
			"registered": 2,
			"completed":  3,
		},
		Embedding: EmbeddingConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "text-embedding-3-small",
			Dimensions:     1536,
			TimeoutMS:      30_000,
			BreakerEnabled: true,
		},
	}
}
