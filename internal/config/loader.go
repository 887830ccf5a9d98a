package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if VOLUNTREE_CONFIG is set
//  3. env (prefix VOLUNTREE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("VOLUNTREE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: VOLUNTREE_ADDR, VOLUNTREE_QUEUE_SIZE, ...
	// Flat keys keep their underscores to match the koanf tags; the
	// embedding block nests, so VOLUNTREE_EMBEDDING_API_KEY maps to
	// embedding.api_key.
	envProvider := env.Provider("VOLUNTREE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "voluntree_")
		if rest, ok := strings.CutPrefix(s, "embedding_"); ok {
			return "embedding." + rest
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxLimit < 1:
		return fmt.Errorf("%w: max_limit must be positive", ErrInvalidConfig)
	case c.DefaultLimit < 1 || c.DefaultLimit > c.MaxLimit:
		return fmt.Errorf("%w: default_limit must be within [1, max_limit]", ErrInvalidConfig)
	case c.Embedding.Dimensions < 1:
		return fmt.Errorf("%w: embedding dimensions must be positive", ErrInvalidConfig)
	case c.Embedding.TimeoutMS < 1:
		return fmt.Errorf("%w: embedding timeout_ms must be positive", ErrInvalidConfig)
	}
	if _, err := parseWeights(c.InteractionWeights); err != nil {
		return err
	}
	return nil
}

// parseWeights rejects weight entries for unknown interaction types.
func parseWeights(raw map[string]float64) (map[string]float64, error) {
	known := map[string]struct{}{
		"viewed": {}, "interested": {}, "registered": {}, "completed": {},
	}
	for name := range raw {
		if _, ok := known[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("%w: unknown interaction type %q in interaction_weights",
				ErrInvalidConfig, name)
		}
	}
	return raw, nil
}
