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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if HOOFPRINT_CONFIG is set
//  3. env (prefix HOOFPRINT_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HOOFPRINT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HOOFPRINT_ADDR, HOOFPRINT_DEBOUNCE_MS, ...
	// Map env keys like HOOFPRINT_DEBOUNCE_MS -> debounce_ms (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("HOOFPRINT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "hoofprint_")
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

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.TrailBatchSize < 1 || cfg.RegistrationBatchSize < 1:
		return nil, fmt.Errorf("%w: batch sizes must be positive", ErrInvalidConfig)
	case cfg.DebounceMS < 0:
		return nil, fmt.Errorf("%w: debounce_ms must not be negative", ErrInvalidConfig)
	case cfg.IndexPageSize < 1:
		return nil, fmt.Errorf("%w: index_page_size must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
