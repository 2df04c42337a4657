package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer is returned when Load is called with a nil target.
	ErrNilPointer = errors.New("nil pointer provided to config loader")

	// ErrParsing wraps env parsing failures (missing required variables,
	// malformed values).
	ErrParsing = errors.New("failed to parse environment variables into config")
)

var loadDotEnv sync.Once

// Load parses environment variables into cfg based on its `env` field tags.
// The first call also loads a .env file if one exists; its absence is fine.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsing, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Intended for startup
// configuration the process cannot run without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
