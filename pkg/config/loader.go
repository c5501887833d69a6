package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load populates cfg from environment variables according to its `env`
// struct tags. The default .env file is loaded once per process before the
// first parse; its absence is ignored so production deployments can rely on
// real environment variables only.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrFailedToLoadConfig, err)
	}

	return nil
}

// MustLoad returns a parsed config of type T, panicking on failure.
// Intended for process startup where a malformed environment should
// prevent the service from booting at all.
func MustLoad[T any]() T {
	var cfg T
	if err := Load(&cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
