package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	loadDotenv sync.Once
	cache      sync.Map // reflect.Type -> any (T)
	loadMu     sync.Mutex
)

// Load populates dst from environment variables. The first call loads .env
// files from the working directory; missing files are ignored. Each type is
// parsed once and later calls copy the cached value.
func Load[T any](dst *T) error {
	if dst == nil {
		return fmt.Errorf("config: destination cannot be nil")
	}

	t := reflect.TypeFor[T]()
	if cached, ok := cache.Load(t); ok {
		*dst = cached.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if cached, ok := cache.Load(t); ok {
		*dst = cached.(T)
		return nil
	}

	loadDotenv.Do(func() {
		_ = godotenv.Load()
	})

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", t, err)
	}

	cache.Store(t, cfg)
	*dst = cfg
	return nil
}

// MustLoad is like Load but panics on failure. Use it during startup.
func MustLoad[T any](dst *T) {
	if err := Load(dst); err != nil {
		panic(err)
	}
}

// Reset drops every cached value so the next Load re-reads the environment.
func Reset() {
	loadMu.Lock()
	defer loadMu.Unlock()
	cache.Clear()
}
