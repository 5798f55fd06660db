// Package config parses environment variables into typed structs.
//
// Load is meant to be called once during startup; the resulting value is
// passed explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by config structs that check cross-field rules
// after parsing.
type Validator interface {
	Validate() error
}

// Option configures a single Load call.
type Option func(*loader)

type loader struct {
	files       []string
	prefix      string
	environment map[string]string
}

// WithDotenv loads the given files before parsing. Missing files are an error,
// unlike the implicit .env lookup.
func WithDotenv(files ...string) Option {
	return func(l *loader) {
		l.files = append(l.files, files...)
	}
}

// WithPrefix prepends prefix to every env key of the struct.
func WithPrefix(prefix string) Option {
	return func(l *loader) {
		l.prefix = prefix
	}
}

// WithEnvironment parses from the given map instead of the process environment.
// Mostly useful in tests.
func WithEnvironment(vars map[string]string) Option {
	return func(l *loader) {
		l.environment = vars
	}
}

var defaultEnvLoaded sync.Once

// Load parses environment variables into v based on its `env` struct tags.
//
// The default .env file is read once per process if present. When *T
// implements Validator, Validate is called on the parsed value.
//
// Example:
//
//	type DatabaseConfig struct {
//		URL      string `env:"MONGODB_URL,required"`
//		Database string `env:"MONGODB_DATABASE" envDefault:"ignews"`
//	}
//
//	var cfg DatabaseConfig
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	if len(l.files) > 0 {
		if err := godotenv.Load(l.files...); err != nil {
			return errors.Join(ErrDotenv, err)
		}
	} else if l.environment == nil {
		defaultEnvLoaded.Do(func() {
			// .env is optional
			if _, err := os.Stat(".env"); err == nil {
				_ = godotenv.Load()
			}
		})
	}

	envOpts := env.Options{Prefix: l.prefix}
	if l.environment != nil {
		envOpts.Environment = l.environment
	}

	if err := env.ParseWithOptions(v, envOpts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
	}

	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
