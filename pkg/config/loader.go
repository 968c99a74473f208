package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option tunes Load.
type Option func(*options)

type options struct {
	envFiles    []string
	prefix      string
	environment map[string]string
}

// WithEnvFiles loads the given dotenv files before parsing. Missing files are
// skipped. Variables already present in the process environment win.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) { o.envFiles = paths }
}

// WithPrefix requires every variable to carry prefix, e.g. "STUDIODESK_".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvironment parses from vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *options) { o.environment = vars }
}

// Load parses environment variables into a new T using `env` struct tags.
// By default it reads a ".env" file in the working directory if one exists.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any](opts ...Option) (T, error) {
	o := options{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg T
	if o.environment == nil {
		for _, path := range o.envFiles {
			if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return cfg, errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", path, err))
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      o.prefix,
		Environment: o.environment,
	}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error. Use it in main.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
