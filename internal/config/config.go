// Package config loads itm-bind settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/wippyai/itm-bind/errors"
)

// Engine backends.
const (
	EngineNative = "native"
	EngineWasm   = "wasm"
)

// Config controls engine selection and the ambient stack of the CLI.
type Config struct {
	Engine           string  `env:"ITM_ENGINE"             envDefault:"native"`
	WasmPath         string  `env:"ITM_WASM_PATH"`
	MemoryLimitPages uint32  `env:"ITM_MEMORY_LIMIT_PAGES"`
	LogLevel         string  `env:"ITM_LOG_LEVEL"          envDefault:"warn"`
	LogFormat        string  `env:"ITM_LOG_FORMAT"         envDefault:"console"`
	TraceExporter    string  `env:"ITM_TRACE_EXPORTER"     envDefault:"none"`
	TraceSampleRatio float64 `env:"ITM_TRACE_SAMPLE_RATIO" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Option overrides a parsed value, typically from a command-line flag.
type Option func(*Config)

// WithEngine overrides ITM_ENGINE when engine is not empty.
func WithEngine(engine string) Option {
	return func(c *Config) {
		if engine != "" {
			c.Engine = engine
		}
	}
}

// WithWasmPath overrides ITM_WASM_PATH when path is not empty.
func WithWasmPath(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.WasmPath = path
		}
	}
}

// Load parses the environment, applies opts and validates the result.
func Load(opts ...Option) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "environment")
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and engine prerequisites.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineNative:
	case EngineWasm:
		if c.WasmPath == "" {
			return errors.InvalidInput(errors.PhaseConfig, "ITM_WASM_PATH is required for the wasm engine")
		}
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown engine %q", c.Engine))
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown log format %q", c.LogFormat))
	}

	switch c.TraceExporter {
	case "none", "stdout":
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown trace exporter %q", c.TraceExporter))
	}

	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return errors.InvalidInput(errors.PhaseConfig, "ITM_TRACE_SAMPLE_RATIO must be within [0, 1]")
	}
	return nil
}
