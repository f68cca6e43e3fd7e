// Package config loads the settings of a simulation from environment
// variables, optionally read from a .env file first.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes all the environment variables read by Load.
const EnvPrefix = "CACHESIM_"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed.
	ErrParsingConfig = errors.New("failed to parse config")

	// ErrInvalidConfig is returned when a parsed value is out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds the settings of a simulation run.
type Config struct {
	Capacity    int    `env:"CAPACITY" envDefault:"5"`
	Seed        int64  `env:"SEED" envDefault:"0"`
	MaxOps      int    `env:"MAX_OPS" envDefault:"20"`
	PromptAfter int    `env:"PROMPT_AFTER" envDefault:"5"`
	Interactive bool   `env:"INTERACTIVE" envDefault:"true"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
	RecordPath  string `env:"RECORD"`
	Monitor     bool   `env:"MONITOR" envDefault:"false"`
	MonitorPort int    `env:"MONITOR_PORT" envDefault:"0"`
	OpenBrowser bool   `env:"OPEN_BROWSER" envDefault:"false"`
}

// Load reads the given .env files, or ./.env if none is given, and parses the
// process environment into a Config. A missing default .env file is not an
// error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	return parse(env.Options{
		Prefix:      EnvPrefix,
		Environment: environment,
	})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the values can drive a simulation.
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1, got %d",
			ErrInvalidConfig, c.Capacity)
	}

	if c.MaxOps < 0 {
		return fmt.Errorf("%w: max ops must not be negative, got %d",
			ErrInvalidConfig, c.MaxOps)
	}

	if c.PromptAfter < 0 {
		return fmt.Errorf("%w: prompt after must not be negative, got %d",
			ErrInvalidConfig, c.PromptAfter)
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return fmt.Errorf("%w: monitor port %d out of range",
			ErrInvalidConfig, c.MonitorPort)
	}

	return nil
}
