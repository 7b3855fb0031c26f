package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Prefix is prepended to every environment variable name.
const Prefix = "WAGECALC_"

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format string `env:"FORMAT" envDefault:"json" validate:"oneof=json console"`
	// File receives log output; the terminal belongs to the UI.
	File string `env:"FILE"`
}

type Config struct {
	DB string `env:"DB"`
	// Locale, when set, overrides the stored locale for this process.
	Locale string `env:"LOCALE" validate:"omitempty,bcp47_language_tag"`
	Log    Log    `envPrefix:"LOG_"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return load(env.Options{Prefix: Prefix})
}

// LoadFrom reads vars instead of the process environment. Keys carry the
// WAGECALC_ prefix.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Prefix: Prefix, Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.DB == "" || cfg.Log.File == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		if cfg.DB == "" {
			cfg.DB = filepath.Join(dir, "wagecalc", "wagecalc.db")
		}
		if cfg.Log.File == "" {
			cfg.Log.File = filepath.Join(dir, "wagecalc", "wagecalc.log")
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
