// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"

	"github.com/bankbr/baas/pkg/domain/account"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App is the application configuration.
type App struct {
	Env                  string `envconfig:"APP_ENV" default:"development"`
	DatabaseURL          string `envconfig:"DATABASE_URL"`
	OpeningBalancePolicy string `envconfig:"OPENING_BALANCE_POLICY" default:"bank"`
	MetricsAddr          string `envconfig:"METRICS_ADDR"`
}

// Policy returns the opening balance policy, validated.
func (a *App) Policy() (account.OpeningBalancePolicy, error) {
	p := account.OpeningBalancePolicy(a.OpeningBalancePolicy)
	if !p.Valid() {
		return "", fmt.Errorf("unknown opening balance policy %q", a.OpeningBalancePolicy)
	}
	return p, nil
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; a missing file is not an error.
func Load() (*App, error) {
	_ = godotenv.Load()
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Policy(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
