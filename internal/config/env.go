package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

const DefaultAppURL = "http://localhost:3000"

// Env holds settings and secrets provided through the process environment.
type Env struct {
	AuthAPIURL       string `env:"FITTRACK_AUTH_API_URL, required"`
	AuthAnonKey      string `env:"FITTRACK_AUTH_ANON_KEY, required"`
	AppURL           string `env:"FITTRACK_APP_URL, default=http://localhost:3000"`
	AdminUser        string `env:"FITTRACK_ADMIN_USERNAME"`
	AdminPassHash    string `env:"FITTRACK_ADMIN_PASSWORD_HASH"`
	RedisPassword    string `env:"FITTRACK_REDIS_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED, default=false"`
}

func (e *Env) AdminEnabled() bool {
	return e.AdminUser != "" && e.AdminPassHash != ""
}

// LoadEnv reads Env from the process environment.
func LoadEnv(ctx context.Context) (*Env, error) {
	return LoadEnvWith(ctx, envconfig.OsLookuper())
}

// LoadEnvWith reads Env through the given lookuper. Missing required
// variables fail here, before anything talks to the network.
func LoadEnvWith(ctx context.Context, lookuper envconfig.Lookuper) (*Env, error) {
	var env Env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	env.AuthAPIURL = strings.TrimRight(strings.TrimSpace(env.AuthAPIURL), "/")
	env.AuthAnonKey = strings.TrimSpace(env.AuthAnonKey)
	if env.AuthAPIURL == "" {
		return nil, fmt.Errorf("environment: FITTRACK_AUTH_API_URL is empty")
	}
	if env.AuthAnonKey == "" {
		return nil, fmt.Errorf("environment: FITTRACK_AUTH_ANON_KEY is empty")
	}

	return &env, nil
}
