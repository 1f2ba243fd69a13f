package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	StorageBackend string `toml:"storage_backend"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	SqlitePath     string `toml:"sqlite_path"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// auth
	AuthRateLimitAllowedPerMin int `toml:"auth_rate_limit_allowed_per_min"`
	SessionCheckIntervalSec    int `toml:"session_check_interval_sec"`
	SessionCacheTTLSec         int `toml:"session_cache_ttl_sec"`
}

func (c *Config) SessionCheckInterval() time.Duration {
	return time.Duration(c.SessionCheckIntervalSec) * time.Second
}

func (c *Config) SessionCacheTTL() time.Duration {
	return time.Duration(c.SessionCacheTTLSec) * time.Second
}

func (c *Config) applyDefaults(env string) {
	if c.Environment == "" {
		c.Environment = env
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "memory"
	}
	if c.AuthRateLimitAllowedPerMin <= 0 {
		c.AuthRateLimitAllowedPerMin = 10
	}
	if c.SessionCheckIntervalSec <= 0 {
		c.SessionCheckIntervalSec = 300
	}
	if c.SessionCacheTTLSec <= 0 {
		c.SessionCacheTTLSec = 3600
	}
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.applyDefaults(strings.ToLower(env))
	return cfg, nil
}

// Load reads the toml config file and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}
