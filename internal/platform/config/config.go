// Package config loads and validates app config from env and an optional .env
// file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Addr is the address the HTTP server listens on (e.g. :8080).
	Addr string `mapstructure:"NID_GATEWAY_ADDR"`
	// DatabaseURL is the Postgres DSN for audit and allowlist storage.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL enables the allowlist cache when set (redis://host:port).
	RedisURL string `mapstructure:"REDIS_URL"`

	// RegistryBaseURL is the base URL of the national identity registry API.
	RegistryBaseURL string `mapstructure:"REGISTRY_BASE_URL"`
	// RegistryUsername and RegistryPassword authenticate the login exchange.
	RegistryUsername string `mapstructure:"REGISTRY_USERNAME"`
	RegistryPassword string `mapstructure:"REGISTRY_PASSWORD"`
	// RegistryTokenTTL is the assumed bearer token lifetime; the registry
	// does not report one, so any 401 still forces a refresh (e.g. "1h").
	RegistryTokenTTL string `mapstructure:"REGISTRY_TOKEN_TTL"`
	// RegistryTimeout bounds each registry HTTP call (e.g. "30s").
	RegistryTimeout string `mapstructure:"REGISTRY_TIMEOUT"`

	// AssetTimeout bounds photo fetches (e.g. "30s").
	AssetTimeout string `mapstructure:"ASSET_TIMEOUT"`

	// AuditBuffer is the audit sink channel capacity.
	AuditBuffer int `mapstructure:"AUDIT_BUFFER"`
	// AuditWorkers is the number of audit persistence goroutines.
	AuditWorkers int `mapstructure:"AUDIT_WORKERS"`

	// KafkaBrokers is a comma-separated broker list; empty disables the
	// audit event stream.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaAuditTopic is the topic sanitized audit records are mirrored to.
	KafkaAuditTopic string `mapstructure:"KAFKA_AUDIT_TOPIC"`

	// AllowlistCacheTTL bounds how long allowlist lookups are cached (e.g. "5m").
	AllowlistCacheTTL string `mapstructure:"ALLOWLIST_CACHE_TTL"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogJSON switches the logger to JSON output.
	LogJSON bool `mapstructure:"LOG_JSON"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Missing .env is ignored (e.g. in CI); env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("NID_GATEWAY_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REGISTRY_BASE_URL", "")
	v.SetDefault("REGISTRY_USERNAME", "")
	v.SetDefault("REGISTRY_PASSWORD", "")
	v.SetDefault("REGISTRY_TOKEN_TTL", "1h")
	v.SetDefault("REGISTRY_TIMEOUT", "30s")
	v.SetDefault("ASSET_TIMEOUT", "30s")
	v.SetDefault("AUDIT_BUFFER", 1024)
	v.SetDefault("AUDIT_WORKERS", 2)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_AUDIT_TOPIC", "nid-verification-audit")
	v.SetDefault("ALLOWLIST_CACHE_TTL", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("config: NID_GATEWAY_ADDR must be set")
	}
	if cfg.RegistryBaseURL == "" {
		return nil, errors.New("config: REGISTRY_BASE_URL must be set")
	}
	if cfg.AuditBuffer <= 0 {
		return nil, errors.New("config: AUDIT_BUFFER must be positive")
	}
	if cfg.AuditWorkers <= 0 {
		return nil, errors.New("config: AUDIT_WORKERS must be positive")
	}

	return &cfg, nil
}

// TokenTTL parses RegistryTokenTTL. Returns 1h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	return parseDuration(c.RegistryTokenTTL, time.Hour)
}

// RegistryCallTimeout parses RegistryTimeout. Returns 30s if unset or invalid.
func (c *Config) RegistryCallTimeout() time.Duration {
	return parseDuration(c.RegistryTimeout, 30*time.Second)
}

// AssetFetchTimeout parses AssetTimeout. Returns 30s if unset or invalid.
func (c *Config) AssetFetchTimeout() time.Duration {
	return parseDuration(c.AssetTimeout, 30*time.Second)
}

// AllowlistTTL parses AllowlistCacheTTL. Returns 5m if unset or invalid.
func (c *Config) AllowlistTTL() time.Duration {
	return parseDuration(c.AllowlistCacheTTL, 5*time.Minute)
}

// KafkaBrokersList splits the comma-separated broker config. An empty result
// means the audit stream is disabled.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
