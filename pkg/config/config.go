// Package config provides unified configuration for the tokengate service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (TOKENGATE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// The signing secret is validated here, once, at startup: a missing or
// short secret aborts initialization instead of surfacing per request.
package config

import "time"

// Config holds all configuration for the tokengate service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
}

// AuthConfig holds token issuance and gate settings.
type AuthConfig struct {
	// Secret is the HMAC signing secret shared by issue and decode.
	// Required, at least 32 bytes. Never logged.
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret

	// TokenValidity is the access token lifetime (default: 1h).
	TokenValidity time.Duration `yaml:"token_validity"`

	// BypassPaths lists path patterns exempt from authentication, evaluated
	// first-match-wins. A trailing "/*" matches by prefix.
	BypassPaths []string `yaml:"bypass_paths"`

	// LoginAttemptsPerMinute limits credential attempts per username on the
	// authenticate endpoint. 0 disables limiting.
	LoginAttemptsPerMinute int `yaml:"login_attempts_per_minute"`

	// AllowAnonymous grants an anonymous ROLE_USER identity when no
	// credentials are presented. Development only.
	AllowAnonymous bool `yaml:"allow_anonymous"`
}

// StorageConfig holds user store settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log level and debug category settings. Both can be
// overridden by the TOKENGATE_LOG_LEVEL and TOKENGATE_DEBUG environment
// variables.
type LoggingConfig struct {
	Level string `yaml:"level"` // ERROR, WARN, INFO, DEBUG, TRACE; default: "INFO"
	Debug string `yaml:"debug"` // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenValidity: 1 * time.Hour,
			BypassPaths: []string{
				"/api/authenticate",
				"/api/signup",
				"/api/hello",
				"/healthz",
				"/metrics",
				"/favicon.ico",
			},
			LoginAttemptsPerMinute: 10,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
