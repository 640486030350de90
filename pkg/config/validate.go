package config

import (
	"errors"
	"fmt"

	"github.com/tokengate-dev/tokengate/pkg/auth/token"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure. The secret
// length check lives here so a weak key can never reach the token provider.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// auth.secret is required; a short key aborts startup, never a fallback.
	switch {
	case c.Auth.Secret == "":
		errs = append(errs, fmt.Errorf("auth.secret or auth.secret_file is required"))
	case len(c.Auth.Secret) < token.MinSecretLen:
		errs = append(errs, fmt.Errorf("auth.secret must be at least %d bytes, got %d",
			token.MinSecretLen, len(c.Auth.Secret)))
	}

	if c.Auth.TokenValidity <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_validity must be positive, got %s", c.Auth.TokenValidity))
	}

	if c.Auth.LoginAttemptsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("auth.login_attempts_per_minute must be >= 0, got %d",
			c.Auth.LoginAttemptsPerMinute))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	return errors.Join(errs...)
}
