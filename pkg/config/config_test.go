package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validSecret is 32 bytes.
const validSecret = "0123456789abcdef0123456789abcdef"

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.TokenValidity != time.Hour {
		t.Errorf("TokenValidity = %s, want 1h", cfg.Auth.TokenValidity)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q, want memory", cfg.Storage.Type)
	}
	if !cfg.Observability.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := Defaults()

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "auth.secret") {
		t.Fatalf("error = %v, want auth.secret failure", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Secret = "short"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Fatalf("error = %v, want short-secret failure", err)
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Secret = validSecret

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_BadStorageType(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Secret = validSecret
	cfg.Storage.Type = "redis"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "storage.type") {
		t.Fatalf("error = %v, want storage.type failure", err)
	}
}

func TestValidate_PostgresRequiresDSN(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Secret = validSecret
	cfg.Storage.Type = "postgres"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "storage.postgres.dsn") {
		t.Fatalf("error = %v, want postgres DSN failure", err)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 0
	cfg.Auth.TokenValidity = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"server.port", "auth.secret", "token_validity"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
auth:
  secret: "` + validSecret + `"
  token_validity: 30m
  bypass_paths:
    - /api/authenticate
    - /public/*
storage:
  type: memory
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.TokenValidity != 30*time.Minute {
		t.Errorf("TokenValidity = %s, want 30m", cfg.Auth.TokenValidity)
	}
	if len(cfg.Auth.BypassPaths) != 2 || cfg.Auth.BypassPaths[1] != "/public/*" {
		t.Errorf("BypassPaths = %v", cfg.Auth.BypassPaths)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TOKENGATE_SECRET", validSecret)
	t.Setenv("TOKENGATE_PORT", "7070")
	t.Setenv("TOKENGATE_TOKEN_VALIDITY", "120")
	t.Setenv("TOKENGATE_BYPASS_PATHS", "/api/hello, /healthz")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	// Load treats a nonexistent explicit path as a load error.
	if err == nil {
		t.Skip("explicit missing path accepted unexpectedly")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Auth.TokenValidity != 120*time.Second {
		t.Errorf("TokenValidity = %s, want 120s", cfg.Auth.TokenValidity)
	}
	if len(cfg.Auth.BypassPaths) != 2 || cfg.Auth.BypassPaths[0] != "/api/hello" {
		t.Errorf("BypassPaths = %v", cfg.Auth.BypassPaths)
	}
}

func TestLoad_SecretFileReference(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "secret")
	if err := os.WriteFile(secretPath, []byte(validSecret+"\n"), 0o600); err != nil {
		t.Fatalf("writing secret: %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "auth:\n  secret_file: " + secretPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Secret != validSecret {
		t.Errorf("Secret = %q, want file content with whitespace trimmed", cfg.Auth.Secret)
	}
}
