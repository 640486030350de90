// Command server runs the tokengate authentication service.
//
// Configuration is layered: built-in defaults, a YAML config file
// (-config flag, TOKENGATE_CONFIG, ./config.yaml, /etc/tokengate/config.yaml),
// then TOKENGATE_* environment overrides:
//
//	TOKENGATE_SECRET         - HMAC signing secret (required, >= 32 bytes)
//	TOKENGATE_TOKEN_VALIDITY - Access token validity in seconds
//	TOKENGATE_PORT           - Listen port (default: 8080)
//	TOKENGATE_STORAGE        - User store type: "memory" or "postgres"
//	TOKENGATE_POSTGRES_DSN   - PostgreSQL connection string
//	TOKENGATE_BYPASS_PATHS   - Comma-separated path patterns exempt from auth
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokengate-dev/tokengate/pkg/auth"
	"github.com/tokengate-dev/tokengate/pkg/auth/credentials"
	"github.com/tokengate-dev/tokengate/pkg/auth/noop"
	"github.com/tokengate-dev/tokengate/pkg/auth/token"
	"github.com/tokengate-dev/tokengate/pkg/config"
	"github.com/tokengate-dev/tokengate/pkg/debug"
	"github.com/tokengate-dev/tokengate/pkg/observability"
	transporthttp "github.com/tokengate-dev/tokengate/pkg/transport/http"
	"github.com/tokengate-dev/tokengate/pkg/userstore"
	"github.com/tokengate-dev/tokengate/pkg/userstore/memory"
	"github.com/tokengate-dev/tokengate/pkg/userstore/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level)
	if cats := debug.Categories(); len(cats) > 0 {
		slog.Info("debug categories enabled", "categories", cats)
	}

	ctx := context.Background()

	// Create user store.
	var users userstore.Store
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("creating postgres store: %w", err)
		}
		defer pg.Close()
		users = pg
		slog.Info("user store ready", "type", "postgres")
	default:
		users = memory.New()
		slog.Info("user store ready", "type", "memory")
	}

	// Create token provider. A weak secret fails here, at startup.
	provider, err := token.NewProvider(cfg.Auth.Secret, cfg.Auth.TokenValidity)
	if err != nil {
		return fmt.Errorf("creating token provider: %w", err)
	}

	// Build the per-request auth chain.
	chain := &auth.Chain{
		Authenticators:  []auth.Authenticator{token.NewAuthenticator(provider)},
		DefaultDecision: auth.No,
	}
	if cfg.Auth.AllowAnonymous {
		slog.Warn("anonymous access enabled, do not use in production")
		chain.Authenticators = append(chain.Authenticators, &noop.Authenticator{})
	}

	// Login path collaborators.
	creds := credentials.New(users)
	var limiter auth.AttemptLimiter
	if cfg.Auth.LoginAttemptsPerMinute > 0 {
		limiter = auth.NewInProcessLimiter(cfg.Auth.LoginAttemptsPerMinute)
	}

	adapter := transporthttp.NewAdapter(users, creds, provider, limiter, transporthttp.AdapterConfig{})

	// Build the mux with health and metrics endpoints.
	mux := http.NewServeMux()
	mux.Handle("/", adapter.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	// Middleware stack: metrics outermost so rejected requests count too,
	// then the authorization gate, then the routes.
	handler := observability.MetricsMiddleware(
		auth.Middleware(chain, cfg.Auth.BypassPaths)(mux),
	)

	srv := transporthttp.NewServer(handler,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)

	return srv.ListenAndServe()
}
