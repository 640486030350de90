package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tokengate-dev/tokengate/pkg/api"
	"github.com/tokengate-dev/tokengate/pkg/auth"
	"github.com/tokengate-dev/tokengate/pkg/auth/credentials"
	"github.com/tokengate-dev/tokengate/pkg/auth/token"
	"github.com/tokengate-dev/tokengate/pkg/observability"
	"github.com/tokengate-dev/tokengate/pkg/userstore"
)

// Adapter serves the tokengate API over HTTP. It routes requests to the
// appropriate handler and serializes responses. Authentication of bearer
// tokens happens in middleware before the mux; the adapter only composes
// login, signup, and user lookup.
type Adapter struct {
	users       userstore.Store
	credentials *credentials.Authenticator
	tokens      *token.Provider
	limiter     auth.AttemptLimiter
	mux         *http.ServeMux
	maxBodySize int64
}

// AdapterConfig holds configuration for the HTTP adapter.
type AdapterConfig struct {
	MaxBodySize int64 // default: 1 MB
}

// NewAdapter creates an HTTP adapter. The limiter is optional (pass nil to
// disable login attempt limiting).
func NewAdapter(users userstore.Store, creds *credentials.Authenticator, tokens *token.Provider, limiter auth.AttemptLimiter, cfg AdapterConfig) *Adapter {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 1 << 20
	}

	a := &Adapter{
		users:       users,
		credentials: creds,
		tokens:      tokens,
		limiter:     limiter,
		mux:         http.NewServeMux(),
		maxBodySize: cfg.MaxBodySize,
	}

	a.mux.HandleFunc("POST /api/authenticate", a.handleAuthenticate)
	a.mux.HandleFunc("POST /api/signup", a.handleSignup)
	a.mux.HandleFunc("GET /api/hello", a.handleHello)
	a.mux.HandleFunc("GET /api/me", a.handleMe)
	a.mux.Handle("GET /api/users/{username}",
		auth.RequireAuthority("ROLE_ADMIN", http.HandlerFunc(a.handleGetUser)))

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// handleAuthenticate handles POST /api/authenticate: credentials in, signed
// access token out. All authentication failures produce the same generic
// unauthorized body.
func (a *Adapter) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if apiErr := a.readJSON(w, r, &req); apiErr != nil {
		writeError(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		writeError(w, http.StatusBadRequest, apiErr)
		return
	}

	if a.limiter != nil {
		if err := a.limiter.Allow(r.Context(), req.Username); err != nil {
			slog.Warn("login rate limited", "username", req.Username, "remote_addr", r.RemoteAddr)
			observability.RateLimitRejectedTotal.Inc()
			writeError(w, http.StatusTooManyRequests, api.NewTooManyRequestsError("too many attempts, retry later"))
			return
		}
	}

	identity, err := a.credentials.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			observability.LoginsTotal.WithLabelValues("failed").Inc()
			writeError(w, http.StatusUnauthorized, api.NewUnauthorizedError())
			return
		}
		slog.Error("authentication lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, api.NewServerError("internal error"))
		return
	}

	signed, err := a.tokens.Issue(identity)
	if err != nil {
		slog.Error("token issuance failed", "subject", identity.Subject, "error", err)
		writeError(w, http.StatusInternalServerError, api.NewServerError("internal error"))
		return
	}

	observability.LoginsTotal.WithLabelValues("ok").Inc()
	observability.TokensIssuedTotal.Inc()
	slog.Info("token issued", "subject", identity.Subject)

	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: signed})
}

// handleSignup handles POST /api/signup: creates an activated user with
// ROLE_USER and a bcrypt-hashed password.
func (a *Adapter) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if apiErr := a.readJSON(w, r, &req); apiErr != nil {
		writeError(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		writeError(w, http.StatusBadRequest, apiErr)
		return
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, api.NewServerError("internal error"))
		return
	}

	user := &userstore.User{
		Username:     req.Username,
		PasswordHash: hash,
		Nickname:     req.Nickname,
		Activated:    true,
		Authorities:  []string{"ROLE_USER"},
	}

	if err := a.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, userstore.ErrConflict) {
			writeError(w, http.StatusConflict, api.NewConflictError("username already taken"))
			return
		}
		slog.Error("creating user failed", "error", err)
		writeError(w, http.StatusInternalServerError, api.NewServerError("internal error"))
		return
	}

	slog.Info("user created", "username", user.Username)
	writeJSON(w, http.StatusCreated, userResponse(user))
}

// handleHello handles GET /api/hello, an unauthenticated liveness-style
// greeting kept on the bypass list.
func (a *Adapter) handleHello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "hello"})
}

// handleMe handles GET /api/me: returns the caller's own user record.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		writeError(w, http.StatusUnauthorized, api.NewUnauthorizedError())
		return
	}

	user, err := a.users.GetByUsername(r.Context(), id.Subject)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, api.NewNotFoundError("user not found"))
			return
		}
		slog.Error("loading user failed", "subject", id.Subject, "error", err)
		writeError(w, http.StatusInternalServerError, api.NewServerError("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user))
}

// handleGetUser handles GET /api/users/{username}. The RequireAuthority
// wrapper has already checked for ROLE_ADMIN.
func (a *Adapter) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := a.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, api.NewNotFoundError("user not found"))
			return
		}
		slog.Error("loading user failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, api.NewServerError("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user))
}

// readJSON decodes a JSON request body with a size limit and strict fields.
func (a *Adapter) readJSON(w http.ResponseWriter, r *http.Request, dst any) *api.APIError {
	if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" {
		return api.NewInvalidRequestError("content_type", "Content-Type must be application/json")
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return api.NewInvalidRequestError("body", "invalid JSON request body")
	}
	return nil
}

func userResponse(u *userstore.User) api.UserResponse {
	return api.UserResponse{
		Username:    u.Username,
		Nickname:    u.Nickname,
		Activated:   u.Activated,
		Authorities: u.Authorities,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, apiErr *api.APIError) {
	writeJSON(w, status, api.ErrorResponse{Error: apiErr})
}
