package token

import (
	"context"
	"net/http"
	"strings"

	"github.com/tokengate-dev/tokengate/pkg/auth"
	"github.com/tokengate-dev/tokengate/pkg/debug"
	"github.com/tokengate-dev/tokengate/pkg/observability"
)

// Authenticator validates bearer tokens from the Authorization header
// against the token provider. It is the per-request interception point:
// it runs once per request as part of the auth chain and only ever reads
// the header and the process-wide secret, never the user store.
type Authenticator struct {
	provider *Provider
}

// NewAuthenticator creates a bearer token authenticator backed by the
// given provider.
func NewAuthenticator(provider *Provider) *Authenticator {
	return &Authenticator{provider: provider}
}

// Authenticate extracts the bearer token and decodes it.
//
// Decision outcomes:
//   - Abstain: no Authorization header or not a Bearer scheme; the request
//     continues unauthenticated and the gate downstream fails closed.
//   - No: bearer token present but empty or failing decode. The specific
//     failure (signature, expiry, structure) is logged, never surfaced.
//   - Yes: valid token with the reconstructed identity.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	// A malformed prefix is "no credentials", not an error.
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return auth.Result{Decision: auth.Abstain}
	}
	if tokenStr == "" {
		return auth.Result{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	id, err := a.provider.Decode(tokenStr)
	if err != nil {
		debug.Log("tokens", "token validation failed", "error", err)
		observability.TokenValidationsTotal.WithLabelValues(failureLabel(err)).Inc()
		return auth.Result{Decision: auth.No, Err: err}
	}

	observability.TokenValidationsTotal.WithLabelValues("ok").Inc()
	return auth.Result{Decision: auth.Yes, Identity: id}
}

// failureLabel maps a decode error to its metric label.
func failureLabel(err error) string {
	switch err {
	case ErrBadSignature:
		return "bad_signature"
	case ErrExpired:
		return "expired"
	default:
		return "malformed"
	}
}
