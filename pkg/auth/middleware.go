package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tokengate-dev/tokengate/pkg/observability"
)

// unauthorizedBody and forbiddenBody are deliberately generic: the response
// must not reveal whether a token was missing, expired, malformed, or badly
// signed.
const (
	unauthorizedBody = `{"error":{"type":"unauthorized","message":"authentication required"}}`
	forbiddenBody    = `{"error":{"type":"forbidden","message":"access denied"}}`
)

// Middleware creates HTTP middleware from a Chain and a bypass pattern list.
// Bypass patterns are evaluated first-match-wins before any authenticator
// runs; a pattern ending in "/*" matches by prefix, anything else matches
// the path exactly. Requests to all other paths require a Yes vote from the
// chain, else they are rejected with a uniform 401.
func Middleware(chain *Chain, bypassPatterns []string) func(http.Handler) http.Handler {
	matcher := newBypassMatcher(bypassPatterns)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matcher.matches(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)

			if result.Decision == No {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				observability.AuthRejectedTotal.WithLabelValues("unauthenticated").Inc()
				writeJSONError(w, http.StatusUnauthorized, unauthorizedBody)
				return
			}

			if result.Decision != Yes || result.Identity == nil {
				observability.AuthRejectedTotal.WithLabelValues("unauthenticated").Inc()
				writeJSONError(w, http.StatusUnauthorized, unauthorizedBody)
				return
			}

			if result.Identity.Subject == "" {
				slog.Error("authenticator returned identity with empty subject")
				writeJSONError(w, http.StatusInternalServerError,
					`{"error":{"type":"server_error","message":"internal authentication error"}}`)
				return
			}

			slog.Debug("authentication succeeded",
				"subject", result.Identity.Subject,
				"path", r.URL.Path,
			)

			ctx := SetIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthority wraps a handler so that only identities carrying the given
// authority reach it. An authenticated identity without the authority gets a
// generic 403; a missing identity gets a 401 (belt and braces for handlers
// mounted outside the auth middleware).
func RequireAuthority(authority string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			observability.AuthRejectedTotal.WithLabelValues("unauthenticated").Inc()
			writeJSONError(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		if !id.HasAuthority(authority) {
			slog.Warn("authorization denied",
				"subject", id.Subject,
				"path", r.URL.Path,
				"required", authority,
			)
			observability.AuthRejectedTotal.WithLabelValues("forbidden").Inc()
			writeJSONError(w, http.StatusForbidden, forbiddenBody)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DefaultBypassPatterns lists paths that skip authentication.
var DefaultBypassPatterns = []string{"/healthz", "/metrics", "/favicon.ico"}

// bypassMatcher holds the ordered bypass pattern list.
type bypassMatcher struct {
	patterns []string
}

func newBypassMatcher(patterns []string) *bypassMatcher {
	return &bypassMatcher{patterns: patterns}
}

// matches reports whether path matches any pattern, first match wins.
func (m *bypassMatcher) matches(path string) bool {
	for _, p := range m.patterns {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body + "\n"))
}
