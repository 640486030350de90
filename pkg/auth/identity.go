package auth

import "time"

// Identity represents an authenticated caller. It is immutable once built:
// either by the credentials authenticator after a successful login, or by
// the token codec when decoding a bearer token. It lives for at most one
// request and is never persisted.
type Identity struct {
	// Subject is the unique identifier (required, non-empty).
	Subject string

	// Authorities lists the role strings granted to the subject,
	// e.g. "ROLE_USER", "ROLE_ADMIN".
	Authorities []string

	// ExpiresAt is the token expiry for identities reconstructed from a
	// bearer token. Zero for identities built directly from credentials.
	ExpiresAt time.Time
}

// HasAuthority reports whether the identity carries the given authority.
func (id *Identity) HasAuthority(authority string) bool {
	if id == nil {
		return false
	}
	for _, a := range id.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
