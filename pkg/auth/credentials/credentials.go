// Package credentials implements username/password authentication against
// the user store. It is used only on the login path; steady-state request
// handling never touches it.
package credentials

import (
	"context"
	"errors"
	"fmt"
	
	"golang.org/x/crypto/bcrypt"

	"github.com/tokengate-dev/tokengate/pkg/auth"
	"github.com/tokengate-dev/tokengate/pkg/debug"
	"github.com/tokengate-dev/tokengate/pkg/userstore"
)

// dummyHash is a syntactically valid bcrypt hash compared against when the
// username is unknown, so the unknown-user and wrong-password paths both
// cost one bcrypt verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticator verifies submitted credentials against stored bcrypt hashes.
type Authenticator struct {
	store userstore.Store
}

// New creates a credentials authenticator backed by the given user store.
func New(store userstore.Store) *Authenticator {
	return &Authenticator{store: store}
}

// Authenticate looks up the user by exact username and verifies the
// password against the stored hash. Every failure surfaces as
// auth.ErrBadCredentials: callers must not be able to tell an unknown user
// from a wrong password or a deactivated account. The internal cause is
// logged at debug level only.
//
// On success it returns an identity built from the username and the
// record's authority set. Token issuance is a separate step.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*auth.Identity, error) {
	user, err := a.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			// Burn a bcrypt comparison to keep timing uniform.
			bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			debug.Log("credentials", "login failed", "username", username, "cause", "not_found")
			return nil, auth.ErrBadCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		debug.Log("credentials", "login failed", "username", username, "cause", "bad_password")
		return nil, auth.ErrBadCredentials
	}

	if !user.Activated {
		debug.Log("credentials", "login failed", "username", username, "cause", "deactivated")
		return nil, auth.ErrBadCredentials
	}

	return &auth.Identity{
		Subject:     user.Username,
		Authorities: append([]string(nil), user.Authorities...),
	}, nil
}

// HashPassword bcrypt-hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
