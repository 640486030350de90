// Package userstore defines the user persistence contract consumed by the
// credentials authenticator and the signup handler, plus sentinel errors
// shared by its implementations (memory, postgres).
//
// The contract is deliberately narrow: a single lookup-by-username that
// returns a fully populated record (authorities included) or ErrNotFound.
// Nothing in the authentication core depends on the persistence technology.
package userstore

import (
	"context"
	"errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no user exists with the given username.
	ErrNotFound = errors.New("user not found")

	// ErrConflict is returned when a user with the given username already exists.
	ErrConflict = errors.New("user already exists")
)

// User is a stored user record. PasswordHash is a bcrypt hash; the plaintext
// password is never stored or compared.
type User struct {
	Username     string
	PasswordHash string
	Nickname     string
	Activated    bool
	Authorities  []string
}

// Store is the user persistence contract. GetByUsername is an exact,
// case-sensitive match and must return the record with Authorities
// populated.
type Store interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
}
