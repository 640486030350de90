package credentials

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tokengate-dev/tokengate/pkg/auth"
	"github.com/tokengate-dev/tokengate/pkg/userstore"
	"github.com/tokengate-dev/tokengate/pkg/userstore/memory"
)

// seedUser creates a store holding one user with the given password.
func seedUser(t *testing.T, user userstore.User, password string) *memory.Store {
	t.Helper()

	// MinCost keeps the test fast; the verification path is identical.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	user.PasswordHash = string(hash)

	store := memory.New()
	if err := store.Create(context.Background(), &user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return store
}

func TestAuthenticate_Success(t *testing.T) {
	store := seedUser(t, userstore.User{
		Username:    "alice",
		Activated:   true,
		Authorities: []string{"ROLE_USER", "ROLE_ADMIN"},
	}, "s3cret")

	id, err := New(store).Authenticate(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.Subject != "alice" {
		t.Errorf("Subject = %q, want alice", id.Subject)
	}
	if !id.HasAuthority("ROLE_USER") || !id.HasAuthority("ROLE_ADMIN") {
		t.Errorf("Authorities = %v, want both roles", id.Authorities)
	}
	if !id.ExpiresAt.IsZero() {
		t.Error("credential identity should carry no expiry")
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	store := seedUser(t, userstore.User{Username: "alice", Activated: true}, "s3cret")

	id, err := New(store).Authenticate(context.Background(), "alice", "wrong")
	if !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("error = %v, want ErrBadCredentials", err)
	}
	if id != nil {
		t.Error("failed login produced an identity")
	}
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	store := memory.New()

	_, err := New(store).Authenticate(context.Background(), "nobody", "whatever")
	if !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("error = %v, want ErrBadCredentials", err)
	}
}

func TestAuthenticate_FailureUniformity(t *testing.T) {
	// Unknown user and wrong password must be indistinguishable to callers.
	store := seedUser(t, userstore.User{Username: "alice", Activated: true}, "s3cret")
	authn := New(store)

	_, errUnknown := authn.Authenticate(context.Background(), "nobody", "whatever")
	_, errWrongPw := authn.Authenticate(context.Background(), "alice", "wrong")

	if !errors.Is(errUnknown, auth.ErrBadCredentials) || !errors.Is(errWrongPw, auth.ErrBadCredentials) {
		t.Fatalf("errors = %v / %v, want ErrBadCredentials for both", errUnknown, errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("error messages differ: %q vs %q", errUnknown.Error(), errWrongPw.Error())
	}
}

func TestAuthenticate_DeactivatedUser(t *testing.T) {
	store := seedUser(t, userstore.User{Username: "alice", Activated: false}, "s3cret")

	_, err := New(store).Authenticate(context.Background(), "alice", "s3cret")
	if !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("error = %v, want ErrBadCredentials", err)
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
}
