package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tokengate-dev/tokengate/pkg/userstore"
)

func TestCreateAndGet(t *testing.T) {
	s := New()

	user := &userstore.User{
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		Nickname:     "Alice",
		Activated:    true,
		Authorities:  []string{"ROLE_USER"},
	}
	if err := s.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.Username != "alice" || got.Nickname != "Alice" || !got.Activated {
		t.Errorf("got %+v", got)
	}
	if len(got.Authorities) != 1 || got.Authorities[0] != "ROLE_USER" {
		t.Errorf("Authorities = %v, want [ROLE_USER]", got.Authorities)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := New()

	if _, err := s.GetByUsername(context.Background(), "nobody"); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGet_CaseSensitive(t *testing.T) {
	s := New()
	s.Create(context.Background(), &userstore.User{Username: "alice"})

	if _, err := s.GetByUsername(context.Background(), "Alice"); !errors.Is(err, userstore.ErrNotFound) {
		t.Fatalf("lookup must be case-sensitive, got error = %v", err)
	}
}

func TestCreate_Conflict(t *testing.T) {
	s := New()
	s.Create(context.Background(), &userstore.User{Username: "alice"})

	err := s.Create(context.Background(), &userstore.User{Username: "alice"})
	if !errors.Is(err, userstore.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := New()
	s.Create(context.Background(), &userstore.User{
		Username:    "alice",
		Authorities: []string{"ROLE_USER"},
	})

	got, _ := s.GetByUsername(context.Background(), "alice")
	got.Authorities[0] = "ROLE_ADMIN"

	again, _ := s.GetByUsername(context.Background(), "alice")
	if again.Authorities[0] != "ROLE_USER" {
		t.Error("mutation through returned copy leaked into the store")
	}
}
