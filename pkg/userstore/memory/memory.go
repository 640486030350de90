// Package memory provides an in-memory userstore.Store for testing and
// lightweight deployments. Users are lost when the process restarts.
package memory

import (
	"context"
	"sync"

	"github.com/tokengate-dev/tokengate/pkg/userstore"
)

// Store is an in-memory userstore.Store.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userstore.User
}

// Ensure Store implements userstore.Store at compile time.
var _ userstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{users: make(map[string]*userstore.User)}
}

// GetByUsername returns the user with the exact username, or ErrNotFound.
func (s *Store) GetByUsername(_ context.Context, username string) (*userstore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	return copyUser(u), nil
}

// Create stores a new user. Returns ErrConflict if the username is taken.
func (s *Store) Create(_ context.Context, user *userstore.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return userstore.ErrConflict
	}
	s.users[user.Username] = copyUser(user)
	return nil
}

// copyUser returns a deep copy so callers cannot mutate stored state.
func copyUser(u *userstore.User) *userstore.User {
	cp := *u
	cp.Authorities = append([]string(nil), u.Authorities...)
	return &cp
}
