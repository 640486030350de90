// Package postgres provides a PostgreSQL implementation of userstore.Store.
// It uses pgx/v5 for connection pooling and keeps authorities in a join
// table so a user record always loads with its full authority set.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokengate-dev/tokengate/pkg/userstore"
)

// Store is a PostgreSQL-backed userstore.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements userstore.Store at compile time.
var _ userstore.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// GetByUsername loads a user and its authorities by exact username match.
func (s *Store) GetByUsername(ctx context.Context, username string) (*userstore.User, error) {
	var u userstore.User
	var userID int64

	err := s.pool.QueryRow(ctx, `
		SELECT user_id, username, password_hash, nickname, activated
		FROM users
		WHERE username = $1
	`, username).Scan(&userID, &u.Username, &u.PasswordHash, &u.Nickname, &u.Activated)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, userstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT authority_name
		FROM user_authorities
		WHERE user_id = $1
		ORDER BY authority_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying authorities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var authority string
		if err := rows.Scan(&authority); err != nil {
			return nil, fmt.Errorf("scanning authority: %w", err)
		}
		u.Authorities = append(u.Authorities, authority)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading authorities: %w", err)
	}

	return &u, nil
}

// Create inserts a user and its authority assignments in one transaction.
// Returns userstore.ErrConflict when the username is already taken.
func (s *Store) Create(ctx context.Context, user *userstore.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, nickname, activated)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id
	`, user.Username, user.PasswordHash, user.Nickname, user.Activated).Scan(&userID)

	if err != nil {
		if isDuplicateKey(err) {
			return userstore.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	for _, authority := range user.Authorities {
		if _, err := tx.Exec(ctx, `
			INSERT INTO authorities (authority_name) VALUES ($1)
			ON CONFLICT DO NOTHING
		`, authority); err != nil {
			return fmt.Errorf("inserting authority %q: %w", authority, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_authorities (user_id, authority_name) VALUES ($1, $2)
		`, userID, authority); err != nil {
			return fmt.Errorf("assigning authority %q: %w", authority, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
