package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/triplore/triplore/internal/types"
)

var _ UserStore = (*PostgresUserStore)(nil)

// UserStore persists user accounts. Lookups return (nil, nil) when no row
// matches; callers decide whether an absent user is an error.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*types.User, error)
	FindByUsername(ctx context.Context, username string) (*types.User, error)
	Add(ctx context.Context, user types.User) (*types.User, error)
}

type PostgresUserStore struct {
	db     Querier
	logger *slog.Logger
}

func NewPostgresUserStore(db Querier, logger *slog.Logger) *PostgresUserStore {
	return &PostgresUserStore{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id int64) (*types.User, error) {
	var user types.User
	err := s.db.QueryRow(ctx,
		"SELECT id, username, password_hash FROM users WHERE id = $1",
		id).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*types.User, error) {
	var user types.User
	err := s.db.QueryRow(ctx,
		"SELECT id, username, password_hash FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// Add inserts the user and returns it with the store-assigned id.
func (s *PostgresUserStore) Add(ctx context.Context, user types.User) (*types.User, error) {
	err := s.db.QueryRow(ctx,
		"INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id",
		user.Username, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}
