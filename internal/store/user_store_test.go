package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triplore/triplore/internal/types"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPostgresUserStore_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash FROM users WHERE id = $1")).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash"}).
				AddRow(int64(7), "alice", "$2a$10$hash"))

		s := NewPostgresUserStore(mock, newTestLogger())
		user, err := s.FindByID(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, "alice", user.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent user yields nil, nil", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, username, password_hash FROM users").
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash"}))

		s := NewPostgresUserStore(mock, newTestLogger())
		user, err := s.FindByID(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, user)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, username, password_hash FROM users").
			WithArgs(int64(7)).
			WillReturnError(errors.New("connection reset"))

		s := NewPostgresUserStore(mock, newTestLogger())
		_, err = s.FindByID(ctx, 7)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_FindByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("absent username yields nil, nil", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, username, password_hash FROM users WHERE username").
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash"}))

		s := NewPostgresUserStore(mock, newTestLogger())
		user, err := s.FindByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_Add(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id")).
		WithArgs("bob", "$2a$10$hash").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	s := NewPostgresUserStore(mock, newTestLogger())
	user, err := s.Add(ctx, types.User{Username: "bob", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "bob", user.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}
