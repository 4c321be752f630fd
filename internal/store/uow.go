package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Stores are the repository handles bound to one transaction. Reads through
// them see writes made earlier in the same scope.
type Stores struct {
	Users  UserStore
	Places PlaceStore
}

// UnitOfWork runs one logical business operation inside a single database
// transaction. The transaction commits when fn returns nil and rolls back
// when fn returns an error or panics; fn's error propagates to the caller
// unmodified. Each Do call opens exactly one transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// TxBeginner is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ UnitOfWork = (*PgxUnitOfWork)(nil)

type PgxUnitOfWork struct {
	db     TxBeginner
	logger *slog.Logger
}

func NewPgxUnitOfWork(db TxBeginner, logger *slog.Logger) *PgxUnitOfWork {
	return &PgxUnitOfWork{
		db:     db,
		logger: logger,
	}
}

func (u *PgxUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// After a successful commit pgx reports ErrTxClosed here, which makes
		// the deferred rollback the idempotent no-op the contract requires.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			u.logger.ErrorContext(ctx, "transaction rollback failed", slog.Any("error", rbErr))
		}
	}()

	s := Stores{
		Users:  NewPostgresUserStore(tx, u.logger),
		Places: NewPostgresPlaceStore(tx, u.logger),
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
