package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// withTx runs fn inside a transaction carried in the context. Nested
// calls reuse the surrounding transaction. Serialization failures and
// deadlocks come back as domain.ErrConflictRetry so the service layer
// can retry the whole transaction.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return retryableErr(err)
	}
	return retryableErr(tx.Commit(ctx))
}

func retryableErr(err error) error {
	if err == nil {
		return nil
	}
	if isTransientConflict(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflictRetry, err)
	}
	return err
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isTransientConflict matches serialization failures and deadlocks,
// both safe to retry with a fresh transaction.
func isTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}
