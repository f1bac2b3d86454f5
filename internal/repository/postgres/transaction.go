package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timevault/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return tm.run(ctx, pgx.TxOptions{}, "", "", fn)
}

// ExecScopedTx executes a function within a serializable transaction holding
// an advisory lock for (tenantID, userID). The lock serializes concurrent
// writers for one owner: a second transaction for the same user blocks until
// the first commits, so both cannot pass the overlap check for intervals
// that would conflict. Serializable isolation is the backstop should the
// lock ever be bypassed.
func (tm *TransactionManager) ExecScopedTx(ctx context.Context, tenantID, userID string, fn repositories.TxFn) error {
	return tm.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, tenantID, userID, fn)
}

func (tm *TransactionManager) run(ctx context.Context, opts pgx.TxOptions, tenantID, userID string, fn repositories.TxFn) error {
	tx, err := tm.pool.BeginTx(ctx, opts)
	if err != nil {
		return storageError("begin transaction", err)
	}

	// Defer rollback - safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			tm.logger.Error("rollback failed", "error", err)
		}
	}()

	if tenantID != "" {
		// pg_advisory_xact_lock releases automatically at commit/rollback,
		// so there is no unlock path to get wrong.
		lockKey := tenantID + ":" + userID
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", lockKey); err != nil {
			return storageError("acquire advisory lock", err)
		}
	}

	// Store transaction in context so repositories can access it
	txCtx := repositories.SetTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit transaction", err)
	}

	return nil
}
