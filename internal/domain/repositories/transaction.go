package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
type TransactionManager interface {
	// ExecTx executes a function within a transaction.
	ExecTx(ctx context.Context, fn TxFn) error

	// ExecScopedTx executes a function within a serializable transaction
	// holding an advisory lock for (tenantID, userID). Every write that
	// checks the overlap invariant must run through this: the lock
	// serializes concurrent writers for the same owner, so two transactions
	// cannot both pass an overlap check for intervals that conflict.
	ExecScopedTx(ctx context.Context, tenantID, userID string, fn TxFn) error
}
