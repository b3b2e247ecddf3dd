package repositories

import (
	"context"
)

// TxFn is a function executed within a database transaction
type TxFn func(ctx context.Context) error

// TransactionManager coordinates multi-repository writes under a single
// transaction. Repositories pick the transaction up from the context.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
