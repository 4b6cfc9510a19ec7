// Package tx provides transaction management abstractions.
// Domain services depend on this interface, not on a concrete database.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK and nesting.
//
// The postgres implementation lives in infrastructure/storage/postgres,
// the in-memory one in infrastructure/storage/memory.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, every write made through ctx is rolled back.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
