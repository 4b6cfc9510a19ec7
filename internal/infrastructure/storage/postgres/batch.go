package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk inserts rows with the COPY protocol.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice inserts rows (each matching columns) into table.
// It must run inside a transaction.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}
	return t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// BatchQuery is one statement of a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// BatchExecutor sends several statements in one round-trip.
type BatchExecutor struct {
	txManager *TxManager
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// ExecuteBatch runs queries inside the context transaction.
// expectRows, when set, requires every statement to affect exactly one row.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery, expectRows bool) error {
	t := e.txManager.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("ExecuteBatch requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := t.SendBatch(ctx, batch)
	defer results.Close()

	for i := range queries {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("batch query %d: %w", i, err)
		}
		if expectRows && tag.RowsAffected() != 1 {
			return fmt.Errorf("batch query %d affected %d rows", i, tag.RowsAffected())
		}
	}
	return nil
}
