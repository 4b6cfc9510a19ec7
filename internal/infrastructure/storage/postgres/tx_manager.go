package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"restostock/internal/core/tx"
	"restostock/pkg/logger"
)

var tracer = otel.Tracer("restostock/tx")

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxOptions configures transaction behavior.
type TxOptions struct {
	IsolationLevel pgx.TxIsoLevel
	AccessMode     pgx.TxAccessMode

	// StatementTimeout bounds every statement of the transaction (default 30s)
	StatementTimeout time.Duration

	// UseSavepoint makes a nested call roll back independently of its parent.
	UseSavepoint bool
}

// DefaultTxOptions returns READ COMMITTED read-write with a 30s statement timeout.
// Row locks (SELECT ... FOR UPDATE) provide the serialization stock operations need.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// TxManager runs functions inside pgx transactions carried by the context.
type TxManager struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool, timeout: DefaultTxOptions().StatementTimeout}
}

// SetStatementTimeout overrides the default statement timeout.
func (m *TxManager) SetStatementTimeout(d time.Duration) {
	m.timeout = d
}

type txKey struct{}

// Tx wraps pgx.Tx.
type Tx struct {
	pgx.Tx
}

// RunInTransaction executes fn within a transaction.
// If a transaction already exists in ctx, it is reused.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := DefaultTxOptions()
	opts.StatementTimeout = m.timeout
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// ReadOnly executes fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := DefaultTxOptions()
	opts.AccessMode = pgx.ReadOnly
	opts.StatementTimeout = m.timeout
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// RunInTransactionWithOptions executes fn with custom transaction options.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	if existing := m.GetTx(ctx); existing != nil {
		if !opts.UseSavepoint {
			return fn(ctx)
		}
		return m.runInSavepoint(ctx, existing, fn)
	}

	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
			attribute.String("tx.access_mode", string(opts.AccessMode)),
		))
	defer span.End()

	if err := m.begin(ctx, opts, fn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction rolled back")
		return err
	}
	return nil
}

func (m *TxManager) begin(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	pgTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if opts.StatementTimeout > 0 {
		_, err = pgTx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = pgTx.Rollback(ctx)
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, &Tx{Tx: pgTx})); err != nil {
		// rollback must complete even if ctx was cancelled
		if rbErr := pgTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (m *TxManager) runInSavepoint(ctx context.Context, existing *Tx, fn func(ctx context.Context) error) error {
	name := fmt.Sprintf("sp_%d", time.Now().UnixNano())
	if _, err := existing.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	if err := fn(ctx); err != nil {
		if _, rbErr := existing.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			logger.Error(ctx, "rollback to savepoint failed", "savepoint", name, "error", rbErr)
		}
		return err
	}

	if _, err := existing.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// GetTx returns the current transaction from context, or nil if none.
func (m *TxManager) GetTx(ctx context.Context) *Tx {
	if t, ok := ctx.Value(txKey{}).(*Tx); ok {
		return t
	}
	return nil
}

// Querier is satisfied by both pgx.Tx and *pgxpool.Pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the context transaction if any, otherwise the pool.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := m.GetTx(ctx); t != nil {
		return t.Tx
	}
	return m.pool
}
