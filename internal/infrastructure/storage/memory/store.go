// Package memory provides in-memory implementations of every repository
// and of tx.Manager. Transactions are serialized by a single mutex and
// rolled back by restoring a snapshot of the whole state.
package memory

import (
	"context"
	"maps"
	"sync"

	"restostock/internal/core/id"
	"restostock/internal/core/tx"
	"restostock/internal/domain/audit"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/internal/domain/documents/stockcount"
	"restostock/internal/domain/registers/stock"
)

type stockKey struct {
	material  id.ID
	warehouse id.ID
}

type state struct {
	materials   map[id.ID]material.Material
	warehouses  map[id.ID]warehouse.Warehouse
	movements   []stock.Movement
	seq         int64
	stockRows   map[stockKey]stock.MaterialStock
	counts      map[id.ID]stockcount.StockCount
	items       map[id.ID]stockcount.Item
	adjustments []stockcount.Adjustment
	audit       []audit.Entry
	sequences   map[string]int64
}

func newState() state {
	return state{
		materials:  make(map[id.ID]material.Material),
		warehouses: make(map[id.ID]warehouse.Warehouse),
		stockRows:  make(map[stockKey]stock.MaterialStock),
		counts:     make(map[id.ID]stockcount.StockCount),
		items:      make(map[id.ID]stockcount.Item),
		sequences:  make(map[string]int64),
	}
}

// clone copies the containers. Stored values are never mutated in place,
// so a shallow copy of each element is enough.
func (st state) clone() state {
	return state{
		materials:   maps.Clone(st.materials),
		warehouses:  maps.Clone(st.warehouses),
		movements:   append([]stock.Movement(nil), st.movements...),
		seq:         st.seq,
		stockRows:   maps.Clone(st.stockRows),
		counts:      maps.Clone(st.counts),
		items:       maps.Clone(st.items),
		adjustments: append([]stockcount.Adjustment(nil), st.adjustments...),
		audit:       append([]audit.Entry(nil), st.audit...),
		sequences:   maps.Clone(st.sequences),
	}
}

// Store is the shared state behind all memory repositories.
type Store struct {
	mu sync.Mutex
	st state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

type txKey struct{}

var _ tx.Manager = (*Store)(nil)

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTransaction holds the store lock for the duration of fn and restores
// the pre-transaction state if fn fails or panics. Nested calls join the
// outer one.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// ReadOnly runs fn under the store lock.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.RunInTransaction(ctx, fn)
}

// with runs fn against the state, locking unless ctx already holds the lock.
func (s *Store) with(ctx context.Context, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(&s.st)
}

// Materials returns the material repository.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{s: s} }

// Warehouses returns the warehouse repository.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// Stock returns the ledger and stock row repository.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// StockCounts returns the stock count repository.
func (s *Store) StockCounts() *StockCountRepo { return &StockCountRepo{s: s} }

// Audit returns the audit recorder.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// Numerator returns a number generator backed by the store's sequences.
func (s *Store) Numerator() *Numerator { return &Numerator{s: s} }
