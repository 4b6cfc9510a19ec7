package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"restostock/internal/core/id"
	"restostock/internal/domain/reconciliation"
	"restostock/pkg/logger"
)

type stubReconciler struct {
	report    *reconciliation.ConsistencyReport
	reportErr error
	fixCalls  int
}

func (s *stubReconciler) Report(context.Context) (*reconciliation.ConsistencyReport, error) {
	return s.report, s.reportErr
}

func (s *stubReconciler) FixAll(context.Context) (*reconciliation.FixAllResult, error) {
	s.fixCalls++
	return &reconciliation.FixAllResult{Total: s.report.Inconsistent, Fixed: s.report.Inconsistent}, nil
}

func driftReport() *reconciliation.ConsistencyReport {
	return &reconciliation.ConsistencyReport{
		Total:        2,
		Consistent:   1,
		Inconsistent: 1,
		Items: []reconciliation.StockSummary{
			{MaterialID: id.New(), IsConsistent: true},
			{MaterialID: id.New(), MaterialName: "Flour", SystemStock: 10000, TotalStock: 9000, Difference: 1000},
		},
	}
}

func TestSweep(t *testing.T) {
	t.Run("reports without fixing", func(t *testing.T) {
		stub := &stubReconciler{report: driftReport()}
		w := NewConsistencyWorker(stub, time.Minute, false, logger.NewNop())

		assert.Equal(t, 1, w.sweep(context.Background()))
		assert.Zero(t, stub.fixCalls)
	})

	t.Run("auto fix", func(t *testing.T) {
		stub := &stubReconciler{report: driftReport()}
		w := NewConsistencyWorker(stub, time.Minute, true, logger.NewNop())

		assert.Equal(t, 1, w.sweep(context.Background()))
		assert.Equal(t, 1, stub.fixCalls)
	})

	t.Run("consistent stock skips fix", func(t *testing.T) {
		stub := &stubReconciler{report: &reconciliation.ConsistencyReport{Total: 3, Consistent: 3}}
		w := NewConsistencyWorker(stub, time.Minute, true, logger.NewNop())

		assert.Zero(t, w.sweep(context.Background()))
		assert.Zero(t, stub.fixCalls)
	})

	t.Run("report error", func(t *testing.T) {
		stub := &stubReconciler{reportErr: errors.New("db down")}
		w := NewConsistencyWorker(stub, time.Minute, true, logger.NewNop())

		assert.Zero(t, w.sweep(context.Background()))
		assert.Zero(t, stub.fixCalls)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	stub := &stubReconciler{report: &reconciliation.ConsistencyReport{}}
	w := NewConsistencyWorker(stub, time.Hour, false, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
