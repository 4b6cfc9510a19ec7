// Package main is the entry point for the restostock background worker.
// It periodically checks stock consistency and optionally repairs drift.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"restostock/internal/app"
	"restostock/internal/config"
	appctx "restostock/internal/core/context"
	"restostock/internal/domain/reconciliation"
	"restostock/internal/infrastructure/storage/postgres"
	"restostock/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting restostock worker")

	pool, err := postgres.NewPool(ctx, cfg.Pool())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	txm.SetStatementTimeout(cfg.Database.StatementTimeout)

	repos, err := app.PostgresRepositories(txm, cfg.Audit.CompressThreshold)
	if err != nil {
		log.Fatalw("failed to build repositories", "error", err)
	}
	services := app.NewServices(repos, app.Settings{
		Epsilon:    cfg.Epsilon(),
		CostWindow: cfg.Stock.CostWindow,
		StockCount: cfg.StockCount(),
	})

	worker := NewConsistencyWorker(services.Reconciliation, cfg.Worker.Interval, cfg.Worker.AutoFix, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Reconciler is the part of the reconciliation service the worker drives.
type Reconciler interface {
	Report(ctx context.Context) (*reconciliation.ConsistencyReport, error)
	FixAll(ctx context.Context) (*reconciliation.FixAllResult, error)
}

// ConsistencyWorker runs a consistency sweep on a fixed interval.
type ConsistencyWorker struct {
	recon    Reconciler
	interval time.Duration
	autoFix  bool
	log      *logger.Logger
}

func NewConsistencyWorker(recon Reconciler, interval time.Duration, autoFix bool, log *logger.Logger) *ConsistencyWorker {
	return &ConsistencyWorker{
		recon:    recon,
		interval: interval,
		autoFix:  autoFix,
		log:      log.WithComponent("worker"),
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (w *ConsistencyWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep reports drift and, when enabled, repairs it. It returns the number
// of inconsistent materials found.
func (w *ConsistencyWorker) sweep(ctx context.Context) int {
	ctx = logger.WithLogger(ctx, w.log)
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "system", Name: "consistency worker"})

	report, err := w.recon.Report(ctx)
	if err != nil {
		w.log.Errorw("consistency report failed", "error", err)
		return 0
	}
	if report.Inconsistent == 0 {
		w.log.Debugw("stock is consistent", "materials", report.Total)
		return 0
	}

	for _, item := range report.Items {
		if item.IsConsistent {
			continue
		}
		w.log.Warnw("stock drift detected",
			"material_id", item.MaterialID,
			"material", item.MaterialName,
			"system_stock", item.SystemStock,
			"total_stock", item.TotalStock,
			"difference", item.Difference,
		)
	}

	if !w.autoFix {
		return report.Inconsistent
	}

	result, err := w.recon.FixAll(ctx)
	if err != nil {
		w.log.Errorw("consistency fix failed", "error", err)
		return report.Inconsistent
	}
	w.log.Infow("consistency fix finished", "total", result.Total, "fixed", result.Fixed, "failed", len(result.Failures))
	return report.Inconsistent
}
