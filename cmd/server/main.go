// Package main is the entry point for the restostock API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restostock/internal/app"
	"restostock/internal/config"
	v1 "restostock/internal/infrastructure/http/v1"
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
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Info("starting restostock server")

	pool, err := postgres.NewPool(ctx, cfg.Pool())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

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

	router := v1.NewRouter(v1.RouterConfig{
		Logger:   log,
		Services: services,
		DB:       pool,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	pool.LogStats(ctx)
	log.Info("server stopped")
}
