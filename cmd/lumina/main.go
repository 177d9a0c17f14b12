package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"lumina/internal/amqp"
	"lumina/internal/backend"
	"lumina/internal/config"
	apphttp "lumina/internal/http"
	applog "lumina/internal/log"
	"lumina/internal/services"
	"lumina/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).Create(cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	st := store.New(result.Persistence)
	st.Load(context.Background())
	if cfg.Budget > 0 && st.Budget() == 0 {
		st.SetBudget(context.Background(), cfg.Budget)
	}

	var notifier services.RolloverNotifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing",
				applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	expenseService := services.NewExpenseService(st)
	reconciler := services.NewReconciler(st, notifier)

	srv := apphttp.NewServer(":"+cfg.Port, st, expenseService, reconciler, apphttp.Options{
		ChartCacheSize: cfg.ChartCacheSize,
		ChartCacheTTL:  cfg.ChartCacheTTL,
		Logger:         logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// The server owns the snapshot, so rollovers run in-process: an initial
	// pass at startup, then one per interval. A separate rollover-worker
	// must not share this backend, because snapshot saves are whole-file
	// and a second writer's entries would be overwritten.
	g.Go(func() error {
		services.RunPeriodically(gctx, cfg.RolloverInterval, func(rctx context.Context, now time.Time) {
			created, err := reconciler.Run(rctx, now)
			if err != nil {
				logger.Error("Reconciliation pass failed", applog.FieldError, err)
				return
			}
			if created > 0 {
				srv.FlushCharts()
				logger.Info("Reconciliation pass complete", applog.FieldCount, created)
			}
		})
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
