// The rollover-worker materializes recurring templates on a schedule for
// deployments that do not run the lumina server. The two binaries must not
// share a backend: persistence is whole-snapshot replacement, so a resident
// server would save its own stale snapshot over entries this worker adds.
// The server runs the same passes in-process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lumina/internal/amqp"
	"lumina/internal/backend"
	"lumina/internal/config"
	applog "lumina/internal/log"
	"lumina/internal/services"
	"lumina/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting rollover-worker")

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

	var notifier services.RolloverNotifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, notices stay local", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Rollover worker configured",
		"interval", cfg.RolloverInterval,
		applog.FieldBackend, cfg.DataBackend)

	services.RunPeriodically(ctx, cfg.RolloverInterval, func(ctx context.Context, now time.Time) {
		// Each pass loads a fresh snapshot so a restarted worker picks up
		// whatever the file or database holds now.
		st := store.New(result.Persistence)
		st.Load(ctx)
		reconciler := services.NewReconciler(st, notifier)

		count, err := reconciler.Run(ctx, now)
		if err != nil {
			logger.Error("Reconciliation pass failed", applog.FieldError, err)
			return
		}
		if count > 0 {
			logger.Info("Reconciliation pass complete", applog.FieldCount, count)
		}
	})

	logger.Info("Rollover worker stopped")
}
