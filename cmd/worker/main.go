// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/database"
	"github.com/batisource/sourcing-backend/internal/provider"
	"github.com/batisource/sourcing-backend/internal/queue"
	"github.com/batisource/sourcing-backend/internal/services"
	"github.com/batisource/sourcing-backend/internal/translate"
	"github.com/batisource/sourcing-backend/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Without Redis the worker still drains jobs via the periodic sweep.
	var jobQueue worker.Queue
	rdb, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, worker runs in sweep-only mode")
	} else {
		defer rdb.Close()
		jobQueue = queue.New(rdb, cfg.Worker.QueueName)
	}

	exchangeService := services.NewExchangeService(db, cfg.Exchange)
	jobService := services.NewJobService(db, cfg.Search)
	searchLogService := services.NewSearchLogService(db)
	providerClient := provider.NewClient(cfg.Provider, translate.New(), cfg.Exchange, exchangeService.Convert)

	w := worker.New(jobService, providerClient, jobQueue, searchLogService, cfg.Worker, cfg.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logrus.WithError(err).Fatal("Worker exited with error")
	}

	logrus.Info("Worker exited")
}
