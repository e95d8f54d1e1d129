package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/adapters/event"
	"github.com/khoahotran/portfolio-onboarding/adapters/media_storage"
	"github.com/khoahotran/portfolio-onboarding/adapters/persistence"
	portfolioUC "github.com/khoahotran/portfolio-onboarding/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-onboarding/internal/config"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
	"github.com/khoahotran/portfolio-onboarding/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env).With(zap.String("component", "worker"))
	defer appLogger.Sync()

	if cfg.Tracing.Enabled {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, tracing.ServiceWorker)
		if err != nil {
			appLogger.Fatal("Cannot init tracer provider", err)
		}
		defer tracing.Shutdown(tp, cfg.App.ShutdownTimeout, appLogger)
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	repo := persistence.NewPostgresPortfolioRepo(dbPool, appLogger)
	processUC := portfolioUC.NewProcessPortfolioEventUseCase(repo, uploader, appLogger)

	reader, err := event.NewPortfolioEventsReader(cfg)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka reader", err)
	}
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicPortfolioEvents), zap.String("group", event.ConsumerGroupMedia))
	if err := event.Consume(ctx, reader, processUC.Execute, appLogger); err != nil {
		appLogger.Error("Worker stopped", err)
		return
	}
	appLogger.Info("Worker exited")
}
