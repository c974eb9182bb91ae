package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/atacado-backend/pkg/config"
	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/instance"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/metrics"
	"github.com/angelmondragon/atacado-backend/pkg/migrate"
	"github.com/angelmondragon/atacado-backend/pkg/outbox"
	"github.com/angelmondragon/atacado-backend/pkg/redis"
)

const serviceKind = "outbox-publisher"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind
	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"instance":     instance.ID(),
		"service_kind": serviceKind,
	})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shut down")
}

// run owns every resource so deferred closes execute before main exits.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer closeWith(ctx, logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer closeWith(ctx, logg, "redis", redisClient.Close)

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Streams:    redisClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Decoder:    outbox.NewDefaultRegistry(),
		Metrics:    metrics.NewOutboxMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}

	logg.Info(ctx, "starting outbox publisher")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return service.Run(gctx) })
	if cfg.Service.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Service.MetricsAddr, prometheus.DefaultGatherer, logg)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func closeWith(ctx context.Context, logg *logger.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		logg.Error(ctx, "error closing "+name, err)
	}
}
