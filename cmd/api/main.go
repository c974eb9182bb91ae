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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/atacado-backend/api/routes"
	"github.com/angelmondragon/atacado-backend/internal/cashback"
	"github.com/angelmondragon/atacado-backend/internal/catalog"
	"github.com/angelmondragon/atacado-backend/internal/orders"
	"github.com/angelmondragon/atacado-backend/internal/pricing"
	"github.com/angelmondragon/atacado-backend/pkg/config"
	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/instance"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
	"github.com/angelmondragon/atacado-backend/pkg/metrics"
	"github.com/angelmondragon/atacado-backend/pkg/migrate"
	"github.com/angelmondragon/atacado-backend/pkg/outbox"
	"github.com/angelmondragon/atacado-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	policy, err := pricing.PolicyFromConfig(cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "invalid pricing policy", err)
		os.Exit(1)
	}

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cashbackService, err := cashback.NewService(
		cashback.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		engineMetrics,
		policy.Money,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cashback service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:              orders.NewRepository(dbClient.DB()),
		TransactionRunner: dbClient,
		Catalog:           catalogService,
		Cashback:          cashbackService,
		Outbox:            outboxService,
		Calculator:        pricing.NewCalculator(pricing.NewResolver(policy)),
		Metrics:           engineMetrics,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":              cfg.App.Env,
		"addr":             addr,
		"instance":         instance.ID(),
		"campaignStacking": cfg.Pricing.CampaignStacking,
		"rounding":         cfg.Pricing.Rounding,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, ordersService, cashbackService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
