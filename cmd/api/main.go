package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/warebound/fulfillment-backend/api/controllers"
	"github.com/warebound/fulfillment-backend/api/routes"
	"github.com/warebound/fulfillment-backend/internal/ledger"
	"github.com/warebound/fulfillment-backend/internal/notifications"
	"github.com/warebound/fulfillment-backend/internal/orders"
	"github.com/warebound/fulfillment-backend/internal/pickpack"
	"github.com/warebound/fulfillment-backend/internal/shipping"
	"github.com/warebound/fulfillment-backend/internal/warehouses"
	"github.com/warebound/fulfillment-backend/pkg/config"
	"github.com/warebound/fulfillment-backend/pkg/db"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/metrics"
	"github.com/warebound/fulfillment-backend/pkg/migrate"
	"github.com/warebound/fulfillment-backend/pkg/pubsub"
	"github.com/warebound/fulfillment-backend/pkg/redis"
)

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

	// Pub/Sub is optional. Without a project the API runs with stored-only
	// notifications.
	var pubsubClient *pubsub.Client
	var notificationPublisher notifications.Publisher
	var pubsubPinger controllers.Pinger
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		notificationPublisher = notifications.NewGCPPublisher(pubsubClient.FulfillmentPublisher())
		pubsubPinger = pubsubClient
	} else {
		logg.Warn(context.Background(), "gcp project not configured, pubsub disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	warehouseRepo := warehouses.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	pickPackRepo := pickpack.NewRepository(dbClient.DB())
	shippingRepo := shipping.NewRepository(dbClient.DB())
	internationalRepo := shipping.NewInternationalRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notificationsRepo, notificationPublisher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(dbClient, ledgerRepo, fulfillmentMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	packNumbers, err := pickpack.NewNumberGenerator(
		redisClient,
		pickPackRepo,
		cfg.Fulfillment.PackNumberPrefix,
		cfg.Fulfillment.PackSequenceTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create pack number generator", err)
		os.Exit(1)
	}

	pickPackService, err := pickpack.NewService(
		dbClient,
		pickPackRepo,
		ordersRepo,
		warehouseRepo,
		packNumbers,
		notificationsService,
		fulfillmentMetrics,
		logg,
		cfg.Fulfillment.PackNumberMaxRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create pick pack service", err)
		os.Exit(1)
	}

	shippingService, err := shipping.NewService(
		dbClient,
		shippingRepo,
		ordersRepo,
		notificationsService,
		fulfillmentMetrics,
		logg,
		cfg.Fulfillment.DefaultDeliveryDays,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	internationalService, err := shipping.NewInternationalService(
		dbClient,
		internationalRepo,
		ordersRepo,
		notificationsService,
		fulfillmentMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create international shipping service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubPinger,
			registry,
			ledgerService,
			pickPackService,
			shippingService,
			internationalService,
			notificationsService,
			warehouseRepo,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
