package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/cache"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/telemetry"
	"github.com/omnik-labs/marketplace/pkg/workflows"
	assetServices "github.com/omnik-labs/marketplace/services/asset/application/services"
	marketServices "github.com/omnik-labs/marketplace/services/market/application/services"
	marketWorkflows "github.com/omnik-labs/marketplace/services/market/application/workflows"
	marketEvents "github.com/omnik-labs/marketplace/services/market/domain/events"
	walletServices "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateMarketplace(cfg); err != nil {
		slog.Error("marketplace config validation failed", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log, database.Options{MaxConns: cfg.DatabaseMaxConns})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, pool.DB(), log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	ledgerMetrics, err := telemetry.NewLedgerMetrics(otel.Meter(cfg.ServiceName), cfg.Currency())
	if err != nil {
		log.Error("failed to create ledger metrics", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	appConfig := &app.Application{
		Config:        cfg,
		Db:            pool,
		Logger:        log,
		EventBus:      eventBus,
		Redis:         redisClient,
		LedgerMetrics: ledgerMetrics,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		appConfig.TemporalClient = temporalClient

		w, err := startSettlementWorker(ctx, appConfig)
		if err != nil {
			log.Error("failed to start settlement worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer w.Stop()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires the read-model projections.
// Handlers must be idempotent; EventBus retries up to 3 times on failure.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	projector := marketServices.NewCacheProjector(
		marketServices.NewRedisItemCache(cache.NewMarketItemCache(a.Redis)),
		int64(a.Config.FeePercent),
		a.Logger,
	)

	handlers := map[string]events.Handler{
		marketEvents.TopicOffered: projector.HandleOffered,
		marketEvents.TopicBought:  projector.HandleBought,
	}
	topics := make([]string, 0, len(handlers))
	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		// Drain subscriber errors in background so the channel never blocks.
		go func() {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

type stopper interface{ Stop() }

// startSettlementWorker runs purchase workflows against this process's ledger.
func startSettlementWorker(ctx context.Context, a *app.Application) (stopper, error) {
	assets := assetServices.New(a)
	wallets := walletServices.New(a)
	market := marketServices.New(a, assets.Registry, wallets.Wallet)
	if err := market.Ledger.Init(ctx); err != nil {
		return nil, err
	}

	w := a.TemporalClient.NewWorker()
	marketWorkflows.Register(w, &marketWorkflows.Activities{Ledger: market.Ledger})
	if err := w.Start(); err != nil {
		return nil, err
	}
	a.Logger.Info("settlement worker started", "task_queue", a.TemporalClient.TaskQueue)
	return w, nil
}
