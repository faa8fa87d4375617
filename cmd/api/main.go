package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	_ "github.com/omnik-labs/marketplace/docs/swagger"
	"github.com/omnik-labs/marketplace/migrations/marketplace"
	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/auth"
	"github.com/omnik-labs/marketplace/pkg/cache"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/migrator"
	"github.com/omnik-labs/marketplace/pkg/stream"
	"github.com/omnik-labs/marketplace/pkg/telemetry"
	"github.com/omnik-labs/marketplace/pkg/workflows"
	assetApi "github.com/omnik-labs/marketplace/services/asset/application/api"
	assetServices "github.com/omnik-labs/marketplace/services/asset/application/services"
	marketApi "github.com/omnik-labs/marketplace/services/market/application/api"
	marketHandlers "github.com/omnik-labs/marketplace/services/market/application/handlers"
	marketServices "github.com/omnik-labs/marketplace/services/market/application/services"
	marketWorkflows "github.com/omnik-labs/marketplace/services/market/application/workflows"
	marketEvents "github.com/omnik-labs/marketplace/services/market/domain/events"
	walletApi "github.com/omnik-labs/marketplace/services/wallet/application/api"
	walletServices "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

// @title			Omnik Marketplace API
// @version		1.0
// @description	Custodial marketplace ledger: list assets for sale and settle purchases atomically.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/api
// @schemes		http https
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
	errhttp.HideInternalErrors(cfg.IsProduction())

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log, database.Options{MaxConns: cfg.DatabaseMaxConns})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	if err := migrator.Up(ctx, pool.DB(), marketplace.FS, log); err != nil {
		log.Error("failed to apply migrations", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	eventBus, err := events.NewEventBusWithForwarder(cfg, pool.DB(), log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer temporalClient.Close()
	}

	sessionStore := auth.NewSessionStore(redisClient.Client(), auth.SessionOptions{
		AuthKey:       []byte(cfg.SessionAuthKey),
		EncryptionKey: []byte(cfg.SessionEncryptionKey),
		Secure:        cfg.IsProduction(),
	})
	log.Info("session store initialized", "backend", "redis")

	ledgerMetrics, err := telemetry.NewLedgerMetrics(otel.Meter(cfg.ServiceName), cfg.Currency())
	if err != nil {
		log.Error("failed to create ledger metrics", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()
	var hub *stream.Hub
	if cfg.StreamEnabled {
		hub = stream.NewHub(stream.DefaultConfig(), log)
		defer hub.Close() //nolint:errcheck
		if err := subscribeStream(streamCtx, eventBus, hub, log); err != nil {
			log.Error("failed to subscribe event stream", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	}

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		SessionStore:   sessionStore,
		Stream:         hub,
		LedgerMetrics:  ledgerMetrics,
	}

	assets := assetServices.New(appConfig)
	wallets := walletServices.New(appConfig)
	market := marketServices.New(appConfig, assets.Registry, wallets.Wallet)
	if err := market.Ledger.Init(ctx); err != nil {
		log.Error("failed to initialize ledger", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	checks := httpx.HealthChecks{
		"database": pool,
		"redis":    redisClient,
		"eventbus": eventBus,
	}
	if temporalClient != nil {
		checks["temporal"] = temporalClient
	}
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig, assets, wallets, market)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	stopStream()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
func registerRoutes(
	r chi.Router,
	a *app.Application,
	assets *assetServices.Services,
	wallets *walletServices.Services,
	market *marketServices.Services,
) {
	walletApi.SessionRoutes(r, a)
	walletApi.WalletRoutes(r, a, wallets)
	assetApi.AssetRoutes(r, a, assets)

	var settlements marketHandlers.Settlements
	if a.TemporalClient != nil {
		settlements = marketWorkflows.NewSettlementClient(a.TemporalClient.Client, a.TemporalClient.TaskQueue)
	}
	marketApi.MarketRoutes(r, a, market, settlements)

	if a.Stream != nil {
		r.Get("/events/ws", a.Stream.Handler())
	}
}

// subscribeStream feeds ledger events from every instance into hub.
func subscribeStream(ctx context.Context, bus *events.EventBus, hub *stream.Hub, log logger.Logger) error {
	for _, topic := range []string{marketEvents.TopicOffered, marketEvents.TopicBought} {
		errCh, err := bus.SubscribeBroadcast(ctx, topic, hub.HandleMessage)
		if err != nil {
			return err
		}
		go func() {
			for err := range errCh {
				log.ErrorContext(ctx, "stream subscriber error", "topic", topic, "error", err)
			}
		}()
	}
	return nil
}
