package services

import (
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/omnik-labs/marketplace/pkg/app"
	pkgcache "github.com/omnik-labs/marketplace/pkg/cache"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	"github.com/omnik-labs/marketplace/pkg/telemetry"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
	"github.com/omnik-labs/marketplace/services/market/infrastructure/persistence/memory"
	"github.com/omnik-labs/marketplace/services/market/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the market context.
type Services struct {
	Ledger *LedgerService
}

// New wires the ledger on Postgres, the outbox and, when present, the Redis
// read model. assets and funds are the registry and wallet services; they join
// the ledger's transactions through ctx.
func New(a *app.Application, assets AssetRegistry, funds Funds) *Services {
	deps := LedgerDeps{
		Tx:        a.Db,
		Ledger:    postgres.NewLedgerRepository(a.Db),
		Items:     postgres.NewItemRepository(a.Db),
		Assets:    assets,
		Funds:     funds,
		Publisher: postgres.NewOutboxPublisher(a.EventBus),
		Metrics:   a.LedgerMetrics,
		Logger:    a.Logger,
	}
	if a.Redis != nil {
		deps.Cache = NewRedisItemCache(pkgcache.NewMarketItemCache(a.Redis))
	}
	return &Services{Ledger: NewLedgerService(LedgerConfigFromConfig(a.Config), deps)}
}

// NewInMemory wires the ledger on world. Events go to pub after commit.
func NewInMemory(world *memtx.World, cfg models.LedgerConfig, assets AssetRegistry, funds Funds,
	pub message.Publisher, metrics *telemetry.LedgerMetrics, log logger.Logger,
) *Services {
	return &Services{Ledger: NewLedgerService(cfg, LedgerDeps{
		Tx:        world,
		Ledger:    memory.NewLedgerRepository(world),
		Items:     memory.NewItemRepository(world),
		Assets:    assets,
		Funds:     funds,
		Publisher: memory.NewPublisher(pub, log),
		Metrics:   metrics,
		Logger:    log,
	})}
}

// LedgerConfigFromConfig returns the configured ledger settings.
// The config must have passed config.ValidateMarketplace.
func LedgerConfigFromConfig(cfg *config.Config) models.LedgerConfig {
	return models.LedgerConfig{
		Address:      identity.MustParseAddress(cfg.MarketAddress),
		FeeRecipient: identity.MustParseAddress(cfg.FeeRecipient),
		FeePercent:   int64(cfg.FeePercent),
	}
}
