// Command seed loads a genesis file into the marketplace: funded accounts,
// minted assets and initial listings. With -dry-run the genesis is applied to
// an in-memory store and discarded, which validates the file without a database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/omnik-labs/marketplace/migrations/marketplace"
	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	"github.com/omnik-labs/marketplace/pkg/migrator"
	assetServices "github.com/omnik-labs/marketplace/services/asset/application/services"
	marketServices "github.com/omnik-labs/marketplace/services/market/application/services"
	walletServices "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

func main() {
	path := flag.String("file", "genesis.toml", "genesis file")
	dryRun := flag.Bool("dry-run", false, "apply to an in-memory store and discard")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateMarketplace(cfg); err != nil {
		slog.Error("marketplace config validation failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	genesis, err := loadGenesis(*path)
	if err != nil {
		log.Error("invalid genesis", "path", *path, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *dryRun {
		err = seedInMemory(ctx, cfg, genesis, log)
	} else {
		err = seedPostgres(ctx, cfg, genesis, log)
	}
	if err != nil {
		log.Error("seed failed", "path", *path, "dry_run", *dryRun, "error", err)
		os.Exit(1)
	}
}

func seedInMemory(ctx context.Context, cfg *config.Config, g *Genesis, log logger.Logger) error {
	world := memtx.New(nil)
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, events.NewLoggerAdapter(log))
	defer pubsub.Close() //nolint:errcheck

	assets := assetServices.NewInMemory(world, assetServices.CollectionFromConfig(cfg), log)
	wallets := walletServices.NewInMemory(world, log)
	market := marketServices.NewInMemory(world, marketServices.LedgerConfigFromConfig(cfg),
		assets.Registry, wallets.Wallet, pubsub, nil, log)

	sum, err := apply(ctx, cfg, g, target{tx: world, wallet: wallets.Wallet, registry: assets.Registry, ledger: market.Ledger})
	if err != nil {
		return err
	}
	report(sum, true)
	return nil
}

func seedPostgres(ctx context.Context, cfg *config.Config, g *Genesis, log logger.Logger) error {
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrator.Up(ctx, pool.DB(), marketplace.FS, log); err != nil {
		return err
	}
	// Events land in the outbox; the API's forwarder delivers them.
	bus, err := events.NewEventBusWithForwarder(cfg, pool.DB(), log)
	if err != nil {
		return err
	}
	defer bus.Close() //nolint:errcheck

	a := &app.Application{Config: cfg, Db: pool, Logger: log, EventBus: bus}
	assets := assetServices.New(a)
	wallets := walletServices.New(a)
	market := marketServices.New(a, assets.Registry, wallets.Wallet)

	sum, err := apply(ctx, cfg, g, target{tx: pool, wallet: wallets.Wallet, registry: assets.Registry, ledger: market.Ledger})
	if err != nil {
		return err
	}
	report(sum, false)
	return nil
}

func apply(ctx context.Context, cfg *config.Config, g *Genesis, t target) (*Summary, error) {
	if err := t.ledger.Init(ctx); err != nil {
		return nil, err
	}
	return g.Apply(ctx, t, cfg.Currency())
}

func report(sum *Summary, dryRun bool) {
	verb := "seeded"
	if dryRun {
		verb = "validated (dry run)"
	}
	fmt.Printf("%s: %d accounts, tokens %v, items %v\n", verb, sum.Accounts, sum.TokenIDs, sum.ItemIDs)
}
