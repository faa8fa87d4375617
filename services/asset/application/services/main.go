package services

import (
	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
	"github.com/omnik-labs/marketplace/services/asset/infrastructure/persistence/memory"
	"github.com/omnik-labs/marketplace/services/asset/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the asset context.
type Services struct {
	Registry *Registry
}

// New wires the registry on the Postgres pool from the Application container.
// The config must have passed config.ValidateMarketplace.
func New(a *app.Application) *Services {
	return &Services{
		Registry: NewRegistry(a.Db, postgres.NewAssetRepository(a.Db), CollectionFromConfig(a.Config), a.Logger),
	}
}

// NewInMemory wires the registry on world.
func NewInMemory(world *memtx.World, collection models.Collection, log logger.Logger) *Services {
	return &Services{
		Registry: NewRegistry(world, memory.NewAssetRepository(world), collection, log),
	}
}

// CollectionFromConfig returns the configured collection.
func CollectionFromConfig(cfg *config.Config) models.Collection {
	return models.Collection{
		Contract: identity.MustParseAddress(cfg.AssetContractAddress),
		Name:     cfg.AssetCollectionName,
		Symbol:   cfg.AssetCollectionSymbol,
	}
}
