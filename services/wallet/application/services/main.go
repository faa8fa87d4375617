package services

import (
	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	"github.com/omnik-labs/marketplace/services/wallet/infrastructure/persistence/memory"
	"github.com/omnik-labs/marketplace/services/wallet/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the wallet context.
type Services struct {
	Wallet *WalletService
}

// New wires the wallet services on the Postgres pool from the Application container.
func New(a *app.Application) *Services {
	return &Services{
		Wallet: NewWalletService(a.Db, postgres.NewBalanceRepository(a.Db), a.Logger),
	}
}

// NewInMemory wires the wallet services on world.
func NewInMemory(world *memtx.World, log logger.Logger) *Services {
	return &Services{
		Wallet: NewWalletService(world, memory.NewBalanceRepository(world), log),
	}
}
