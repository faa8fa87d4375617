package main

import (
	"context"
	"os"

	"github.com/omnik-labs/marketplace/migrations/marketplace"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)
	if err := migrator.RunMigrations(context.Background(), cfg.DatabaseURL, marketplace.FS, log); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
}
