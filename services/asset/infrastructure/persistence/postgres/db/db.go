// Package db holds the asset registry's SQL queries.
package db

import (
	"github.com/omnik-labs/marketplace/pkg/database"
)

// Queries runs registry queries on a pool or a transaction.
type Queries struct {
	db database.DBTX
}

// New returns Queries bound to db.
func New(db database.DBTX) *Queries {
	return &Queries{db: db}
}
