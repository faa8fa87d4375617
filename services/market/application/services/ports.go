package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/identity"
)

// AssetRegistry moves custody of a token. Implementations must join the
// transaction carried by ctx and fail without side effects when the transfer
// is not permitted.
type AssetRegistry interface {
	Transfer(ctx context.Context, contract identity.Address, tokenID uint64, from, to, operator identity.Address) error
}

// Funds moves base units between accounts inside the transaction carried by ctx.
type Funds interface {
	Debit(ctx context.Context, addr identity.Address, amount decimal.Decimal) error
	Credit(ctx context.Context, addr identity.Address, amount decimal.Decimal) error
}

// EventPublisher emits a ledger event so that it becomes visible only if the
// transaction carried by ctx commits.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.Event) error
}
