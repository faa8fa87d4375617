package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/events"
)

// ErrNoTransaction is returned when an event is published outside WithinTx.
var ErrNoTransaction = errors.New("outbox publish requires a transaction")

// OutboxPublisher writes ledger events to the Watermill SQL outbox on the
// transaction carried by ctx, so an event exists if and only if its state
// change committed. The forwarder started by the API process relays them.
type OutboxPublisher struct {
	bus *events.EventBus
}

// NewOutboxPublisher returns an OutboxPublisher over bus.
func NewOutboxPublisher(bus *events.EventBus) *OutboxPublisher {
	return &OutboxPublisher{bus: bus}
}

// Publish appends evt to the outbox.
func (p *OutboxPublisher) Publish(ctx context.Context, evt events.Event) error {
	tx, ok := database.TxFromCtx(ctx)
	if !ok {
		return fmt.Errorf("publish %s: %w", evt.EventTopic(), ErrNoTransaction)
	}
	msg, err := events.NewMessage(ctx, evt)
	if err != nil {
		return err
	}
	pub, err := p.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	if err := pub.Publish(evt.EventTopic(), msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.EventTopic(), err)
	}
	return nil
}
