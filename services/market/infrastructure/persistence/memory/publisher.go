package memory

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
)

// Publisher forwards ledger events to a Watermill publisher (usually a
// gochannel.GoChannel) once the surrounding memtx transaction commits.
// Events of a rolled-back transaction are never delivered.
type Publisher struct {
	pub message.Publisher
	log logger.Logger
}

// NewPublisher returns a Publisher writing to pub.
func NewPublisher(pub message.Publisher, log logger.Logger) *Publisher {
	return &Publisher{pub: pub, log: log}
}

// Publish encodes evt now and delivers it after commit.
func (p *Publisher) Publish(ctx context.Context, evt events.Event) error {
	msg, err := events.NewMessage(ctx, evt)
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.EventTopic(), err)
	}
	memtx.AfterCommit(ctx, func() {
		if err := p.pub.Publish(evt.EventTopic(), msg); err != nil {
			p.log.ErrorContext(ctx, "deliver event", "topic", evt.EventTopic(), "event_id", evt.EventID(), "error", err)
		}
	})
	return nil
}
