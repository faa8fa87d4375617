package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"

	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	domainevents "github.com/omnik-labs/marketplace/services/market/domain/events"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
)

// CacheProjector keeps the item read model current from ledger events.
// Handlers are idempotent and safe to run out of order: an Offered delivered
// after its Bought never marks the item unsold again.
type CacheProjector struct {
	cache      ItemCache
	feePercent int64
	log        logger.Logger
}

// NewCacheProjector returns a projector writing to cache.
func NewCacheProjector(cache ItemCache, feePercent int64, log logger.Logger) *CacheProjector {
	return &CacheProjector{cache: cache, feePercent: feePercent, log: log}
}

// HandleOffered caches a freshly listed item.
func (p *CacheProjector) HandleOffered(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[domainevents.Offered](msg)
	if err != nil {
		p.log.ErrorContext(ctx, "dropping malformed offered event", "message_id", msg.UUID, "error", err)
		return nil
	}
	price, err := decimal.NewFromString(evt.Price)
	if err != nil {
		p.log.ErrorContext(ctx, "dropping offered event with bad price", "item_id", evt.ItemID, "error", err)
		return nil
	}
	item := models.NewItem(evt.ItemID,
		models.AssetRef{Contract: identity.Address(evt.AssetContract), TokenID: evt.AssetID},
		price, identity.Address(evt.Seller), evt.OccurredAt)

	if err := p.cache.Put(ctx, item, p.feePercent); err != nil {
		return fmt.Errorf("cache offered item %d: %w", evt.ItemID, err)
	}
	p.log.DebugContext(ctx, "item cached", "item_id", evt.ItemID)
	return nil
}

// HandleBought marks a cached item sold. Items not in the cache are left for
// the next read to load from the ledger.
func (p *CacheProjector) HandleBought(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[domainevents.Bought](msg)
	if err != nil {
		p.log.ErrorContext(ctx, "dropping malformed bought event", "message_id", msg.UUID, "error", err)
		return nil
	}
	item, err := p.cache.Get(ctx, evt.ItemID)
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cached item %d: %w", evt.ItemID, err)
	}
	if item.Sold {
		return nil
	}

	item.MarkSold(identity.Address(evt.Buyer), evt.OccurredAt)
	if err := p.cache.Put(ctx, item, p.feePercent); err != nil {
		return fmt.Errorf("cache bought item %d: %w", evt.ItemID, err)
	}
	p.log.DebugContext(ctx, "cached item sold", "item_id", evt.ItemID, "buyer", evt.Buyer)
	return nil
}
