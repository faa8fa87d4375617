package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/omnik-labs/marketplace/pkg/cache"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
	domainsvcs "github.com/omnik-labs/marketplace/services/market/domain/services"
)

// ErrCacheMiss is returned by ItemCache.Get when the item is not cached.
var ErrCacheMiss = errors.New("item not cached")

// ItemCache is the listing read model.
type ItemCache interface {
	Get(ctx context.Context, id int64) (*models.Item, error)
	// Put stores item; an unsold snapshot never replaces a cached sale.
	Put(ctx context.Context, item *models.Item, feePercent int64) error
}

// RedisItemCache adapts pkg/cache.MarketItemCache to ItemCache.
type RedisItemCache struct {
	c *pkgcache.MarketItemCache
}

// NewRedisItemCache returns an ItemCache stored in Redis.
func NewRedisItemCache(c *pkgcache.MarketItemCache) *RedisItemCache {
	return &RedisItemCache{c: c}
}

// Get returns the cached item. An entry that no longer decodes is evicted and
// reported as a miss so the caller reloads it from the store.
func (r *RedisItemCache) Get(ctx context.Context, id int64) (*models.Item, error) {
	cached, err := r.c.Get(ctx, id)
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case errors.Is(err, pkgcache.ErrCorruptEntry):
		return nil, r.evict(ctx, id, err)
	case err != nil:
		return nil, err
	}
	item, err := FromCached(cached)
	if err != nil {
		return nil, r.evict(ctx, id, err)
	}
	return item, nil
}

func (r *RedisItemCache) evict(ctx context.Context, id int64, cause error) error {
	if err := r.c.Delete(ctx, id); err != nil {
		return fmt.Errorf("evict after %w: %w", cause, err)
	}
	return ErrCacheMiss
}

func (r *RedisItemCache) Put(ctx context.Context, item *models.Item, feePercent int64) error {
	cached := ToCached(item, feePercent)
	if item.Sold {
		return r.c.Set(ctx, cached)
	}
	return r.c.SetUnlessSold(ctx, cached)
}

// ToCached flattens item into the Redis read model.
func ToCached(item *models.Item, feePercent int64) *pkgcache.CachedMarketItem {
	return &pkgcache.CachedMarketItem{
		ID:            item.ID,
		AssetContract: item.Asset.Contract.String(),
		AssetID:       item.Asset.TokenID,
		Price:         item.Price.String(),
		Total:         domainsvcs.Total(item.Price, feePercent).String(),
		Seller:        item.Seller.String(),
		Buyer:         item.Buyer.String(),
		Sold:          item.Sold,
		ListedAt:      item.ListedAt,
		SoldAt:        item.SoldAt,
	}
}

// FromCached rebuilds an item from the Redis read model.
func FromCached(c *pkgcache.CachedMarketItem) (*models.Item, error) {
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return nil, fmt.Errorf("cached item %d price: %w", c.ID, err)
	}
	return &models.Item{
		ID:       c.ID,
		Asset:    models.AssetRef{Contract: identity.Address(c.AssetContract), TokenID: c.AssetID},
		Price:    price,
		Seller:   identity.Address(c.Seller),
		Sold:     c.Sold,
		Buyer:    identity.Address(c.Buyer),
		ListedAt: c.ListedAt,
		SoldAt:   c.SoldAt,
	}, nil
}
