package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MarketItemTTL is the time-to-live for cached listings. Sold items never change,
	// so the TTL only bounds memory.
	MarketItemTTL = 24 * time.Hour

	marketItemKeyPrefix = "market:item"
)

// ErrCorruptEntry is returned by Get when a cached hash cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// CachedMarketItem is the denormalized listing read model stored in Redis.
// Amounts are base-unit decimal strings; addresses are lowercase hex.
type CachedMarketItem struct {
	ID            int64
	AssetContract string
	AssetID       uint64
	Price         string
	Total         string
	Seller        string
	Buyer         string
	Sold          bool
	ListedAt      time.Time
	SoldAt        time.Time
}

// MarketItemCache provides structured read/write operations for listing cache entries.
// Key format: "market:item:{itemID}"
type MarketItemCache struct {
	client *RedisClient
}

// NewMarketItemCache creates a new MarketItemCache backed by the given RedisClient.
func NewMarketItemCache(r *RedisClient) *MarketItemCache {
	return &MarketItemCache{client: r}
}

// Get retrieves a cached listing by item ID.
// Returns redis.Nil when the key does not exist or has expired, and
// ErrCorruptEntry when the stored fields do not decode.
func (c *MarketItemCache) Get(ctx context.Context, itemID int64) (*CachedMarketItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	item, err := decodeMarketItem(vals)
	if err != nil {
		return nil, fmt.Errorf("%w: item %d: %w", ErrCorruptEntry, itemID, err)
	}
	return item, nil
}

// Set writes a listing as a Redis hash with MarketItemTTL.
// Uses a pipeline to set all fields and the TTL in one round trip.
func (c *MarketItemCache) Set(ctx context.Context, item *CachedMarketItem) error {
	key := c.key(item.ID)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key, encodeMarketItem(item)...)
	pipe.Expire(ctx, key, MarketItemTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// SetUnlessSold writes item only when the cached entry is absent or unsold, so a
// late unsold snapshot never overwrites a recorded sale. Uses WATCH for
// optimistic locking; a concurrent write to the key makes it return redis.TxFailedErr.
func (c *MarketItemCache) SetUnlessSold(ctx context.Context, item *CachedMarketItem) error {
	key := c.key(item.ID)
	err := c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		sold, err := tx.HGet(ctx, key, "sold").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if sold == "true" {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encodeMarketItem(item)...)
			pipe.Expire(ctx, key, MarketItemTTL)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("cache set unless sold: %w", err)
	}
	return nil
}

// Delete removes a cached listing. Callers use it to evict entries that fail to decode.
func (c *MarketItemCache) Delete(ctx context.Context, itemID int64) error {
	if err := c.client.Client().Del(ctx, c.key(itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *MarketItemCache) key(itemID int64) string {
	return fmt.Sprintf("%s:%d", marketItemKeyPrefix, itemID)
}

func encodeMarketItem(item *CachedMarketItem) []any {
	soldAt := ""
	if !item.SoldAt.IsZero() {
		soldAt = item.SoldAt.UTC().Format(time.RFC3339Nano)
	}
	return []any{
		"id", strconv.FormatInt(item.ID, 10),
		"asset_contract", item.AssetContract,
		"asset_id", strconv.FormatUint(item.AssetID, 10),
		"price", item.Price,
		"total", item.Total,
		"seller", item.Seller,
		"buyer", item.Buyer,
		"sold", strconv.FormatBool(item.Sold),
		"listed_at", item.ListedAt.UTC().Format(time.RFC3339Nano),
		"sold_at", soldAt,
	}
}

func decodeMarketItem(vals map[string]string) (*CachedMarketItem, error) {
	id, err := strconv.ParseInt(vals["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	assetID, err := strconv.ParseUint(vals["asset_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse asset_id: %w", err)
	}
	sold, err := strconv.ParseBool(vals["sold"])
	if err != nil {
		return nil, fmt.Errorf("cache parse sold: %w", err)
	}
	listedAt, err := time.Parse(time.RFC3339Nano, vals["listed_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse listed_at: %w", err)
	}
	var soldAt time.Time
	if s := vals["sold_at"]; s != "" {
		if soldAt, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return nil, fmt.Errorf("cache parse sold_at: %w", err)
		}
	}
	return &CachedMarketItem{
		ID:            id,
		AssetContract: vals["asset_contract"],
		AssetID:       assetID,
		Price:         vals["price"],
		Total:         vals["total"],
		Seller:        vals["seller"],
		Buyer:         vals["buyer"],
		Sold:          sold,
		ListedAt:      listedAt,
		SoldAt:        soldAt,
	}, nil
}
