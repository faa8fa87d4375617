package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMarketItemCache_EncodeDecode(t *testing.T) {
	listed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		item CachedMarketItem
	}{
		{
			name: "unsold listing has no buyer or sold_at",
			item: CachedMarketItem{
				ID: 1, AssetContract: "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512", AssetID: 3,
				Price: "2000000000000000000", Total: "2020000000000000000",
				Seller: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", ListedAt: listed,
			},
		},
		{
			name: "sold listing keeps buyer and sold_at",
			item: CachedMarketItem{
				ID: 2, AssetContract: "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512", AssetID: 4,
				Price: "1", Total: "1",
				Seller: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
				Buyer:  "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc",
				Sold:   true, ListedAt: listed, SoldAt: listed.Add(time.Hour),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := encodeMarketItem(&tt.item)
			vals := make(map[string]string, len(fields)/2)
			for i := 0; i < len(fields); i += 2 {
				vals[fields[i].(string)] = fields[i+1].(string)
			}
			got, err := decodeMarketItem(vals)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if *got != tt.item {
				t.Errorf("got %+v, want %+v", *got, tt.item)
			}
		})
	}
}

func TestMarketItemCache_DecodeRejectsCorruptEntry(t *testing.T) {
	_, err := decodeMarketItem(map[string]string{"id": "x"})
	if err == nil {
		t.Fatal("expected error for corrupt id")
	}
}

// Integration test, skipped unless REDIS_URL is set.
func TestMarketItemCacheIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	rc, err := NewRedisClient(newTestConfig(redisURL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close() //nolint:errcheck

	ctx := context.Background()
	c := NewMarketItemCache(rc)
	item := &CachedMarketItem{
		ID: 987654, AssetContract: "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512", AssetID: 1,
		Price: "100", Total: "101", Seller: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
		ListedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := c.Set(ctx, item); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Total != "101" || got.Sold {
		t.Errorf("unexpected cached item: %+v", got)
	}

	sold := *item
	sold.Sold, sold.Buyer, sold.SoldAt = true, "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc", item.ListedAt.Add(time.Minute)
	if err := c.Set(ctx, &sold); err != nil {
		t.Fatalf("Set sold: %v", err)
	}
	if err := c.SetUnlessSold(ctx, item); err != nil {
		t.Fatalf("SetUnlessSold: %v", err)
	}
	if got, err = c.Get(ctx, item.ID); err != nil || !got.Sold {
		t.Errorf("stale unsold write must not replace a sale: %+v, %v", got, err)
	}

	if err := c.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, item.ID); !errors.Is(err, redis.Nil) {
		t.Errorf("expected redis.Nil after delete, got %v", err)
	}
}

// Integration test, skipped unless REDIS_URL is set.
func TestMarketItemCache_GetReportsCorruptEntry(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	rc, err := NewRedisClient(newTestConfig(redisURL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close() //nolint:errcheck

	ctx := context.Background()
	c := NewMarketItemCache(rc)
	const id = 987655
	if err := rc.Client().HSet(ctx, c.key(id), "id", "not-a-number").Err(); err != nil {
		t.Fatalf("HSet: %v", err)
	}
	defer c.Delete(ctx, id) //nolint:errcheck

	if _, err := c.Get(ctx, id); !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("expected ErrCorruptEntry, got %v", err)
	}
}
