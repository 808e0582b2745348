package redis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ikkim/cart-backend/config"
	"github.com/ikkim/cart-backend/pkg/logger"
	"github.com/ikkim/cart-backend/pkg/pricing"
	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "cart:summary:"

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// SummaryCache stores computed breakdowns keyed by the ordered item
// sequence. Equal sequences always price the same, so entries never go
// stale; the TTL only bounds memory.
type SummaryCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSummaryCache(rdb redis.Cmdable, ttl time.Duration) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: ttl}
}

// Lookup reports whether a breakdown is cached for items.
func (c *SummaryCache) Lookup(ctx context.Context, items []pricing.Item) (pricing.Breakdown, bool, error) {
	var breakdown pricing.Breakdown

	data, err := c.rdb.Get(ctx, SummaryKey(items)).Bytes()
	if errors.Is(err, redis.Nil) {
		return breakdown, false, nil
	}
	if err != nil {
		return breakdown, false, err
	}

	if err := json.Unmarshal(data, &breakdown); err != nil {
		return pricing.Breakdown{}, false, fmt.Errorf("corrupt summary entry: %w", err)
	}

	logger.Debug("Summary cache hit", map[string]interface{}{
		"items": len(items),
	})
	return breakdown, true, nil
}

// Store caches breakdown for items.
func (c *SummaryCache) Store(ctx context.Context, items []pricing.Item, breakdown pricing.Breakdown) error {
	data, err := json.Marshal(breakdown)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, SummaryKey(items), data, c.ttl).Err()
}

// SummaryKey hashes the exact price bits and quantity of every item, in
// order.
func SummaryKey(items []pricing.Item) string {
	h := sha256.New()
	var buf [16]byte
	for _, item := range items {
		binary.BigEndian.PutUint64(buf[:8], math.Float64bits(item.Price))
		binary.BigEndian.PutUint64(buf[8:], uint64(item.Quantity))
		h.Write(buf[:])
	}
	return summaryKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
