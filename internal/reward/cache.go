package reward

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogKey = "recircle:rewards:catalog"

// CatalogCache is a read-through Redis cache in front of the reward catalog.
// The catalog is read on every rewards page and changes rarely. Cache
// failures fall back to the store; they are logged, never surfaced.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCatalogCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached catalog, or ok=false on a miss.
func (c *CatalogCache) Get(ctx context.Context) ([]Reward, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("reward cache get failed", "error", err)
		}
		return nil, false
	}
	var rewards []Reward
	if err := json.Unmarshal(raw, &rewards); err != nil {
		c.logger.Warn("reward cache decode failed", "error", err)
		return nil, false
	}
	return rewards, true
}

// Set stores the catalog with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, rewards []Reward) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(rewards)
	if err != nil {
		c.logger.Warn("reward cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("reward cache set failed", "error", err)
	}
}

// Invalidate drops the cached catalog after an admin upsert.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		c.logger.Warn("reward cache invalidate failed", "error", err)
	}
}
