package programs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eligibility-workers/internal/common/database"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "eligibility:candidates"

// CacheKey is the Redis key holding a jurisdiction's snapshot for a year.
func CacheKey(jurisdiction string, year int) string {
	return fmt.Sprintf("%s:%s:%d", cacheKeyPrefix, jurisdiction, year)
}

// Cache keeps jurisdiction snapshots in Redis for ttl.
type Cache struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewCache(client *database.RedisClient, ttl time.Duration) *Cache {
	return &Cache{redis: client, ttl: ttl}
}

// Get returns the cached snapshot. A miss is (nil, nil).
func (c *Cache) Get(ctx context.Context, jurisdiction string, year int) (*Snapshot, error) {
	val, err := c.redis.Client.Get(ctx, CacheKey(jurisdiction, year)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("decode cached snapshot %s: %w", CacheKey(jurisdiction, year), err)
	}
	return &snap, nil
}

func (c *Cache) Set(ctx context.Context, snap Snapshot, year int) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.redis.Client.Set(ctx, CacheKey(snap.Jurisdiction, year), data, c.ttl).Err()
}

// Invalidate drops every cached year for jurisdiction, or for all
// jurisdictions when it is empty.
func (c *Cache) Invalidate(ctx context.Context, jurisdiction string) (int, error) {
	if jurisdiction == "" {
		jurisdiction = "*"
	}
	return c.redis.DeleteByPattern(ctx, fmt.Sprintf("%s:%s:*", cacheKeyPrefix, jurisdiction))
}
