package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"vitadash-reward-service/internal/domain"
)

// CatalogLoader fetches the badge catalog from a backing store.
type CatalogLoader interface {
	LoadBadges(ctx context.Context) ([]domain.Badge, error)
}

// CatalogCache caches the badge catalog in Redis (one hash, a field
// per badge holding its JSON) and falls back to a loader on cache miss.
// The catalog is read-mostly: expiry plus jitter is the reload
// lifecycle.
type CatalogCache struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

const catalogKey = "badges:catalog"

// NewCatalogCache builds the cache.
func NewCatalogCache(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Badges returns the full catalog, reloading through singleflight on a
// cache miss so concurrent misses hit the backing store once.
func (c *CatalogCache) Badges(ctx context.Context) ([]domain.Badge, error) {
	fields, err := c.client.HGetAll(ctx, catalogKey).Result()
	if err == nil && len(fields) > 0 {
		return decodeBadges(fields)
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		fields, err := c.client.HGetAll(ctx, catalogKey).Result()
		if err == nil && len(fields) > 0 {
			return decodeBadges(fields)
		}

		badges, err := c.loader.LoadBadges(ctx)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for _, badge := range badges {
			raw, err := json.Marshal(badge)
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, catalogKey, badge.ID, raw)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, catalogKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return badges, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Badge), nil
}

// Badge looks up one badge by ID.
func (c *CatalogCache) Badge(ctx context.Context, badgeID string) (domain.Badge, error) {
	raw, err := c.client.HGet(ctx, catalogKey, badgeID).Result()
	if err == nil {
		var badge domain.Badge
		if err := json.Unmarshal([]byte(raw), &badge); err == nil {
			return badge, nil
		}
	}

	badges, err := c.Badges(ctx)
	if err != nil {
		return domain.Badge{}, err
	}
	for _, badge := range badges {
		if badge.ID == badgeID {
			return badge, nil
		}
	}
	return domain.Badge{}, domain.ErrBadgeNotFound
}

func decodeBadges(fields map[string]string) ([]domain.Badge, error) {
	badges := make([]domain.Badge, 0, len(fields))
	for _, raw := range fields {
		var badge domain.Badge
		if err := json.Unmarshal([]byte(raw), &badge); err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}
	return badges, nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
