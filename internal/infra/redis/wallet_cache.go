package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// WalletCache keeps derived balances in Redis so replica processes
// skip full ledger replays. Entries expire; the ledger treats a miss
// as a replay, and drift between cache and replay is surfaced as an
// invariant violation upstream.
type WalletCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWalletCache builds the cache.
func NewWalletCache(client *redis.Client, ttl time.Duration) *WalletCache {
	return &WalletCache{client: client, ttl: ttl}
}

func (c *WalletCache) key(userID string) string {
	return "wallet:balance:" + userID
}

// Balance returns the cached balance and whether one is present.
func (c *WalletCache) Balance(ctx context.Context, userID string) (int, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	balance, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

// SetBalance stores a derived balance with the cache TTL.
func (c *WalletCache) SetBalance(ctx context.Context, userID string, balance int) error {
	return c.client.Set(ctx, c.key(userID), balance, c.ttl).Err()
}

// DropBalance evicts one user's cached balance.
func (c *WalletCache) DropBalance(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}
