package memory

import (
	"context"
	"sync"
)

// BalanceCache is a process-local wallet cache.
type BalanceCache struct {
	mu       sync.RWMutex
	balances map[string]int
}

// NewBalanceCache builds an empty cache.
func NewBalanceCache() *BalanceCache {
	return &BalanceCache{balances: make(map[string]int)}
}

// Balance returns the cached balance and whether one is present.
func (c *BalanceCache) Balance(_ context.Context, userID string) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	balance, ok := c.balances[userID]
	return balance, ok, nil
}

// SetBalance stores a derived balance.
func (c *BalanceCache) SetBalance(_ context.Context, userID string, balance int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[userID] = balance
	return nil
}

// DropBalance evicts a user's cached balance.
func (c *BalanceCache) DropBalance(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.balances, userID)
	return nil
}
