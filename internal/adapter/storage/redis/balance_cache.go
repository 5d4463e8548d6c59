package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// BalanceCache implements ports.BalanceCache using Redis. It only ever
// accelerates reads; the mutation engine goes straight to Postgres.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

// NewBalanceCache creates a new Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// Get retrieves a cached balance by player ID.
// Returns nil, nil if the key does not exist.
func (c *BalanceCache) Get(ctx context.Context, playerID uuid.UUID) (*decimal.Decimal, error) {
	val, err := c.client.Get(ctx, c.prefix+playerID.String()).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis balance get: %w", err)
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		return nil, fmt.Errorf("parse cached balance %q: %w", val, err)
	}
	return &balance, nil
}

// Set stores a balance with TTL.
func (c *BalanceCache) Set(ctx context.Context, playerID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+playerID.String(), balance.String(), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance so the next read refreshes from the store.
func (c *BalanceCache) Invalidate(ctx context.Context, playerID uuid.UUID) error {
	err := c.client.Del(ctx, c.prefix+playerID.String()).Err()
	if err != nil {
		return fmt.Errorf("redis balance del: %w", err)
	}
	return nil
}
