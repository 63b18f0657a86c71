package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ourtime-api/core/constants"
	"ourtime-api/core/logger"
)

// Cache wraps the Redis client used for token blacklisting, login throttling
// and the short-lived dashboard read cache.
type Cache struct {
	client *redis.Client
}

var instance *Cache

func GetCache() *Cache {
	return instance
}

func InitCache(addr string, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis", "error", err, "addr", addr)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	instance = &Cache{client: client}
	logger.Info("Redis initialized successfully", "addr", addr, "db", db)
	return instance, nil
}

// ===================== Token blacklist =====================

func (c *Cache) AddToTokenBlacklist(ctx context.Context, token string) error {
	return c.client.Set(ctx, constants.RedisKeyTokenBlacklist+token, "1", constants.TokenBlacklistTTL).Err()
}

func (c *Cache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, constants.RedisKeyTokenBlacklist+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ===================== Login throttling =====================

func (c *Cache) IncrementLoginAttempt(ctx context.Context, identifier string) (int64, error) {
	key := constants.RedisKeyLoginAttempt + identifier
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		_ = c.client.Expire(ctx, key, constants.LoginAttemptTTL).Err()
	}
	return n, nil
}

func (c *Cache) ResetLoginAttempts(ctx context.Context, identifier string) error {
	return c.client.Del(ctx, constants.RedisKeyLoginAttempt+identifier).Err()
}

// ===================== Ledger version / dashboard cache =====================

// LedgerVersion returns the monotonically increasing version of an event's
// availability ledger. Missing keys read as 0.
func (c *Cache) LedgerVersion(ctx context.Context, eventID int64) (int64, error) {
	v, err := c.client.Get(ctx, ledgerVersionKey(eventID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// BumpLedgerVersion invalidates cached aggregations for the event by moving
// its ledger version forward.
func (c *Cache) BumpLedgerVersion(ctx context.Context, eventID int64) error {
	return c.client.Incr(ctx, ledgerVersionKey(eventID)).Err()
}

// GetDashboard returns the cached dashboard JSON for the event at the given
// ledger version, or "" when absent.
func (c *Cache) GetDashboard(ctx context.Context, eventID int64, version int64) (string, error) {
	v, err := c.client.Get(ctx, dashboardKey(eventID, version)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func (c *Cache) SetDashboard(ctx context.Context, eventID int64, version int64, payload string) error {
	return c.client.Set(ctx, dashboardKey(eventID, version), payload, constants.DashboardCacheTTL).Err()
}

func ledgerVersionKey(eventID int64) string {
	return fmt.Sprintf("%s%d", constants.RedisKeyLedgerVersion, eventID)
}

func dashboardKey(eventID int64, version int64) string {
	return fmt.Sprintf("%s%d:v%d", constants.RedisKeyDashboard, eventID, version)
}
