// Package denylist keeps revoked token ids until the tokens would expire anyway
package denylist

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "denylist:jti:"

// redisStore is the subset of the Redis client used by the denylist
type redisStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisDenylist struct {
	store redisStore
	now   func() time.Time
}

// NewRedisDenylist creates a denylist backed by Redis keys with a TTL
func NewRedisDenylist(client redisStore) *redisDenylist {
	return &redisDenylist{
		store: client,
		now:   time.Now,
	}
}

// Revoke marks the token id as revoked until expiresAt
func (d *redisDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		// Already expired, nothing to remember
		return nil
	}
	if err := d.store.Set(ctx, keyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id has been revoked
func (d *redisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.store.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

type noopDenylist struct{}

// NewNoopDenylist creates a denylist that never revokes anything.
// It is used when Redis is disabled.
func NewNoopDenylist() *noopDenylist {
	return &noopDenylist{}
}

// Revoke does nothing
func (noopDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return nil
}

// IsRevoked always reports false
func (noopDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, nil
}
