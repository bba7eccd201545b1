// Package token holds the access-token denylist used to make logout take
// effect immediately instead of waiting for the JWT to expire.
package token

import (
	"context"
	"fmt"
	"time"

	"biteclub/internal/redis"
)

// Denylist records revoked access-token IDs until their natural expiry.
type Denylist interface {
	// Deny marks a token id as revoked for the given remaining lifetime.
	Deny(ctx context.Context, jti string, ttl time.Duration) error
	// IsDenied reports whether a token id has been revoked.
	IsDenied(ctx context.Context, jti string) (bool, error)
}

const denyKeyPrefix = "denied_token:"

// RedisDenylist stores revoked token ids as Redis keys with a TTL matching
// the token's remaining lifetime, so entries clean themselves up.
type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Deny(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to record.
		return nil
	}
	if err := d.client.Set(ctx, denyKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("deny token: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsDenied(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denyKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check denied token: %w", err)
	}
	return n > 0, nil
}
