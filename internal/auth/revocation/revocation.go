// Package revocation keeps track of session tokens that were invalidated before their expiry
package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix     = "revoked:"
	userKeyPrefix = "revoked:user:"
)

// Revoker records revoked token ids
type Revoker interface {
	// Revoke marks the token id as revoked until the given time
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	// IsRevoked reports whether the token id was revoked
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// RevokeUserBefore revokes every token of the user issued before the given time.
	// The cutoff is kept for ttl, which should be the token lifetime.
	RevokeUserBefore(ctx context.Context, userID int, before time.Time, ttl time.Duration) error
	// RevokedBefore returns the user's token cutoff, or the zero time if there is none
	RevokedBefore(ctx context.Context, userID int) (time.Time, error)
}

// store is the subset of the redis client used by the revoker
type store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisRevoker struct {
	client store
	now    func() time.Time
}

// NewRedisRevoker creates a revoker backed by Redis keys that expire with the token
func NewRedisRevoker(client *redis.Client) Revoker {
	return newRedisRevoker(client)
}

func newRedisRevoker(client store) *redisRevoker {
	return &redisRevoker{client: client, now: time.Now}
}

func (r *redisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *redisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

func (r *redisRevoker) RevokeUserBefore(ctx context.Context, userID int, before time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	// JWT iat has second precision, so the cutoff does too
	if err := r.client.Set(ctx, userKey(userID), before.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

func (r *redisRevoker) RevokedBefore(ctx context.Context, userID int) (time.Time, error) {
	raw, err := r.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to check user token cutoff: %w", err)
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid user token cutoff %q: %w", raw, err)
	}
	return time.Unix(sec, 0), nil
}

func userKey(userID int) string {
	return userKeyPrefix + strconv.Itoa(userID)
}

type noopRevoker struct{}

// NewNoopRevoker creates a revoker that never remembers anything
func NewNoopRevoker() Revoker {
	return noopRevoker{}
}

func (noopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (noopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func (noopRevoker) RevokeUserBefore(context.Context, int, time.Time, time.Duration) error {
	return nil
}

func (noopRevoker) RevokedBefore(context.Context, int) (time.Time, error) { return time.Time{}, nil }
