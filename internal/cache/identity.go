package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/penblog/penblog/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved token identities.
	identityCachePrefix = "auth:identity:"
	// DefaultIdentityTTL caps how long a resolved identity is reused.
	DefaultIdentityTTL = 5 * time.Minute
)

// cachedIdentity represents an identity stored in Redis.
type cachedIdentity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// GetIdentity retrieves a cached identity by token hash.
// Returns nil on a miss or a corrupted entry.
func (c *Cache) GetIdentity(ctx context.Context, tokenHash string) (*model.Identity, error) {
	data, err := c.client.Get(ctx, identityCachePrefix+tokenHash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil || cached.UserID == "" {
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{UserID: cached.UserID, Email: cached.Email}, nil
}

// SetIdentity caches an identity for ttl. Non-positive TTLs are ignored
// so an about-to-expire token is never cached.
func (c *Cache) SetIdentity(ctx context.Context, tokenHash string, identity *model.Identity, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cachedIdentity{UserID: identity.UserID, Email: identity.Email})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, identityCachePrefix+tokenHash, data, ttl).Err()
}

// DeleteIdentity removes a cached identity.
func (c *Cache) DeleteIdentity(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, identityCachePrefix+tokenHash).Err()
}
