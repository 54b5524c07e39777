package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"persona-auth/internal/auth"
	"persona-auth/internal/logger"

	"github.com/redis/go-redis/v9"
)

// CachedResolver fronts another Resolver with a Redis lookup cache.
// Cache failures are logged and fall through to the wrapped resolver.
type CachedResolver struct {
	next   Resolver
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCachedResolver(next Resolver, client *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		next:   next,
		client: client,
		prefix: "identity:",
		ttl:    ttl,
	}
}

func (c *CachedResolver) key(identity *auth.Identity) string {
	return fmt.Sprintf("%s%s:%s:%s",
		c.prefix,
		identity.Provider,
		identity.Issuer,
		strings.ToLower(identity.Email),
	)
}

func (c *CachedResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (string, error) {

	if identity == nil {
		return "", ErrNilIdentity
	}

	key := c.key(identity)

	userID, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return userID, nil
	}
	if err != redis.Nil {
		logger.Warn("identity cache read failed", map[string]any{
			"error": err.Error(),
		})
	}

	userID, err = c.next.Resolve(ctx, identity)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, userID, c.ttl).Err(); err != nil {
		logger.Warn("identity cache write failed", map[string]any{
			"error": err.Error(),
		})
	}

	return userID, nil
}
