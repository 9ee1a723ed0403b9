package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const takenTTL = 24 * time.Hour

// UsernameCache is an advisory fast path for uniqueness checks, backed by
// Redis. Key format: taken_username:<username>. Entries expire after takenTTL;
// the unique index on the user collection remains the authority, so an
// expired or missing entry only costs an extra store read.
type UsernameCache struct {
	client *redis.Client
}

// NewUsernameCache creates a UsernameCache wrapping the given Redis client.
func NewUsernameCache(client *redis.Client) *UsernameCache {
	return &UsernameCache{client: client}
}

// IsTaken reports whether this username was recently registered.
func (c *UsernameCache) IsTaken(ctx context.Context, username string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(username)).Result()
	if err != nil {
		return false, fmt.Errorf("username cache check: %w", err)
	}
	return n > 0, nil
}

// MarkTaken records that an account now holds this username (expires after takenTTL).
func (c *UsernameCache) MarkTaken(ctx context.Context, username string) error {
	return c.client.Set(ctx, c.key(username), "1", takenTTL).Err()
}

func (c *UsernameCache) key(username string) string {
	return "taken_username:" + username
}
