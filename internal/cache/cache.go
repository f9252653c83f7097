package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"codecrafting/internal/model"
)

const (
	roleKeyPrefix = "user_role:"
	roleTTL       = time.Hour
)

// Client caches user roles in redis but fails safe by swallowing
// connectivity errors: a missing or unreachable redis degrades every read
// to a miss and every write to a no-op. Callers fall back to the store.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// GetRole returns the cached role for a user, or "" on a miss.
func (c *Client) GetRole(ctx context.Context, userID string) model.Role {
	raw := c.get(ctx, roleKeyPrefix+userID)
	return model.Role(raw)
}

// SetRole stores a user's role for the role TTL.
func (c *Client) SetRole(ctx context.Context, userID string, role model.Role) {
	c.set(ctx, roleKeyPrefix+userID, string(role), roleTTL)
}

// InvalidateRole drops a user's cached role after a role change.
func (c *Client) InvalidateRole(ctx context.Context, userID string) {
	c.delete(ctx, roleKeyPrefix+userID)
}

// get returns the value or "" if missing or redis unavailable.
func (c *Client) get(ctx context.Context, key string) string {
	if c == nil || c.client == nil {
		return ""
	}
	res, err := c.client.Get(ctx, key).Result()
	if err != nil {
		// redis.Nil and connectivity errors both read as a miss
		return ""
	}
	return res
}

// set stores value with TTL, ignoring redis errors.
func (c *Client) set(ctx context.Context, key, value string, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

// delete removes a key, ignoring redis errors.
func (c *Client) delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, key).Err()
}
