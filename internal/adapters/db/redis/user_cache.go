package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/okravchenko/contactbook/internal/domain/model"
)

const keyPrefix = "user:"

// RedisUserCache keeps username -> user snapshots with a TTL. It is an
// accelerator for the hot authentication path, never a source of truth:
// entries are reclaimed only by TTL expiry, mutations do not invalidate.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUserCache(client *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl}
}

// snapshot is the wire form of a cached user. The model's json tags hide
// credential fields from API responses, so the cache keeps its own encoding.
type snapshot struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	Role           string    `json:"role"`
	Confirmed      bool      `json:"confirmed"`
	Avatar         string    `json:"avatar"`
	RefreshToken   *string   `json:"refresh_token"`
	CreatedAt      time.Time `json:"created_at"`
}

func (c *RedisUserCache) Get(ctx context.Context, username string) (model.User, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+username).Bytes()
	switch {
	case err == redis.Nil:
		return model.User{}, false, nil
	case err != nil:
		return model.User{}, false, err
	}

	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		// Corrupt entry: treat as a miss, the store remains authoritative.
		return model.User{}, false, nil
	}
	return model.User{
		ID:             s.ID,
		Username:       s.Username,
		Email:          s.Email,
		HashedPassword: s.HashedPassword,
		Role:           model.Role(s.Role),
		Confirmed:      s.Confirmed,
		Avatar:         s.Avatar,
		RefreshToken:   s.RefreshToken,
		CreatedAt:      s.CreatedAt,
	}, true, nil
}

func (c *RedisUserCache) Put(ctx context.Context, username string, user model.User) error {
	raw, err := json.Marshal(snapshot{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Role:           string(user.Role),
		Confirmed:      user.Confirmed,
		Avatar:         user.Avatar,
		RefreshToken:   user.RefreshToken,
		CreatedAt:      user.CreatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+username, raw, c.ttl).Err()
}
