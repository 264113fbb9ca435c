package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-management-service/internal/domain/user"
	"user-management-service/pkg/logger"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id int64) error
}

// entry is the JSON document stored under a user key.
type entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key a user ID is cached under.
func Key(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, c.log)

	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	log.Debug("cache hit", zap.Int64("user_id", id))
	return &domain.User{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Age:       e.Age,
		CreatedAt: e.CreatedAt,
	}, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}
	log := logger.WithContext(ctx, c.log)

	data, err := json.Marshal(entry{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		log.Error("failed to marshal user for cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, Key(user.ID), data, c.ttl).Err(); err != nil {
		log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		logger.WithContext(ctx, c.log).Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	return nil
}
