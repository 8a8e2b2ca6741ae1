package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-console/internal/domain/user"
)

// listGenerationKey holds a counter that is part of every list key, so one
// INCR invalidates all cached listings.
const listGenerationKey = "users:list:gen"

// UserList is a cached listing page.
type UserList struct {
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
}

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id int64) error

	// GetList retrieves a cached listing, or nil on a miss.
	GetList(ctx context.Context, key string) (*UserList, error)

	// SetList stores a listing under key.
	SetList(ctx context.Context, key string, list *UserList) error

	// InvalidateLists drops every cached listing.
	InvalidateLists(ctx context.Context) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (c *RedisUserCache) cacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func (c *RedisUserCache) listKey(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, listGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("users:list:%d:%s", gen, key), nil
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	hit, err := c.getJSON(ctx, c.cacheKey(id), &user)
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}
	if !hit {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &user, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	if err := c.setJSON(ctx, c.cacheKey(user.ID), user); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}

// GetList retrieves a cached listing.
func (c *RedisUserCache) GetList(ctx context.Context, key string) (*UserList, error) {
	full, err := c.listKey(ctx, key)
	if err != nil {
		return nil, err
	}

	var list UserList
	hit, err := c.getJSON(ctx, full, &list)
	if err != nil {
		c.log.Error("failed to get list from cache", zap.String("key", full), zap.Error(err))
		return nil, err
	}
	if !hit {
		c.log.Debug("list cache miss", zap.String("key", full))
		return nil, nil
	}
	return &list, nil
}

// SetList stores a listing with TTL.
func (c *RedisUserCache) SetList(ctx context.Context, key string, list *UserList) error {
	if list == nil {
		return errors.New("cannot cache nil list")
	}
	full, err := c.listKey(ctx, key)
	if err != nil {
		return err
	}
	if err := c.setJSON(ctx, full, list); err != nil {
		c.log.Error("failed to set list cache", zap.String("key", full), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateLists bumps the list generation. Stale listings expire by TTL.
func (c *RedisUserCache) InvalidateLists(ctx context.Context) error {
	if err := c.client.Incr(ctx, listGenerationKey).Err(); err != nil {
		c.log.Error("failed to invalidate list cache", zap.Error(err))
		return err
	}
	return nil
}

func (c *RedisUserCache) getJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("unmarshal cached value: %w", err)
	}
	return true, nil
}

func (c *RedisUserCache) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value for cache: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
