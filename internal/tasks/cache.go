package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache keeps per-user task lists in Redis behind a version counter.
// Mutations bump the owner's version, orphaning every key built against the
// old one. A nil Cache is valid and always falls through to the loader.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(userID string) string {
	return "tasks:version:" + userID
}

// listKey composes the list cache key with the user's current version.
func (c *Cache) listKey(ctx context.Context, userID string) (string, error) {
	ver, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if err == redis.Nil {
		ver = 1
		if err := c.client.Set(ctx, versionKey(userID), ver, 0).Err(); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("tasks:list:%s:%d", userID, ver), nil
}

// FetchList returns the user's cached task list, populating it through the
// loader on a miss. Concurrent misses for the same user collapse into one
// loader call. Redis failures degrade to the loader, never to the caller.
func (c *Cache) FetchList(ctx context.Context, userID string, loader func(context.Context) ([]Task, error)) ([]Task, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key, err := c.listKey(ctx, userID)
	if err != nil {
		return loader(ctx)
	}

	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []Task
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		list, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(list); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]Task), nil
}

// Bump invalidates the user's cached list by incrementing their version.
func (c *Cache) Bump(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(userID)).Err()
}
