package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	KeyApprovedRequests = "donation_requests:approved"
	keyRequestPrefix    = "donation_requests:"

	DefaultTTL = 5 * time.Minute
)

func KeyRequest(id string) string {
	return keyRequestPrefix + id
}

// RequestCache caches read models of donation requests. Misses and backend
// errors both report false; the caller then reads from the database.
type RequestCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, keys ...string)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func ConnectRedis(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) RequestCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("redis get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warnf("redis decode %s: %v", key, err)
		return false
	}
	return true
}

func (c *redisCache) Set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warnf("redis encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warnf("redis set %s: %v", key, err)
	}
}

func (c *redisCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warnf("redis del %v: %v", keys, err)
	}
}

type nopCache struct{}

// NewNopCache returns a cache that never hits.
func NewNopCache() RequestCache {
	return nopCache{}
}

func (nopCache) Get(context.Context, string, any) bool { return false }
func (nopCache) Set(context.Context, string, any)      {}
func (nopCache) Invalidate(context.Context, ...string) {}
