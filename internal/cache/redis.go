package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func locationKey(realm, name string) string {
	return "document:location:" + realm + "/" + name
}

var _ LocationCache = (*RedisLocationCache)(nil)

// RedisLocationCache keeps document locations in redis with a TTL.
type RedisLocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocationCache(addr string, ttl time.Duration) *RedisLocationCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisLocationCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisLocationCache) Get(ctx context.Context, realm, name string) (*Location, error) {
	value, err := r.client.Get(ctx, locationKey(realm, name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var location Location
	if err := json.Unmarshal([]byte(value), &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *RedisLocationCache) Set(ctx context.Context, realm, name string, location *Location) error {
	value, err := json.Marshal(location)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, locationKey(realm, name), value, r.ttl).Err()
}

func (r *RedisLocationCache) Delete(ctx context.Context, realm, name string) error {
	return r.client.Del(ctx, locationKey(realm, name)).Err()
}
