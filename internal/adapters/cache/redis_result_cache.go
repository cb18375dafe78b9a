package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/obs"
)

// RedisResultCache stores built profiles as msgpack values with a TTL.
type RedisResultCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisResultCache wraps client. A zero ttl keeps entries until evicted.
func NewRedisResultCache(client *redis.Client, prefix string, ttl time.Duration) (*RedisResultCache, error) {
	if client == nil {
		return nil, errors.New("redis result cache: client is nil")
	}
	return &RedisResultCache{client: client, prefix: prefix, ttl: ttl}, nil
}

// DialRedis parses a redis:// URL and verifies the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("dial redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dial redis: ping: %w", err)
	}
	return client, nil
}

func (c *RedisResultCache) Get(ctx context.Context, key string) (_ *domain.ProfileResult, _ bool, err error) {
	defer obs.Time(ctx, "profile.redis.Get")(&err)

	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get redis result cache %q: %w", key, err)
	}

	res, err := decodeResult(b)
	if err != nil {
		return nil, false, fmt.Errorf("get redis result cache %q: %w", key, err)
	}
	return res, true, nil
}

func (c *RedisResultCache) Put(ctx context.Context, key string, res *domain.ProfileResult) (err error) {
	defer obs.Time(ctx, "profile.redis.Put")(&err)

	if res == nil {
		return errors.New("put redis result cache: result is nil")
	}

	b, err := encodeResult(res)
	if err != nil {
		return fmt.Errorf("put redis result cache %q: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("put redis result cache %q: %w", key, err)
	}
	return nil
}
