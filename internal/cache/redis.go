package cache

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"
)

const (
    denylistPrefix = "denylist:"
    userPrefix     = "user:"
)

// RedisStore backs both the revocation denylist and the user cache with a
// shared Redis instance.
type RedisStore struct {
    client  *redis.Client
    userTTL time.Duration
}

func NewRedisStore(url string, userTTL time.Duration) (*RedisStore, error) {
    opts, err := redis.ParseURL(url)
    if err != nil {
        return nil, fmt.Errorf("parse redis url: %w", err)
    }
    client := redis.NewClient(opts)
    if err := client.Ping(context.Background()).Err(); err != nil {
        return nil, fmt.Errorf("ping redis: %w", err)
    }
    return &RedisStore{client: client, userTTL: userTTL}, nil
}

func (s *RedisStore) Close() error {
    return s.client.Close()
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
    ttl := time.Until(until)
    if ttl <= 0 {
        return nil
    }
    // SET NX keeps the first (longest) TTL when the same ID is revoked twice.
    return s.client.SetNX(ctx, denylistPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
    n, err := s.client.Exists(ctx, denylistPrefix+tokenID).Result()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, payload []byte) error {
    return s.client.Set(ctx, userPrefix+key, payload, s.userTTL).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
    val, err := s.client.Get(ctx, userPrefix+key).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, ErrCacheMiss
    }
    if err != nil {
        return nil, err
    }
    return val, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
    return s.client.Del(ctx, userPrefix+key).Err()
}
