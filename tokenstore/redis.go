package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultRedisKey is the key the token is stored under.
const DefaultRedisKey = "datisession:token"

// Redis keeps the token under a single key. Give each session its own key;
// two sessions sharing one key will overwrite each other.
type Redis struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedis connects to the server at redisURL (e.g. "redis://localhost:6379/0").
// A zero ttl keeps the token until it is removed.
func NewRedis(redisURL, key string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, oops.Code("TOKENSTORE_REDIS_URL").Wrap(err)
	}
	return NewRedisFromClient(redis.NewClient(opts), key, ttl), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{rdb: rdb, key: key, ttl: ttl}
}

// Get returns the stored token.
func (r *Redis) Get(ctx context.Context) (string, bool, error) {
	token, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("TOKENSTORE_READ").With("key", r.key).Wrap(err)
	}
	return token, true, nil
}

// Set stores token, replacing any previous value.
func (r *Redis) Set(ctx context.Context, token string) error {
	if err := r.rdb.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		return oops.Code("TOKENSTORE_WRITE").With("key", r.key).Wrap(err)
	}
	return nil
}

// Remove deletes the key.
func (r *Redis) Remove(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return oops.Code("TOKENSTORE_REMOVE").With("key", r.key).Wrap(err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
