package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// Redis is a Store backed by a Redis instance, for deployments where the
// administrative client runs on a shared host (a rendering tier, a bastion)
// and the session must outlive any one process. Entries live under a fixed
// key prefix so several applications can share the instance.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store. prefix namespaces all keys; it may
// be empty.
func NewRedis(client *redis.Client, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("[NewRedis] client is required")
	}
	return &Redis{client: client, prefix: prefix}, nil
}

// Get retrieves the value stored under key.
func (r *Redis) Get(key string) (string, error) {
	if key == "" {
		return "", errors.New("key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[Redis.Get]")
	}
	return value, nil
}

// Set stores value under key, replacing any previous value. Entries carry no
// TTL; expiry is the session manager's deadline check, not the store's.
func (r *Redis) Set(key, value string) error {
	if key == "" {
		return errors.New("key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "[Redis.Set]")
	}
	return nil
}

// Delete removes the entry under key, if present.
func (r *Redis) Delete(key string) error {
	if key == "" {
		return errors.New("key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "[Redis.Delete]")
	}
	return nil
}
