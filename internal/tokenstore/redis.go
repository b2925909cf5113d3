package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/R3E-Network/courseclient/internal/logging"
)

// RedisStore keeps the token in Redis. Useful when the client core runs as a
// backend-for-frontend and several processes share one session.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *logging.Logger
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, key string, logger *logging.Logger) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// NewRedisStoreFromURL parses a redis:// URL and connects lazily.
func NewRedisStoreFromURL(rawURL, key string, logger *logging.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opt), key, logger), nil
}

func (r *RedisStore) Get(ctx context.Context) (string, bool) {
	if r == nil || r.client == nil {
		return "", false
	}
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Warn("read token from redis")
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

func (r *RedisStore) Set(ctx context.Context, token string) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("tokenstore: redis client is nil")
	}
	return r.client.Set(ctx, r.key, token, 0).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("tokenstore: redis client is nil")
	}
	return r.client.Del(ctx, r.key).Err()
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
