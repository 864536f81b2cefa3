package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"biogate/pkg/platform/sentinel"
)

// RedisStore keeps the snapshot under a single Redis key.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedis stores the snapshot at "<prefix>:<name>".
func NewRedis(client redis.Cmdable, prefix, name string) *RedisStore {
	key := name
	if p := strings.TrimSuffix(prefix, ":"); p != "" {
		key = p + ":" + name
	}
	return &RedisStore{client: client, key: key}
}

// Key returns the Redis key holding the snapshot.
func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) Read(ctx context.Context) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read redis snapshot: %w", err)
	}
	return payload, nil
}

func (s *RedisStore) Write(ctx context.Context, payload []byte) error {
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("write redis snapshot: %w", err)
	}
	return nil
}
