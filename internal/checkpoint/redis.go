package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces snapshot keys
const KeyPrefix = "figimapper:checkpoint:"

// RedisStore keeps the latest snapshot of one run under a single key
type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store for runID. A zero ttl keeps the key forever.
func NewRedisStore(client redis.Cmdable, runID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    KeyPrefix + runID,
		ttl:    ttl,
	}
}

// Key returns the Redis key snapshots are written to
func (s *RedisStore) Key() string {
	return s.key
}

// Save implements Store
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, buf.Bytes(), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkpoint %s: %w", s.key, err)
	}
	return nil
}

// Load implements Store
func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint %s: %w", s.key, err)
	}
	return Decode(bytes.NewReader(data))
}
