package datacache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/vango-dev/outlet/pkg/loader"
)

// DefaultRedisPrefix is prepended to every key.
const DefaultRedisPrefix = "outlet:data:"

// RedisStore keeps snapshots in Redis so several servers share committed
// loader data.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	closed atomic.Bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the expiration of stored snapshots. Zero means no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix. Default: DefaultRedisPrefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to the Redis server at address.
func NewRedisStore(address, password string, db int, opts ...RedisOption) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, opts...)
}

// NewRedisStoreFromClient wraps an existing client. Close closes the client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.client.Ping(ctx).Err()
}

// Save stores snap under key with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, key string, snap *loader.Snapshot) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("datacache: save to redis: %w", err)
	}
	return nil
}

// Load returns the snapshot under key, or (nil, nil) when it is missing.
func (s *RedisStore) Load(ctx context.Context, key string) (*loader.Snapshot, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("datacache: load from redis: %w", err)
	}
	return Decode(data)
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close closes the underlying client. Closing twice is a no-op.
func (s *RedisStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}
