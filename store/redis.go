package store

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const defaultRedisOpTimeout = 5 * time.Second

// Redis is a Store backed by a Redis server, for sharing one cache between
// several processes. Entries are gob-encoded; expiration is delegated to
// Redis via the entry lifetime.
type Redis struct {
	client       *redis.Client
	timeout      time.Duration
	maxEntrySize int64
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithTimeout sets the per-operation timeout for Redis calls.
func WithTimeout(d time.Duration) RedisOption {
	return func(r *Redis) { r.timeout = d }
}

// WithMaxEntrySize sets the per-entry admission limit in bytes.
func WithMaxEntrySize(n int64) RedisOption {
	return func(r *Redis) { r.maxEntrySize = n }
}

// NewRedis returns a store using the provided Redis client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, timeout: defaultRedisOpTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	data, err := r.client.Get(cctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return Entry{}, false, err
	}
	if !entry.Fresh(time.Now()) {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (r *Redis) Put(ctx context.Context, entry Entry) error {
	if r.maxEntrySize > 0 && entry.Size() > r.maxEntrySize {
		return nil
	}
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Set(cctx, entry.Key, data, entry.Lifetime).Err()
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Del(cctx, key).Err()
}
