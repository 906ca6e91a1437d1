package storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atriumhq/sdk/capability"
)

// DefaultHashKey is the Redis hash all values live under when the
// options do not name one.
const DefaultHashKey = "atrium:storage"

// RedisOptions holds the configuration for connecting to a Redis-backed
// store.
type RedisOptions struct {
	// URL is the Redis connection URL (redis://host:port or rediss://host:port for TLS)
	URL string

	// HashKey is the Redis hash that holds every stored value. Plugin
	// isolation is layered on top by the namespace capability, so a
	// single hash per host is enough.
	HashKey string

	// TLS configuration (optional, used with rediss:// URLs)
	TLS *tls.Config

	// ConnectTimeout is the timeout for establishing a connection
	ConnectTimeout time.Duration

	// ReadTimeout is the timeout for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for write operations
	WriteTimeout time.Duration
}

// DefaultRedisOptions returns sensible defaults for Redis storage.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		URL:            "redis://localhost:6379",
		HashKey:        DefaultHashKey,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Second,
	}
}

// Redis is a Redis-backed implementation of the storage capability.
// Values are JSON-encoded into fields of a single hash, so anything
// that survives a JSON round trip can be stored. Note that numbers
// come back as float64 and structs as map[string]any.
type Redis struct {
	client *redis.Client
	opts   RedisOptions
}

// NewRedis creates a Redis-backed store and verifies connectivity.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.HashKey == "" {
		opts.HashKey = DefaultHashKey
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	if opts.TLS != nil {
		redisOpts.TLSConfig = opts.TLS
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client, opts: opts}, nil
}

// Get retrieves a value by key.
// Returns capability.ErrKeyNotFound if the key does not exist.
func (r *Redis) Get(ctx context.Context, key string) (any, error) {
	if key == "" {
		return nil, capability.ErrInvalidKey
	}

	data, err := r.client.HGet(ctx, r.opts.HashKey, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, capability.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value with the given key, replacing any existing value.
func (r *Redis) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return capability.ErrInvalidKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := r.client.HSet(ctx, r.opts.HashKey, key, data).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value by key.
// Returns capability.ErrKeyNotFound if the key does not exist.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if key == "" {
		return capability.ErrInvalidKey
	}

	removed, err := r.client.HDel(ctx, r.opts.HashKey, key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if removed == 0 {
		return capability.ErrKeyNotFound
	}
	return nil
}

// Keys returns all keys currently in the store.
func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.client.HKeys(ctx, r.opts.HashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Clear removes all values from the store.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.opts.HashKey).Err(); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ capability.Storage = (*Redis)(nil)
