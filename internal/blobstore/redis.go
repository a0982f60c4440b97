package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Redis is a Store backed by a Redis server.
type Redis struct {
	client redis.UniversalClient
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to Redis and checks the connection with a ping.
//
// Parameters:
//   - ctx: Context bounding the ping
//   - opts: Connection settings; an empty address uses localhost:6379
//
// Returns:
//   - *Redis: Connected store
//   - error: Ping error; the client is closed on failure
func DialRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &Redis{client: client}, nil
}

// Put stores the blob and its file name with the same expiry.
func (r *Redis) Put(ctx context.Context, token, format string, blob Blob, ttl time.Duration) error {
	ttl = ttlOrDefault(ttl)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, Key(token, format), blob.Data, ttl)
		if blob.Name != "" {
			pipe.Set(ctx, nameKey(token, format), blob.Name, ttl)
		} else {
			pipe.Del(ctx, nameKey(token, format))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("store %s: %w", Key(token, format), err)
	}

	return nil
}

// Get loads the blob and its file name.
func (r *Redis) Get(ctx context.Context, token, format string) (Blob, error) {
	data, err := r.client.Get(ctx, Key(token, format)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("load %s: %w", Key(token, format), err)
	}

	name, err := r.client.Get(ctx, nameKey(token, format)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Blob{}, fmt.Errorf("load %s: %w", nameKey(token, format), err)
	}

	return Blob{Data: data, Name: name}, nil
}

// Delete removes the blob and its file name.
func (r *Redis) Delete(ctx context.Context, token, format string) error {
	if err := r.client.Del(ctx, Key(token, format), nameKey(token, format)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", Key(token, format), err)
	}

	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
