package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/redis/go-redis/v9"
)

// Redis is a key-value backend on a redis server. Keys are stored with an optional prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr, prefix string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})

	return &Redis{client: client, prefix: prefix}
}

// Ping verifies redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error reaching redis at %s: %w", r.client.Options().Addr, err)
	}

	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get returns the value stored under key, or an error wrapping ledger.ErrKeyNotFound.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("error loading key %s: %w", key, ledger.ErrKeyNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("error loading key %s: %w", key, err)
	}

	return value, nil
}

// Set stores value under key without expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("error saving key %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("error deleting key %s: %w", key, err)
	}

	return nil
}
