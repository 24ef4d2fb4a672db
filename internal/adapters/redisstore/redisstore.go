package redisstore

// Package redisstore provides a Redis-based storage backend for the session
// mirror, for deployments where the portal client runs on shared
// workstations and the mirror must live off the local disk.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/deskware/portal-client/internal/ports"
)

// Backend implements ports.StorageBackend on a Redis hash keyed per user
// profile, so several profiles can share one Redis without colliding.
type Backend struct {
	client redis.UniversalClient
	key    string
}

const defaultKey = "portal:session"

// New creates a Redis-backed storage backend under the default hash key.
func New(client redis.UniversalClient) *Backend {
	return NewWithKey(client, defaultKey)
}

// NewWithKey creates a Redis-backed storage backend under a custom hash key.
func NewWithKey(client redis.UniversalClient, key string) *Backend {
	if key == "" {
		key = defaultKey
	}
	return &Backend{client: client, key: key}
}

func (b *Backend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.client.HGet(ctx, b.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return v, nil
}

func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := b.client.HSet(ctx, b.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.HDel(ctx, b.key, key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
