// Package redis implements repository.KVStore on top of Redis.
//
// Entries are plain string keys written with no expiry, matching the
// cache's "never invalidated" contract. Use it when several server
// processes should share one cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sakif/profile-lookup/internal/repository"
)

var _ repository.KVStore = (*Store)(nil)

// Config holds the connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store is a Redis-backed KVStore.
type Store struct {
	client *goredis.Client
	logger *slog.Logger
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: connecting to %s: %w", cfg.Addr, err)
	}

	return &Store{client: client, logger: logger}, nil
}

// Get returns the value for key; redis.Nil maps to found = false.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		s.logger.Error("redis get failed", slog.String("key", key), slog.String("error", err.Error()))
		return "", false, fmt.Errorf("redis: getting %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		s.logger.Error("redis set failed", slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("redis: setting %s: %w", key, err)
	}
	return nil
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis: closing: %w", err)
	}
	return nil
}
