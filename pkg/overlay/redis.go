package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection string.
	URL string
	// Prefix namespaces keys; defaults to "entitydiagram:overlay:".
	Prefix string
	// Timeout bounds each command; defaults to 5s.
	Timeout time.Duration
}

// RedisStore stores each record as a JSON string value.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		cfg.URL = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "entitydiagram:overlay:"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix, timeout: cfg.Timeout}, nil
}

func (s *RedisStore) redisKey(container, key string) string {
	return s.prefix + container + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, container, key string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.redisKey(container, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get", Record{Container: container, Key: key}, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, storeErr("decode", Record{Container: container, Key: key}, err)
	}
	return &rec, nil
}

func (s *RedisStore) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(rec.Container, rec.Key), data, 0).Err(); err != nil {
		return storeErr("put", rec, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
