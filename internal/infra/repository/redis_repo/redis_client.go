package redis_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDialTimeout = 2 * time.Second

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithPoolSize(poolSize int) Option {
	return func(o *redis.Options) {
		o.PoolSize = poolSize
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		o.DialTimeout = d
	}
}

func clientOptions(address string, options ...Option) *redis.Options {
	opts := &redis.Options{Addr: address, DialTimeout: defaultDialTimeout}
	for _, option := range options {
		option(opts)
	}
	return opts
}

// Connect opens a client and checks it with PING. The caller owns the client,
// on error it is already closed.
func Connect(ctx context.Context, address string, options ...Option) (*redis.Client, error) {
	client := redis.NewClient(clientOptions(address, options...))
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", address, err)
	}
	return client, nil
}
