// Package redis connects to the optional Redis instance backing the summary cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	defaultDialTimeout = 2 * time.Second
	defaultIOTimeout   = 500 * time.Millisecond
	defaultPoolSize    = 10
)

// Config holds Redis connection settings. Zero timeouts and pool size fall
// back to values sized for small cache lookups on the request path.
type Config struct {
	Address  string
	Password string
	DB       int

	DialTimeout time.Duration
	IOTimeout   time.Duration
	PoolSize    int
}

func (c Config) options() *redis.Options {
	opts := &redis.Options{
		Addr:         c.Address,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.IOTimeout,
		WriteTimeout: c.IOTimeout,
		PoolSize:     c.PoolSize,
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultIOTimeout
		opts.WriteTimeout = defaultIOTimeout
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	return opts
}

// Connect creates a client and verifies it answers PING before ctx expires.
// The client is closed again when the check fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(cfg.options())
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}

// PingFunc adapts a client to the health check signature used by the HTTP server.
func PingFunc(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
